package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"todoman/pkg/commands"
	"todoman/pkg/config"
	"todoman/pkg/database"
	"todoman/pkg/reminder"
	"todoman/pkg/task"
	"todoman/pkg/ui"
	"todoman/pkg/utils"
)

// app carries what every command needs once flags and config are resolved
type app struct {
	v          *viper.Viper
	configPath string
	verbose    bool

	cfg   config.Config
	db    *sql.DB
	store *database.Store
}

// NewRootCmd creates the root command. Without a subcommand it opens the interactive list
// with the reminder scheduler running in the background.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "todoman",
		Short:         "A terminal todo list with due dates, priorities and reminders",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.withStore(a.runUI),
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to configuration file (default ~/.config/todoman/config.json)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	flags.String("database", "", "database file (sqlite3) or connection string (postgres)")
	flags.String("driver", "", "database driver: sqlite3 or postgres")
	flags.String("log-file", "", "log file path")
	_ = a.v.BindPFlag("database", flags.Lookup("database"))
	_ = a.v.BindPFlag("driver", flags.Lookup("driver"))
	_ = a.v.BindPFlag("log_file", flags.Lookup("log-file"))

	rootCmd.AddCommand(
		a.newAddCommand(),
		a.newListCommand(),
		a.newCompleteCommand(),
		a.newDeleteCommand(),
		a.newPurgeCommand(),
		a.newExportCommand(),
		a.newImportCommand(),
		a.newRemindCommand(),
	)

	return rootCmd
}

// withStore loads config, opens the store around fn and closes it afterwards.
func (a *app) withStore(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd.Context()); err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args)
	}
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	if err := utils.InitLogger(cfg.LogFile, a.verbose); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(ctx, cfg.Driver, cfg.Database)
	if err != nil {
		utils.CloseLogger()
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx, db, cfg.Driver); err != nil {
		db.Close()
		utils.CloseLogger()
		return fmt.Errorf("create schema: %w", err)
	}

	a.db = db
	a.store = database.NewStore(db, cfg.Driver)
	utils.Log("Opened %s database %s", cfg.Driver, cfg.Database)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	utils.CloseLogger()
}

func (a *app) reminderConfig() reminder.Config {
	return reminder.Config{
		Interval: a.cfg.Reminder.Interval,
		Window:   a.cfg.Reminder.Window,
	}
}

// runUI runs the bubbletea program in the foreground and the scheduler beside it.
// The scheduler only talks to the program through messages.
func (a *app) runUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(ui.NewModel(ctx, a.store, a.cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	scheduler := reminder.New(a.store, ui.ProgramNotifier{Program: p}, a.reminderConfig())

	schedCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := scheduler.Run(schedCtx); err != nil {
			utils.Logger().WithError(err).Error("reminder scheduler")
		}
	}()

	_, err := p.Run()

	// Wait for the scheduler to stop (it stops because schedCtx is cancelled)
	cancel()
	wg.Wait()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func (a *app) newAddCommand() *cobra.Command {
	var opts commands.AddOptions

	cmd := &cobra.Command{
		Use:     "add <description>",
		Aliases: []string{"a"},
		Short:   "Add a new task",
		Args:    cobra.MinimumNArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			_, err := commands.HandleAddTask(cmd.Context(), a.store, cmd.OutOrStdout(), strings.Join(args, " "), opts)
			return err
		}),
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.Time, "time", "t", "", `due time ("9:30 PM" or "21:30")`)
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "Low, Medium, High or Critical (default Medium)")
	cmd.Flags().BoolVarP(&opts.Remind, "remind", "r", false, "remind before the task is due (needs --date)")
	return cmd
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list [filter]",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long:    `List tasks. Filter is one of: all, pending, completed, "high priority" (or high), "today's tasks" (or today).`,
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			filter, err := task.ParseFilter(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return commands.HandleList(cmd.Context(), a.store, cmd.OutOrStdout(), filter)
		}),
	}
}

func (a *app) newCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "complete <id>...",
		Aliases: []string{"done"},
		Short:   "Mark tasks as completed",
		Args:    cobra.MinimumNArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return commands.HandleComplete(cmd.Context(), a.store, cmd.OutOrStdout(), ids...)
		}),
	}
}

func (a *app) newDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return commands.HandleDelete(cmd.Context(), a.store, cmd.InOrStdin(), cmd.OutOrStdout(), ids[0], yes)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (a *app) newPurgeCommand() *cobra.Command {
	var yes, completed bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all tasks, or only completed ones",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			return commands.HandlePurge(cmd.Context(), a.store, cmd.InOrStdin(), cmd.OutOrStdout(), completed, yes)
		}),
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "only delete completed tasks")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (a *app) newExportCommand() *cobra.Command {
	var exportType string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export all tasks to a file",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			return commands.HandleExportCommand(cmd.Context(), a.store, cmd.OutOrStdout(), args[0], exportType)
		}),
	}

	cmd.Flags().StringVar(&exportType, "type", "json", "export file type (json, txt)")
	return cmd
}

func (a *app) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a json or txt export",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			_, err := commands.HandleImportCommand(cmd.Context(), a.store, cmd.OutOrStdout(), args[0])
			return err
		}),
	}
}

func (a *app) newRemindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one reminder check and print what is due",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, args []string) error {
			_, err := commands.HandleRemind(cmd.Context(), a.store, cmd.OutOrStdout(), a.reminderConfig(), time.Now())
			return err
		}),
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, task.Invalid("%q is not a task id", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
