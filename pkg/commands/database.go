package commands

import (
	"context"
	"fmt"
	"io"
)

// HandlePurge deletes all tasks, or only completed ones
func HandlePurge(ctx context.Context, store Store, in io.Reader, out io.Writer, completedOnly, skipConfirm bool) error {
	what := "ALL tasks"
	if completedOnly {
		what = "all completed tasks"
	}

	// Show confirmation unless --yes flag is used
	if !skipConfirm && !confirm(in, out, fmt.Sprintf("Are you sure you want to delete %s? (y/N): ", what)) {
		fmt.Fprintln(out, "Operation cancelled.")
		return nil
	}

	n, err := store.Purge(ctx, completedOnly)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully deleted %d task(s)\n", n)
	return nil
}
