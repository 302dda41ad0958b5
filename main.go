package main

import "todoman/pkg/cli"

func main() {
	cli.Execute()
}
