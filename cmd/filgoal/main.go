package main

import "github.com/pfrederiksen/filgoal/internal/cli"

func main() {
	cli.Execute()
}
