package main

import "github.com/pfrederiksen/deetlist/internal/cli"

func main() {
	cli.Execute()
}
