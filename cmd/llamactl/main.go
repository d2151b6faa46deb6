package main

import "github.com/tiago/llamactl/internal/commands"

func main() {
	commands.Execute()
}
