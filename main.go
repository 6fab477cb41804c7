package main

import "github.com/diogo/deploychat/internal/commands"

func main() {
	commands.Execute()
}
