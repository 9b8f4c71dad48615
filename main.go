package main

import "mailcraft/commands"

func main() {
	commands.Execute()
}
