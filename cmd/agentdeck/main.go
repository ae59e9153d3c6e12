package main

import "github.com/emiliopalmerini/agentdeck/internal/cli"

func main() {
	cli.Execute()
}
