package main

import "github.com/omriShneor/meeting_assistant/internal/cli"

func main() {
	cli.Execute()
}
