package main

import (
	"log"
	"os"

	"github.com/supportdesk/ticketd/cmd/api/commands"
)

// @title ticketd API
// @version 1.0
// @description Support ticket store backed by a single JSON file
// @BasePath /

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
