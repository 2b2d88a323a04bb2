// Package main is the entry point for the database exploration agent.
// It exposes an HTTP chat API, an interactive terminal chat and a few
// maintenance commands over the same agent service.
package main

import (
	"github.com/pmorel/db-agent/cmd"
)

func main() {
	cmd.Execute()
}
