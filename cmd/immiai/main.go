// Command immiai is the entry point for the ImmiAI immigration rights
// assistant. It provides a CLI interface (via Cobra) and an HTTP server
// exposing the chat, reports, and emergency-video APIs.
package main

import (
	"fmt"
	"os"

	"github.com/RichieRish05/ImmiAI/cmd/immiai/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
