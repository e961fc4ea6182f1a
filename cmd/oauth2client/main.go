package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "oauth2client",
		Short:         "OAuth2 sign-in for applications with a local user repository",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := serveCommand()
	root.AddCommand(serve)
	root.AddCommand(providersCommand())

	// Serve when no sub-command is given.
	root.RunE = serve.RunE

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
