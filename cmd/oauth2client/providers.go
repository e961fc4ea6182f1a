package main

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shivanshkc/oauth2client/internal/registry"
	"github.com/shivanshkc/oauth2client/pkg/config"
)

func providersCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the registered providers and whether their configuration is complete",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configFile == "" {
				configFile = config.Load().Providers.ConfigFile
			}

			reg := registry.New(registry.NewINISource(configFile), http.DefaultClient)
			return printProviders(cmd, reg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config-file", "", "Path of the provider options file")
	return cmd
}

// printProviders writes one line per registered provider.
func printProviders(cmd *cobra.Command, reg *registry.Registry) error {
	out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	writeLine(out, "KEY", "LABEL", "STATUS")

	for _, entry := range reg.ListProviders(cmd.Context()) {
		status := "configured"
		if _, err := reg.ResolveConfig(cmd.Context(), entry.Key); err != nil {
			status = err.Error()
		}

		writeLine(out, entry.Key, entry.DisplayName, status)
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("error in Flush call: %w", err)
	}
	return nil
}

func writeLine(w io.Writer, columns ...string) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", columns[0], columns[1], columns[2])
}
