package main

import (
	"github.com/spf13/cobra"

	"certhub"
	"certhub/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "start certhub server",
		RunE:  func(cmd *cobra.Command, args []string) error { return certhub.Run(cmd.Context()) },
	}

	flags := cmd.Flags()
	flags.String("listen", config.Listen(), "listen address")
	flags.Int("workers", config.Workers(), "number of background workers")
	flags.String("connector", config.ConnectorEndpoint(), "compliance connector endpoint")

	config.BindFlag(config.KeyListen, flags.Lookup("listen"))
	config.BindFlag(config.KeyWorkers, flags.Lookup("workers"))
	config.BindFlag(config.KeyConnectorEndpoint, flags.Lookup("connector"))

	rootCmd.AddCommand(cmd)
}
