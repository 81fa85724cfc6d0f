package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/whitekid/goxp/log"

	"certhub/config"
	"certhub/pkg/helper"
)

var rootCmd = &cobra.Command{
	Use:          "certhub",
	Short:        "certificate inventory service",
	SilenceUsage: true,
}

var (
	configFile   string
	outputFormat string
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is ./certhub.yaml, /etc/certhub/certhub.yaml)")
	flags.String("db-url", config.DBURL(), "database url; sqlite://, mysql://, postgres://")
	flags.String("endpoint", config.ServerEndpoint(), "certhub server endpoint")
	flags.Bool("debug", config.Debug(), "debug mode")
	flags.StringVarP(&outputFormat, "output", "o", string(helper.FormatYAML), "output format; yaml, json")

	config.BindFlag(config.KeyDBURL, flags.Lookup("db-url"))
	config.BindFlag(config.KeyServerEndpoint, flags.Lookup("endpoint"))
	config.BindFlag(config.KeyDebug, flags.Lookup("debug"))
}

func initConfig() {
	if err := config.ReadConfigFile(configFile); err != nil {
		log.Fatalf("fail to read config: %v", err)
	}
}

// write command result to stdout
func write(data interface{}) error { return helper.Write(os.Stdout, helper.Format(outputFormat), data) }
