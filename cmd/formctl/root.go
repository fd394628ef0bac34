package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-forms/internal/config"
)

type rootFlags struct {
	configFile string
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"doc":        "documents",
	"var":        "vars",
	"store":      "store.driver",
	"store-path": "store.path",
	"grants":     "principal.grants_file",
	"principal":  "principal.name",
	"log-level":  "log.level",
	"strict":     "strict",
}

func newRootCommand() *cobra.Command {
	var rf rootFlags

	cmd := &cobra.Command{
		Use:           "formctl",
		Short:         "Load, render and edit declarative forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&rf.configFile, "config", "", "config file (default $HOME/.config/formctl/formctl.yaml)")
	pf.StringSlice("doc", nil, "declaration document to load, repeatable")
	pf.StringToString("var", nil, "template variable for declaration documents, key=value")
	pf.String("store", "memory", "value store driver: memory, yaml or sqlite")
	pf.String("store-path", "", "value store file")
	pf.String("grants", "", "grants file naming principals and their capabilities")
	pf.String("principal", "", "principal whose grants gate visibility")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Bool("strict", false, "reject undeclared component options")

	cmd.AddCommand(
		newExportCommand(&rf),
		newRenderCommand(&rf),
		newTreeCommand(&rf),
		newEditCommand(&rf),
		newServeCommand(&rf),
		newGrantsCommand(&rf),
	)
	return cmd
}

// loadConfig merges the config file, the environment and changed flags.
func loadConfig(cmd *cobra.Command, rf *rootFlags) (config.Config, error) {
	binds := make(map[string]any)
	flags := cmd.Flags()
	for name, key := range flagKeys {
		if !flags.Changed(name) {
			continue
		}
		var (
			v   any
			err error
		)
		switch name {
		case "doc":
			v, err = flags.GetStringSlice(name)
		case "var":
			v, err = flags.GetStringToString(name)
		case "strict":
			v, err = flags.GetBool(name)
		default:
			v, err = flags.GetString(name)
		}
		if err != nil {
			return config.Config{}, err
		}
		binds[key] = v
	}
	if cmd.Flags().Changed("addr") {
		addr, err := flags.GetString("addr")
		if err != nil {
			return config.Config{}, err
		}
		binds["server.addr"] = addr
	}
	return config.Load(config.Source{File: rf.configFile, Binds: binds})
}

// setup loads configuration and declarations for a subcommand.
func setup(cmd *cobra.Command, rf *rootFlags) (*app, error) {
	cfg, err := loadConfig(cmd, rf)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
}
