package main

import (
	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jsonmerge",
		Short:         "Merge JSON/YAML documents according to an annotated JSON Schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML/JSON file of default options")

	root.AddCommand(newMergeCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newValidateCmd())

	return root
}
