package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avian2/jsonmerge"
)

func newValidateCmd() *cobra.Command {
	var (
		schemaPath   string
		instancePath string
		flags        config
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a document against a schema, without merging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(configPath, flags)
			if err != nil {
				return err
			}

			schema, err := jsonmerge.LoadSchemaFromSource(schemaPath)
			if err != nil {
				return fmt.Errorf("loading schema: %w", err)
			}
			m, err := jsonmerge.New(schema, jsonmerge.Options{})
			if err != nil {
				return fmt.Errorf("constructing merger: %w", err)
			}

			instance, err := decodeDocument(instancePath, cfg.Format)
			if err != nil {
				return err
			}

			issues, err := m.Validate(instance)
			if err != nil {
				return fmt.Errorf("validating: %w", err)
			}
			if len(issues) == 0 {
				fmt.Println("valid")
				return nil
			}
			for _, issue := range issues {
				fmt.Printf("%s: %s\n", issue.Path, issue.Message)
			}
			return fmt.Errorf("%d validation issue(s)", len(issues))
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path (or URL) to the JSON Schema (required)")
	cmd.Flags().StringVar(&instancePath, "instance", "", "path to the document to validate (required)")
	cmd.Flags().StringVar(&flags.Format, "format", "", "input format: json or yaml (default json)")
	cmd.MarkFlagRequired("schema")
	cmd.MarkFlagRequired("instance")

	return cmd
}
