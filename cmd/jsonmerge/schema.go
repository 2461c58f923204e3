package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avian2/jsonmerge"
)

func newSchemaCmd() *cobra.Command {
	var (
		schemaPath string
		outputPath string
		refs       []string
		flags      config
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Derive the JSON Schema describing what Merge would produce from this schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(configPath, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Pretty = flags.Pretty
			}

			schema, err := jsonmerge.LoadSchemaFromSource(schemaPath)
			if err != nil {
				return fmt.Errorf("loading schema: %w", err)
			}

			refDocs, err := parseRefFlags(refs, cfg.Format)
			if err != nil {
				return err
			}

			m, err := jsonmerge.New(schema, jsonmerge.Options{ObjClassDefault: cfg.ObjClassDefault})
			if err != nil {
				return fmt.Errorf("constructing merger: %w", err)
			}
			for uri, doc := range refDocs {
				if err := m.CacheSchema(uri, doc); err != nil {
					return err
				}
			}

			result, err := m.GetSchema()
			if err != nil {
				return fmt.Errorf("deriving schema: %w", err)
			}

			out, err := encodeDocument(result, cfg.Format, cfg.Pretty)
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			return writeOutput(outputPath, out)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path (or URL) to the annotated JSON Schema (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().StringArrayVar(&refs, "ref", nil, "uri=path pairs to pre-cache as resolvable $ref targets (repeatable)")
	cmd.Flags().StringVar(&flags.Format, "format", "", "input/output format: json or yaml (default json)")
	cmd.Flags().BoolVar(&flags.Pretty, "pretty", false, "pretty-print JSON output")
	cmd.Flags().StringVar(&flags.ObjClassDefault, "obj-class-default", "", "object class (\"auto\", \"dict\" or \"ordered\") selected for _default")
	cmd.MarkFlagRequired("schema")

	return cmd
}
