package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avian2/jsonmerge"
)

func newMergeCmd() *cobra.Command {
	var (
		schemaPath string
		basePath   string
		headPath   string
		outputPath string
		refs       []string
		metaPairs  []string
		flags      config
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a head document into a base document per a schema's mergeStrategy annotations",
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

			var base any
			if basePath != "" {
				base, err = decodeDocument(basePath, cfg.Format)
				if err != nil {
					return err
				}
			}
			head, err := decodeDocument(headPath, cfg.Format)
			if err != nil {
				return err
			}

			meta, err := parseMetaFlags(metaPairs)
			if err != nil {
				return err
			}

			var result any
			if meta != nil {
				result, err = m.Merge(base, head, meta)
			} else {
				result, err = m.Merge(base, head)
			}
			if err != nil {
				return fmt.Errorf("merge failed: %w", err)
			}

			out, err := encodeDocument(result, cfg.Format, cfg.Pretty)
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			return writeOutput(outputPath, out)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path (or URL) to the JSON Schema (required)")
	cmd.Flags().StringVar(&basePath, "base", "", "path to the base document (omit for the first merge in a sequence)")
	cmd.Flags().StringVar(&headPath, "head", "", "path to the head document to merge in (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().StringArrayVar(&refs, "ref", nil, "uri=path pairs to pre-cache as resolvable $ref targets (repeatable)")
	cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "key=value pairs threaded through as the legacy meta argument (repeatable)")
	cmd.Flags().StringVar(&flags.Format, "format", "", "input/output format: json or yaml (default json)")
	cmd.Flags().BoolVar(&flags.Pretty, "pretty", false, "pretty-print JSON output")
	cmd.Flags().StringVar(&flags.ObjClassDefault, "obj-class-default", "", "object class (\"auto\", \"dict\" or \"ordered\") selected for _default")
	cmd.MarkFlagRequired("schema")
	cmd.MarkFlagRequired("head")

	return cmd
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
