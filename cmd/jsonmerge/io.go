package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	yaml "github.com/goccy/go-yaml"

	"github.com/avian2/jsonmerge/jsonvalue"
)

// decodeDocument reads path and decodes it as JSON or YAML, picking the
// format from the --format flag unless path's own extension disagrees
// (".yaml"/".yml" always decodes as YAML, everything else uses format).
func decodeDocument(path, format string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if format == "yaml" || strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parsing %s as YAML: %w", path, err)
		}
		// goccy/go-yaml decodes integers as int/uint64; round-trip through
		// encoding/json so every number ends up float64, matching the shape
		// the merge core expects from its own JSON decoding path.
		return renormalizeNumbers(v)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing %s as JSON: %w", path, err)
	}
	return v, nil
}

func renormalizeNumbers(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalizing decoded YAML: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("normalizing decoded YAML: %w", err)
	}
	return out, nil
}

// encodeDocument renders v back to JSON or YAML text per format. Merge
// results can carry *jsonvalue.OrderedMap nodes; their MarshalJSON keeps
// the merged key order on the JSON path, while the YAML path flattens them
// to plain maps first (goccy marshals unknown structs field-by-field).
func encodeDocument(v any, format string, pretty bool) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(jsonvalue.Plain(v))
	}
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// parseRefFlags turns repeated "uri=path" strings (the --ref flag) into a
// uri -> decoded-schema-document map, for Merger.CacheSchema.
func parseRefFlags(refs []string, format string) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any, len(refs))
	for _, r := range refs {
		uri, path, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("--ref %q: expected uri=path", r)
		}
		doc, err := decodeDocument(path, format)
		if err != nil {
			return nil, err
		}
		m, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("--ref %q: %s does not decode to a JSON object", r, path)
		}
		out[uri] = m
	}
	return out, nil
}

// parseMetaFlags turns repeated "key=value" strings (the --meta flag) into
// the metadata map passed as Merger.Merge's trailing meta argument, woven
// into the version strategy's history entries when a node's own
// mergeOptions.metadata doesn't override it.
func parseMetaFlags(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("--meta %q: expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}
