package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// emit writes v in the selected output format. text renders the plain form.
func emit(v any, text func(w io.Writer)) error {
	switch cur.opts.Output {
	case "json":
		enc := json.NewEncoder(cur.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = cur.stdout.Write(data)
		return err
	default:
		text(cur.stdout)
		return nil
	}
}

// toYAML renders v as block YAML with the same keys and key order as its
// JSON form. JSON is valid YAML, so the JSON document is decoded into a node
// tree and re-encoded without flow style.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	blockStyle(&doc)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	return out, nil
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}
