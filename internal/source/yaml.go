// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// YAMLDecoder reads YAML payloads. Multi-document streams separated by
// '---' yield one tree per document; empty documents are skipped.
type YAMLDecoder struct{}

func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

func (d *YAMLDecoder) Name() string {
	return "yaml"
}

func (d *YAMLDecoder) CanHandle(src Source) bool {
	switch strings.ToLower(src.Format) {
	case "yaml", "yml":
		return true
	case "":
	default:
		return false
	}
	content := strings.TrimSpace(string(src.Content))
	if strings.HasPrefix(content, "---") {
		return true
	}
	// Plain YAML: key: value on the first line
	first := strings.SplitN(content, "\n", 2)[0]
	return len(content) > 0 && !strings.HasPrefix(content, "#") && strings.Contains(first, ":")
}

func (d *YAMLDecoder) Decode(ctx context.Context, src Source) ([]map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src.Content))
	var trees []map[string]any
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var tree map[string]any
		err := dec.Decode(&tree)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML document %d: %w", i, err)
		}
		if len(tree) == 0 {
			continue
		}
		trees = append(trees, normalizeNumbers(tree).(map[string]any))
	}
	if len(trees) == 0 {
		return nil, errors.New("no YAML document found")
	}
	return trees, nil
}

// normalizeNumbers converts YAML integer scalars to float64 so documents
// carry the same value shapes whichever decoder produced them.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalizeNumbers(child)
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
