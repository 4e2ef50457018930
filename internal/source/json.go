// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// JSONDecoder reads a JSON object, or a stream of concatenated objects.
type JSONDecoder struct{}

func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

func (d *JSONDecoder) Name() string {
	return "json"
}

func (d *JSONDecoder) CanHandle(src Source) bool {
	switch strings.ToLower(src.Format) {
	case "json", "ndjson", "jsonl":
		return true
	case "":
		content := bytes.TrimSpace(src.Content)
		return bytes.HasPrefix(content, []byte("{")) && gjson.ValidBytes(firstLine(content))
	}
	return false
}

// firstLine returns the content up to the first newline when the payload is
// a stream of one object per line, or the whole content otherwise.
func firstLine(content []byte) []byte {
	if gjson.ValidBytes(content) {
		return content
	}
	if i := bytes.IndexByte(content, '\n'); i > 0 {
		return bytes.TrimSpace(content[:i])
	}
	return content
}

func (d *JSONDecoder) Decode(ctx context.Context, src Source) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(src.Content))
	var trees []map[string]any
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var tree map[string]any
		err := dec.Decode(&tree)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON document %d: %w", len(trees), err)
		}
		if tree == nil {
			tree = map[string]any{}
		}
		trees = append(trees, tree)
	}
	if len(trees) == 0 {
		return nil, errors.New("no JSON document found")
	}
	return trees, nil
}
