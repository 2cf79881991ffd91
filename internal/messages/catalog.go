// Package messages holds the user-facing string table.
package messages

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultTable []byte

// Catalog resolves dotted keys such as "coach.on_track" to strings.
type Catalog struct {
	entries map[string]string
}

// Default returns the catalog built from the embedded English table. It
// panics if the embedded file is malformed, which is caught by tests.
func Default() *Catalog {
	c, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("messages: embedded table: %v", err))
	}
	return c
}

// Parse builds a catalog from a YAML document of nested string maps.
func Parse(data []byte) (*Catalog, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse message table: %w", err)
	}

	c := &Catalog{entries: make(map[string]string)}
	if err := c.flatten("", root); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) flatten(prefix string, node map[string]any) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			c.entries[key] = val
		case map[string]any:
			if err := c.flatten(key, val); err != nil {
				return err
			}
		default:
			return fmt.Errorf("message %q: unsupported value type %T", key, v)
		}
	}
	return nil
}

// Has reports whether key is defined.
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Get returns the string for key, or the key itself when undefined so a
// missing entry is visible rather than blank.
func (c *Catalog) Get(key string) string {
	if s, ok := c.entries[key]; ok {
		return s
	}
	return key
}

// Format looks up key and formats it with args.
func (c *Catalog) Format(key string, args ...any) string {
	return fmt.Sprintf(c.Get(key), args...)
}
