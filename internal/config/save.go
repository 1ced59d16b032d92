package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/evencheck/internal/fileutil"
)

// SetValue sets a dotted key (e.g. "watch.debounce" or "flags.auto-register")
// to a scalar value in the config file, creating intermediate mappings as
// needed. Comments and formatting elsewhere in the file are preserved by
// editing the yaml.Node tree.
func SetValue(configPath, key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("invalid key %q", key)
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: user-chosen config path
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config root is not a mapping")
	}

	node := root
	for _, p := range parts[:len(parts)-1] {
		child := lookup(node, p)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: p}, child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("key %q: %s is not a mapping", key, p)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	scalar := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	if existing := lookup(node, leaf); existing != nil {
		// Keep any trailing comment on the old value
		scalar.LineComment = existing.LineComment
		*existing = *scalar
	} else {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: leaf}, scalar)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := fileutil.WriteFileAtomic(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
