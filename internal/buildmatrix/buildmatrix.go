// Package buildmatrix patches the build.yaml manifest that drives the
// firmware build workflow. Patching goes through the yaml.v3 node tree so
// comments in the file, the leading header block in particular, survive a
// rewrite.
package buildmatrix

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbfirmware/kbsetup/internal/hardware"
)

// Entry is one build combination in the manifest's include list.
type Entry struct {
	Shield string `yaml:"shield,omitempty"`
	Board  string `yaml:"board"`
}

// Entries expands a keyboard selection into the build combinations to add:
// one per board for standalone keyboards, one per shield part and board for
// shield keyboards.
func Entries(sel *hardware.Selection) []Entry {
	var out []Entry
	for _, board := range sel.BoardIDs {
		if len(sel.ShieldIDs) > 0 {
			for _, shield := range sel.ShieldIDs {
				out = append(out, Entry{Shield: shield, Board: board})
			}
		} else {
			out = append(out, Entry{Board: board})
		}
	}
	return out
}

// Add appends the given entries to the include list in the manifest at path,
// creating the list if needed and skipping combinations already present.
func Add(path string, entries []Entry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	root := documentRoot(&doc)
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parse %s: build matrix must be a mapping", path)
	}

	include := mapValue(root, "include")
	if include == nil {
		include = appendMapKey(root, "include")
	}
	if include.Kind != yaml.SequenceNode {
		return fmt.Errorf("parse %s: include must be a list", path)
	}

	existing := make(map[Entry]bool)
	for _, item := range include.Content {
		var e Entry
		if err := item.Decode(&e); err != nil {
			continue
		}
		existing[e] = true
	}

	for _, e := range entries {
		if existing[e] {
			continue
		}
		existing[e] = true

		var node yaml.Node
		if err := node.Encode(e); err != nil {
			return err
		}
		include.Content = append(include.Content, &node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// documentRoot unwraps the document node, synthesizing an empty mapping for
// an empty file.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}

	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	doc.Kind = yaml.DocumentNode
	doc.Content = []*yaml.Node{root}
	return root
}

func mapValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func appendMapKey(mapping *yaml.Node, key string) *yaml.Node {
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	valueNode := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	mapping.Content = append(mapping.Content, keyNode, valueNode)
	return valueNode
}
