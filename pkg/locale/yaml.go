package locale

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func parseYAML(msgs *Messages, data []byte, prefix, file string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		flattenYAMLNode(msgs, doc.Content[0], prefix, file)
	}
	return nil
}

// flattenYAMLNode mirrors the JSON rules: string scalars and string-only
// sequences are leaves, mappings and other sequences recurse.
func flattenYAMLNode(msgs *Messages, node *yaml.Node, key, file string) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			flattenYAMLNode(msgs, node.Content[i+1], join(key, node.Content[i].Value), file)
		}
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return
		}
		if key != "" && allStrings(node.Content) {
			parts := make([]string, len(node.Content))
			for i, c := range node.Content {
				parts[i] = c.Value
			}
			msgs.add(key, strings.Join(parts, ", "), file)
			return
		}
		for i, c := range node.Content {
			flattenYAMLNode(msgs, c, join(key, strconv.Itoa(i)), file)
		}
	case yaml.ScalarNode:
		if node.ShortTag() == "!!str" && key != "" {
			msgs.add(key, node.Value, file)
		}
	}
}

func allStrings(nodes []*yaml.Node) bool {
	for _, n := range nodes {
		if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
			return false
		}
	}
	return true
}
