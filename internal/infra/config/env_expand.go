package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// expandConfigEnv substitutes ${VAR} references in every string scalar of
// a YAML document. Unset variables expand to "" and are reported.
func expandConfigEnv(raw []byte) (string, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}

	missing := map[string]struct{}{}
	walkScalars(&root, func(node *yaml.Node) {
		if node.Tag != "" && node.Tag != "!!str" {
			return
		}
		if !strings.Contains(node.Value, "$") {
			return
		}
		expanded := os.Expand(node.Value, func(key string) string {
			value, ok := os.LookupEnv(key)
			if !ok {
				missing[key] = struct{}{}
			}
			return value
		})
		if expanded == node.Value {
			return
		}
		if node.Style != 0 {
			node.Tag, node.Value = "!!str", expanded
			return
		}
		node.Tag, node.Value = retagScalar(expanded)
	})

	out, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return string(out), names, nil
}

func walkScalars(node *yaml.Node, visit func(*yaml.Node)) {
	switch node.Kind {
	case yaml.ScalarNode:
		visit(node)
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			walkScalars(node.Content[i], visit)
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			walkScalars(node.Alias, visit)
		}
	default:
		for _, child := range node.Content {
			walkScalars(child, visit)
		}
	}
}

// retagScalar lets an unquoted ${PORT} become an integer again.
func retagScalar(value string) (string, string) {
	if strings.TrimSpace(value) == "" {
		return "!!str", value
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return "!!int", strconv.FormatInt(n, 10)
	}
	if b, err := strconv.ParseBool(value); err == nil && (value == "true" || value == "false") {
		return "!!bool", strconv.FormatBool(b)
	}
	return "!!str", value
}
