package descriptor

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlLineKeys maps top-level YAML keys to Descriptor.Lines keys.
var yamlLineKeys = map[string]string{
	"plugins":        KeyPlugins,
	"namespace":      KeyNamespace,
	"application_id": KeyApplicationID,
	"ndk_version":    KeyNdkVersion,
	"version_code":   KeyVersionCode,
	"version_name":   KeyVersionName,
	"language_level": KeyLanguage,
	"jvm_target":     KeyJvmTarget,
	"desugaring":     KeyDesugaring,
	"multidex":       KeyMultidex,
	"lint":           KeyLint,
	"dependencies":   KeyDependencies,
}

var yamlSDKKeys = map[string]string{
	"min":     KeyMinSdk,
	"target":  KeyTargetSdk,
	"compile": KeyCompileSdk,
}

func parseYAML(name string, data []byte) (*Descriptor, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &SyntaxError{File: name, Msg: "empty descriptor"}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &SyntaxError{File: name, Msg: err.Error()}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, &SyntaxError{File: name, Msg: "descriptor must be a mapping"}
	}
	top := root.Content[0]

	var doc document
	if err := top.Decode(&doc); err != nil {
		return nil, &SyntaxError{File: name, Msg: err.Error()}
	}

	var typeLines []int
	if node := mappingValue(top, "build_types"); node != nil {
		types, lines, err := yamlBuildTypes(node)
		if err != nil {
			return nil, &SyntaxError{File: name, Line: node.Line, Column: node.Column, Msg: err.Error()}
		}
		doc.BuildTypes = types
		typeLines = lines
	}

	d, err := doc.descriptor()
	if err != nil {
		return nil, &SyntaxError{File: name, Msg: err.Error()}
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i]
		if lk, ok := yamlLineKeys[key.Value]; ok {
			d.mark(lk, key.Line)
		}
		if key.Value == "sdk" && top.Content[i+1].Kind == yaml.MappingNode {
			sdk := top.Content[i+1]
			for j := 0; j+1 < len(sdk.Content); j += 2 {
				if lk, ok := yamlSDKKeys[sdk.Content[j].Value]; ok {
					d.mark(lk, sdk.Content[j].Line)
				}
			}
		}
		if key.Value == "dependencies" && top.Content[i+1].Kind == yaml.SequenceNode {
			for j, item := range top.Content[i+1].Content {
				if j < len(d.Dependencies) {
					d.Dependencies[j].Line = item.Line
				}
			}
		}
	}
	for i := range d.BuildTypes {
		if i < len(typeLines) {
			d.BuildTypes[i].Line = typeLines[i]
		}
	}
	return d, nil
}

// yamlBuildTypes accepts either a mapping keyed by build type name (order of
// declaration kept) or a sequence of entries with a name field.
func yamlBuildTypes(node *yaml.Node) ([]documentType, []int, error) {
	var (
		types []documentType
		lines []int
	)
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			var bt documentType
			if val.Kind != yaml.ScalarNode || val.Tag != "!!null" {
				if err := val.Decode(&bt); err != nil {
					return nil, nil, fmt.Errorf("build_types.%s: %w", key.Value, err)
				}
			}
			bt.Name = key.Value
			types = append(types, bt)
			lines = append(lines, key.Line)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			var bt documentType
			if err := item.Decode(&bt); err != nil {
				return nil, nil, fmt.Errorf("build_types[%d]: %w", i, err)
			}
			types = append(types, bt)
			lines = append(lines, item.Line)
		}
	default:
		return nil, nil, fmt.Errorf("build_types must be a mapping or a sequence")
	}
	return types, lines, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
