package cli

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lacasadark/casadark-core/internal/scene"
)

// SceneFile is the on-disk scene list. Files are YAML or JSON, either a
// mapping with a scenes key or a bare list of scenes.
type SceneFile struct {
	Title  string        `yaml:"title"`
	FPS    int           `yaml:"fps"`
	Scenes []scene.Scene `yaml:"scenes"`
}

var errEmptySceneFile = errors.New("scene file is empty")

func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}

	sf, err := parseSceneFile(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sf, nil
}

func parseSceneFile(data []byte) (*SceneFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errEmptySceneFile
	}

	root := doc.Content[0]
	sf := &SceneFile{}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&sf.Scenes); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := root.Decode(sf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a list of scenes", root.Line)
	}
	return sf, nil
}
