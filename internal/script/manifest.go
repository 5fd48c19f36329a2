package script

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/scene"
)

// Manifest is a scene breakdown persisted to disk, so a run can be
// reproduced or resumed without re-analyzing the script.
type Manifest struct {
	Metadata Metadata      `yaml:"metadata"`
	Scenes   []scene.Scene `yaml:"scenes"`
}

// WriteManifest writes a breakdown manifest to a YAML file.
func WriteManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest reads a breakdown manifest from a YAML file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
