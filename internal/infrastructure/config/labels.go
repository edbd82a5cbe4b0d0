package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mailreply/internal/domain/email"
)

//go:embed labels.yaml
var defaultLabels []byte

type labelFile struct {
	Productive   []string `yaml:"productive"`
	Unproductive []string `yaml:"unproductive"`
}

// LoadLabelMap reads the label map from path, or from the embedded defaults
// when path is empty.
func LoadLabelMap(path string) (*email.LabelMap, error) {
	data := defaultLabels
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read label file: %w", err)
		}
		data = b
	}

	var lf labelFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse label file: %w", err)
	}

	m, err := email.NewLabelMap(map[email.Category][]string{
		email.CategoryProductive:   lf.Productive,
		email.CategoryUnproductive: lf.Unproductive,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid label map: %w", err)
	}
	return m, nil
}
