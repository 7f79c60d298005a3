package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Responder is the persona profile a drafted reply is written as.
type Responder struct {
	Name       string `yaml:"name" json:"name"`
	Role       string `yaml:"role" json:"role"`
	Experience string `yaml:"experience" json:"experience"`
	Tone       string `yaml:"tone" json:"tone"`
	SignOff    string `yaml:"sign_off" json:"sign_off"`
	Email      string `yaml:"email" json:"email"`
}

// LoadResponders reads responder profiles from a YAML file.
func LoadResponders(path string) ([]Responder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read responders file: %w", err)
	}

	var doc struct {
		Responders []Responder `yaml:"responders"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse responders file: %w", err)
	}

	if len(doc.Responders) == 0 {
		return nil, fmt.Errorf("no responders defined in %s", path)
	}
	return doc.Responders, nil
}
