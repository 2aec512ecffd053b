package security

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes a plugin's provenance and declared capabilities.
// It is optional for engine-trusted core plugins and required for
// untrusted plugins (and, when the policy demands signatures, must
// carry a valid one).
type Manifest struct {
	// Name must match the plugin's Name.
	Name string `yaml:"name" json:"name"`

	// Version must match the plugin's Version.
	Version string `yaml:"version" json:"version"`

	// Author identifies the plugin author. Required.
	Author string `yaml:"author" json:"author"`

	// Permissions are the capabilities the plugin declares.
	Permissions []Permission `yaml:"permissions" json:"permissions"`

	// Signature is the hex-encoded detached signature (128 lowercase
	// hex chars). Required when the policy sets RequiredSignature.
	Signature string `yaml:"signature,omitempty" json:"signature,omitempty"`

	// Source is the origin URL the plugin was obtained from. When
	// present alongside a required signature, it must be prefixed by
	// one of the policy's trusted sources.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Checksum is the SHA-256 of the plugin artifact (64 lowercase
	// hex chars), if supplied.
	Checksum string `yaml:"checksum,omitempty" json:"checksum,omitempty"`
}

// LoadManifest reads a plugin manifest from a YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
