// Package config reads run settings for the psn command from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/reallyasi9/psn/internal/psn"
	"github.com/reallyasi9/psn/internal/residue"
	yaml "gopkg.in/yaml.v2"
)

// ErrInvalid is returned for a configuration that cannot start a run.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the format of a run YAML file. For example:
//
//	n: 9
//	moduli: [1073741824, 1073741823, 1073741821]
//	verify: 1000000007
//	progress: true
//	project: my-gcp-project
type Config struct {
	// N is the number of elements.
	N int `yaml:"n"`
	// Moduli are the residue moduli. Empty means psn.DefaultModuli.
	Moduli []uint64 `yaml:"moduli,flow"`
	// Verify is an extra modulus to check the result against. Zero disables verification.
	Verify uint64 `yaml:"verify,omitempty"`
	// Progress shows a progress bar while counting.
	Progress bool `yaml:"progress,omitempty"`
	// Project is the Google Cloud project to store results in. Empty disables storage.
	Project string `yaml:"project,omitempty"`
}

// Load reads a Config from a YAML file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes a Config from YAML. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults fills in the default moduli when none are set.
func (c *Config) ApplyDefaults() {
	if len(c.Moduli) == 0 {
		c.Moduli = make([]uint64, len(psn.DefaultModuli))
		copy(c.Moduli, psn.DefaultModuli)
	}
}

// Validate reports the first problem that would stop a run before it starts.
func (c *Config) Validate() error {
	if c.N < 1 || c.N > psn.MaxN {
		return fmt.Errorf("%w: n = %d not in [1, %d]", ErrInvalid, c.N, psn.MaxN)
	}
	mods, err := residue.NewModuli(c.Moduli...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Verify != 0 {
		if _, err := mods.With(c.Verify); err != nil {
			return fmt.Errorf("%w: verify modulus: %v", ErrInvalid, err)
		}
	}
	return nil
}

// String renders c as YAML.
func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(b)
}
