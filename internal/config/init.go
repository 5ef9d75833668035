package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const exampleHeader = `# buildconf configuration.
# Values may reference environment variables as ${VAR}, read from the process
# environment and .env files next to this file. Write $$ for a literal $.
`

// exampleFile is the on-disk shape written by Init.
type exampleFile struct {
	Base    string   `yaml:"base"`
	Plugins []string `yaml:"plugins"`
	Resolve struct {
		Alias map[string]string `yaml:"alias"`
	} `yaml:"resolve"`
}

// Init writes an example configuration file and creates the source directory
// its alias points at.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := exampleFile{
		Base:    "/",
		Plugins: []string{"vue"},
	}
	example.Resolve.Alias = map[string]string{"@": "./src"}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	data = append([]byte(exampleHeader), data...)
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	srcDir := filepath.Join(filepath.Dir(configPath), "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}
	return nil
}
