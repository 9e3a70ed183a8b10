// config.go holds .assist config types and resolution (load, defaults merge).
package assistcli

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// localConfig holds optional values from .assist/config.yaml (flags override).
type localConfig struct {
	DB             string `yaml:"db"`
	ValkeyAddr     string `yaml:"valkey_addr"`
	ValkeyPassword string `yaml:"valkey_password"`
	PostgresDSN    string `yaml:"postgres_dsn"`
	NATSURL        string `yaml:"nats_url"`
	NATSUser       string `yaml:"nats_user"`
	NATSPassword   string `yaml:"nats_password"`
	Trace          *bool  `yaml:"trace"`
	JSON           *bool  `yaml:"json"`
}

// defaultConfig returns the baseline every loaded config is merged onto.
func defaultConfig() localConfig {
	f := false
	return localConfig{
		Trace: &f,
		JSON:  &f,
	}
}

// mergeWithDefaults fills unset fields of cfg from defaultConfig.
func mergeWithDefaults(cfg localConfig) (localConfig, error) {
	defaults := defaultConfig()
	if err := mergo.Merge(&cfg, defaults); err != nil {
		return localConfig{}, fmt.Errorf("failed to merge config defaults: %w", err)
	}
	return cfg, nil
}

// loadLocalConfig tries ./.assist/config.yaml then ~/.assist/config.yaml.
// Returns (config, pathToConfigFile, nil). If neither file exists, returns (defaults, "", nil).
func loadLocalConfig() (localConfig, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return localConfig{}, "", err
	}
	try := []string{
		filepath.Join(cwd, ".assist", "config.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		try = append(try, filepath.Join(home, ".assist", "config.yaml"))
	}
	for _, p := range try {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return localConfig{}, "", err
		}
		var cfg localConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return localConfig{}, "", fmt.Errorf("%s: %w", p, err)
		}
		merged, err := mergeWithDefaults(cfg)
		if err != nil {
			return localConfig{}, "", err
		}
		return merged, p, nil
	}
	merged, err := mergeWithDefaults(localConfig{})
	if err != nil {
		return localConfig{}, "", err
	}
	return merged, "", nil
}
