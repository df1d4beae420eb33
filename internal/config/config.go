package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/AnketBox/internal/utils"
)

// Config carries the CLI's settings. Environment variables provide defaults;
// a YAML file, when given, overrides them.
type Config struct {
	DataPath string `yaml:"data_path"`
	LogPath  string `yaml:"log_path"`
	Locale   string `yaml:"locale"`
}

// Load builds the config from env defaults and the optional YAML file at path.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DataPath: utils.SafeEnv("ANKETBOX_DATA_PATH", "anketbox.db"),
		LogPath:  utils.SafeEnv("ANKETBOX_LOG_PATH", ""),
		Locale:   utils.SafeEnv("ANKETBOX_LOCALE", "en"),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
