// Package configloader assembles a service configuration from a YAML file, a .env file and the environment.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

// Load reads the configuration for serviceName.
//
// Sources, lowest priority first:
//   - the YAML file named by <SERVICE>_CONFIG_FILE (default config.yaml)
//   - the dotenv file named by <SERVICE>_ENV_FILE (default .env)
//   - <SERVICE>_* environment variables, where "_" separates nested keys
//
// Missing files are skipped. A file that exists but cannot be parsed is an error.
func Load[T Validator](serviceName string) (T, error) {
	var cfg T
	prefix := strings.ToUpper(serviceName) + "_"
	k := koanf.New(".")

	if err := loadYAML(k, orDefault(os.Getenv(prefix+"CONFIG_FILE"), defaultConfigFile)); err != nil {
		return cfg, err
	}
	if err := loadDotEnv(k, orDefault(os.Getenv(prefix+"ENV_FILE"), defaultEnvFile), prefix); err != nil {
		return cfg, err
	}
	if err := k.Load(env.Provider(prefix, ".", keyFor(prefix)), nil); err != nil {
		return cfg, fmt.Errorf("error loading environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadYAML(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: config file %s not found, using environment only", path)
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", path, err)
	}
	return nil
}

// loadDotEnv loads the prefixed entries of a dotenv file. Other entries are ignored.
func loadDotEnv(k *koanf.Koanf, path, prefix string) error {
	entries, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	toKey := keyFor(prefix)
	values := make(map[string]any, len(entries))
	for name, value := range entries {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			values[toKey(name)] = value
		}
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// keyFor maps SENTIMENT_CLASSIFIER_URL to classifier.url.
func keyFor(prefix string) func(string) string {
	return func(name string) string {
		name = strings.ToLower(name[min(len(prefix), len(name)):])
		return strings.ReplaceAll(name, "_", ".")
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
