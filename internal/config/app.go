package config

import "os"

var (
	ListenAddr string
	BodyLimit  string
	LogLevel   string
)

func LoadAppConfig() error {
	ListenAddr = getenv("LISTEN_ADDR", "127.0.0.1:3000")
	BodyLimit = getenv("BODY_LIMIT", "1G")
	LogLevel = getenv("LOG_LEVEL", "info")

	return nil
}

// Load reads every setting from the environment and then overlays the YAML
// file at path, if one is given.
func Load(path string) error {
	if err := LoadAppConfig(); err != nil {
		return err
	}
	if err := LoadStorageConfig(); err != nil {
		return err
	}
	if err := LoadKeyConfig(); err != nil {
		return err
	}
	if path != "" {
		return LoadFile(path)
	}
	return nil
}

func getenv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
