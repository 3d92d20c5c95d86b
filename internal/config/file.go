package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the environment settings. Empty fields leave the
// current value alone.
type FileConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	BodyLimit  string `yaml:"body_limit"`
	LogLevel   string `yaml:"log_level"`

	Storage struct {
		Backend string `yaml:"backend"`
		BaseDir string `yaml:"base_dir"`
		S3      struct {
			Bucket   string `yaml:"bucket"`
			Prefix   string `yaml:"prefix"`
			Endpoint string `yaml:"endpoint"`
			Region   string `yaml:"region"`
		} `yaml:"s3"`
		GCS struct {
			Bucket string `yaml:"bucket"`
			Prefix string `yaml:"prefix"`
		} `yaml:"gcs"`
	} `yaml:"storage"`

	Keys struct {
		AESKey            string `yaml:"aes_key"`
		RSAPublicKeyFile  string `yaml:"rsa_public_key_file"`
		RSAPrivateKeyFile string `yaml:"rsa_private_key_file"`
	} `yaml:"keys"`
}

func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	overlay(&ListenAddr, fc.ListenAddr)
	overlay(&BodyLimit, fc.BodyLimit)
	overlay(&LogLevel, fc.LogLevel)

	overlay(&StorageBackend, fc.Storage.Backend)
	overlay(&BaseDir, fc.Storage.BaseDir)
	overlay(&S3Bucket, fc.Storage.S3.Bucket)
	overlay(&S3Prefix, fc.Storage.S3.Prefix)
	overlay(&S3Endpoint, fc.Storage.S3.Endpoint)
	overlay(&AWSRegion, fc.Storage.S3.Region)
	overlay(&GCSBucket, fc.Storage.GCS.Bucket)
	overlay(&GCSPrefix, fc.Storage.GCS.Prefix)

	overlay(&AESKey, fc.Keys.AESKey)
	overlay(&RSAPublicKeyFile, fc.Keys.RSAPublicKeyFile)
	overlay(&RSAPrivateKeyFile, fc.Keys.RSAPrivateKeyFile)

	return nil
}

func overlay(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
