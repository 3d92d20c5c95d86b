package config

import (
	"fmt"
	"os"

	"github.com/kmolski/filevault/internal/keys"
)

var (
	AESKey            string
	RSAPrivateKey     string
	RSAPrivateKeyFile string
	RSAPublicKey      string
	RSAPublicKeyFile  string
)

func LoadKeyConfig() error {
	AESKey = getenv("AES_KEY", "")
	RSAPublicKey = getenv("RSA_PUBLIC_KEY", "")
	RSAPublicKeyFile = getenv("RSA_PUBLIC_KEY_FILE", "")
	RSAPrivateKey = getenv("RSA_PRIVATE_KEY", "")
	RSAPrivateKeyFile = getenv("RSA_PRIVATE_KEY_FILE", "")

	return nil
}

// KeyMaterial assembles the configured key material. Inline PEM values win
// over key files.
func KeyMaterial() (keys.Material, error) {
	public, err := readKey("public", RSAPublicKey, RSAPublicKeyFile)
	if err != nil {
		return keys.Material{}, err
	}
	private, err := readKey("private", RSAPrivateKey, RSAPrivateKeyFile)
	if err != nil {
		return keys.Material{}, err
	}

	return keys.Material{
		Secret:        AESKey,
		PublicKeyPEM:  public,
		PrivateKeyPEM: private,
	}, nil
}

func readKey(kind, inline, path string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if path == "" {
		return nil, fmt.Errorf("no RSA %s key configured", kind)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read RSA %s key: %w", kind, err)
	}
	return data, nil
}
