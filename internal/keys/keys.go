// Package keys holds the process-wide key material and the reversible
// transforms built on it: AES-256-CTR for the symmetric algorithm and
// block-chunked RSA-OAEP for the asymmetric one.
package keys

import (
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Material is the raw key configuration handed to NewManager.
type Material struct {
	Secret        string
	PublicKeyPEM  []byte
	PrivateKeyPEM []byte
}

// Manager is immutable once built and safe for concurrent use.
type Manager struct {
	aesKey  [sha256.Size]byte
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

func NewManager(m Material) (*Manager, error) {
	if m.Secret == "" {
		return nil, fmt.Errorf("%w: symmetric secret is empty", ErrKeyParse)
	}

	public, err := parsePublicKey(m.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %w", ErrKeyParse, err)
	}

	private, err := parsePrivateKey(m.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %w", ErrKeyParse, err)
	}

	if public.Size() != private.Size() {
		return nil, fmt.Errorf("%w: public key is %d bytes, private key is %d bytes", ErrKeyParse, public.Size(), private.Size())
	}

	if maxChunk := public.Size() - 2*sha1.Size - 2; maxChunk < ChunkSize {
		return nil, fmt.Errorf("%w: %d-bit key cannot carry %d-byte blocks", ErrKeyParse, public.N.BitLen(), ChunkSize)
	}

	private.Precompute()

	return &Manager{
		aesKey:  sha256.Sum256([]byte(m.Secret)),
		public:  public,
		private: private,
	}, nil
}

// BlockSize is the size of one asymmetric ciphertext block.
func (m *Manager) BlockSize() int {
	return m.public.Size()
}

func (m *Manager) Encrypt(alg Algorithm, plaintext []byte) ([]byte, error) {
	switch alg {
	case Symmetric:
		return m.EncryptSymmetric(plaintext)
	case Asymmetric:
		return m.EncryptAsymmetric(plaintext)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

func (m *Manager) Decrypt(alg Algorithm, ciphertext []byte) ([]byte, error) {
	switch alg {
	case Symmetric:
		return m.DecryptSymmetric(ciphertext)
	case Asymmetric:
		return m.DecryptAsymmetric(ciphertext)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

// parsePublicKey accepts PKCS#1 and PKIX PEM blocks as well as an OpenSSH
// authorized_keys line.
func parsePublicKey(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no key data")
	}

	if block, _ := pem.Decode(data); block != nil {
		switch block.Type {
		case "RSA PUBLIC KEY":
			return x509.ParsePKCS1PublicKey(block.Bytes)
		case "PUBLIC KEY":
			pub, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			rsaPub, ok := pub.(*rsa.PublicKey)
			if !ok {
				return nil, fmt.Errorf("not an RSA public key")
			}
			return rsaPub, nil
		default:
			return nil, fmt.Errorf("unexpected PEM block %q", block.Type)
		}
	}

	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PEM block containing public key")
	}
	cryptoPub, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported OpenSSH key type %s", pub.Type())
	}
	rsaPub, ok := cryptoPub.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPub, nil
}

// parsePrivateKey accepts PKCS#1, PKCS#8 and OpenSSH private keys.
func parsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no key data")
	}

	key, err := ssh.ParseRawPrivateKey(data)
	if err != nil {
		return nil, err
	}

	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	default:
		return nil, fmt.Errorf("not an RSA private key (%T)", key)
	}
}
