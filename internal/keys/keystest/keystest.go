// Package keystest provides throwaway key material for tests.
package keystest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/kmolski/filevault/internal/keys"
)

const Secret = "test-secret"

var (
	once   sync.Once
	shared *rsa.PrivateKey
	genErr error
)

// RSAKey returns a 2048-bit key generated once per test binary.
func RSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	once.Do(func() {
		shared, genErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if genErr != nil {
		t.Fatalf("generate RSA key: %v", genErr)
	}
	return shared
}

// Material returns key material with a PKCS#1 public and private key.
func Material(t testing.TB) keys.Material {
	t.Helper()
	key := RSAKey(t)
	return keys.Material{
		Secret:        Secret,
		PublicKeyPEM:  PublicPKCS1(&key.PublicKey),
		PrivateKeyPEM: PrivatePKCS1(key),
	}
}

func Manager(t testing.TB) *keys.Manager {
	t.Helper()
	m, err := keys.NewManager(Material(t))
	if err != nil {
		t.Fatalf("keys.NewManager: %v", err)
	}
	return m
}

func PublicPKCS1(pub *rsa.PublicKey) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(pub)})
}

func PrivatePKCS1(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}
