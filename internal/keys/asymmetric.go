package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"fmt"
)

// ChunkSize is the plaintext carried by one OAEP block. It sits well under
// the OAEP limit for 2048-bit keys.
const ChunkSize = 128

// EncryptAsymmetric encrypts plaintext in ChunkSize pieces, each producing one
// BlockSize ciphertext block. Empty input yields empty output.
func (m *Manager) EncryptAsymmetric(plaintext []byte) ([]byte, error) {
	blocks := (len(plaintext) + ChunkSize - 1) / ChunkSize
	out := make([]byte, 0, blocks*m.BlockSize())

	for i := 0; i < blocks; i++ {
		start := i * ChunkSize
		end := min(start+ChunkSize, len(plaintext))

		block, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, m.public, plaintext[start:end], nil)
		if err != nil {
			return nil, fmt.Errorf("encrypt block %d: %w", i, err)
		}
		out = append(out, block...)
	}

	return out, nil
}

// DecryptAsymmetric reverses EncryptAsymmetric. Blocks recover a variable
// number of bytes (the last one is usually short), so each block contributes
// exactly what OAEP returned for it.
func (m *Manager) DecryptAsymmetric(ciphertext []byte) ([]byte, error) {
	size := m.BlockSize()
	if len(ciphertext)%size != 0 {
		return nil, fmt.Errorf("%w: got %d bytes, block size %d", ErrInvalidCiphertextLength, len(ciphertext), size)
	}

	blocks := len(ciphertext) / size
	out := make([]byte, 0, blocks*ChunkSize)

	for i := 0; i < blocks; i++ {
		recovered, err := rsa.DecryptOAEP(sha1.New(), nil, m.private, ciphertext[i*size:(i+1)*size], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %w", ErrDecryption, i, err)
		}
		out = append(out, recovered...)
	}

	return out, nil
}
