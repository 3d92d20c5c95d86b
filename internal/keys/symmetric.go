package keys

import (
	"crypto/aes"
	"crypto/cipher"
)

// legacyIV is the counter block every symmetric transform starts from. It is
// fixed so files written by earlier releases stay readable; the same
// keystream is therefore reused for every file.
var legacyIV = [aes.BlockSize]byte{
	102, 0, 21, 56, 172, 34, 123, 32, 45, 250, 6, 42, 80, 66, 190, 200,
}

func (m *Manager) EncryptSymmetric(plaintext []byte) ([]byte, error) {
	return m.xorKeyStream(plaintext)
}

func (m *Manager) DecryptSymmetric(ciphertext []byte) ([]byte, error) {
	return m.xorKeyStream(ciphertext)
}

func (m *Manager) xorKeyStream(in []byte) ([]byte, error) {
	block, err := aes.NewCipher(m.aesKey[:])
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, legacyIV[:]).XORKeyStream(out, in)
	return out, nil
}
