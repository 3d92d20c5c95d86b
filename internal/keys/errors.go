package keys

import "errors"

var (
	// ErrKeyParse indicates the configured key material could not be used.
	ErrKeyParse = errors.New("keys: invalid key material")

	// ErrInvalidCiphertextLength indicates asymmetric ciphertext is not a whole number of blocks.
	ErrInvalidCiphertextLength = errors.New("keys: ciphertext length is not a multiple of the block size")

	// ErrDecryption indicates the cipher rejected a ciphertext block.
	ErrDecryption = errors.New("keys: decryption failed")

	// ErrUnsupportedAlgorithm indicates a transform was requested without a usable algorithm.
	ErrUnsupportedAlgorithm = errors.New("keys: unsupported algorithm")

	// ErrUnknownAlgorithm indicates an algorithm selector that names no known algorithm.
	ErrUnknownAlgorithm = errors.New("keys: algorithm must be AES (0) or RSA (1)")
)
