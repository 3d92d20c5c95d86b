package keys

import (
	"fmt"
	"strings"
)

type Algorithm int

const (
	None Algorithm = iota
	Symmetric
	Asymmetric
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Symmetric:
		return "aes"
	case Asymmetric:
		return "rsa"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a request selector to an Algorithm. The numeric forms
// are the ones older clients send; an empty selector means None.
func ParseAlgorithm(v string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return None, nil
	case "0", "aes":
		return Symmetric, nil
	case "1", "rsa":
		return Asymmetric, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, v)
	}
}
