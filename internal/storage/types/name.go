package types

import (
	"fmt"
	"path"
	"strings"
)

// CleanName normalises a caller-supplied name to a slash-separated relative
// path that cannot leave the store root.
func CleanName(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	slashed := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(slashed, "/") || (len(slashed) >= 2 && slashed[1] == ':') {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidName, name)
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q escapes the base directory", ErrInvalidName, name)
	}

	return cleaned, nil
}
