package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateDerivationPath makes sure the path has the
// m/purpose'/coin'/account'/change/index shape with a non-negative index.
func ValidateDerivationPath(path string) error {
	_, _, err := splitDerivationPath(path)
	return err
}

// BumpDerivationPath returns the given path with the address index
// incremented by one.
func BumpDerivationPath(path string) (string, error) {
	prefix, index, err := splitDerivationPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d", prefix, index+1), nil
}

// DerivationPathAtIndex returns the Ethereum account path for the given
// address index.
func DerivationPathAtIndex(index int) string {
	return fmt.Sprintf("%s/%d", HDPathWithoutIndex, index)
}

func splitDerivationPath(path string) (string, int, error) {
	segments := strings.Split(path, "/")
	if len(segments) != derivationPathSegments || segments[0] != "m" {
		return "", 0, &DerivationError{path, ErrInvalidDerivationPath}
	}
	last := segments[len(segments)-1]
	index, err := strconv.Atoi(last)
	if err != nil || index < 0 {
		return "", 0, &DerivationError{path, ErrInvalidDerivationPath}
	}
	return strings.Join(segments[:len(segments)-1], "/"), index, nil
}
