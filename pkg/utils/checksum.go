package utils

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
)

// Sha256sum reads the file at the provided path and calculates the sha256sum
func Sha256sum(filepath string) (string, error) {
	fileBytes, err := os.ReadFile(filepath)
	if err != nil {
		return "", fmt.Errorf("failed to read file '%s' while generating sha256sum: %w", filepath, err)
	}
	return sha256Hex(fileBytes), nil
}

// VerifySha256sum returns an error if the contents' sha256sum doesn't match the expected, hex-encoded, value
func VerifySha256sum(contents []byte, expected string) error {
	actual := sha256Hex(contents)
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

func sha256Hex(contents []byte) string {
	sumBytes := sha256.Sum256(contents)
	return fmt.Sprintf("%x", sumBytes[:])
}
