package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func Contains[T comparable](list []T, val T) bool {
	for _, elem := range list {
		if elem == val {
			return true
		}
	}
	return false
}

// ContainsAll returns true if s contains every one of the provided terms
func ContainsAll(s string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(s, term) {
			return false
		}
	}
	return true
}

// WriteFile copies the contents of the reader into the file at path, creating or truncating it
func WriteFile(reader io.Reader, path string, perm os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close '%s': %v\n", path, closeErr)
		}
	}()

	_, err = io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
