package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Unzip extracts files from a zip archive to the specified destination directory.
// Entries resolving outside of the destination are rejected
func Unzip(source string, destination string) error {
	reader, err := zip.OpenReader(source)
	if err != nil {
		return fmt.Errorf("failed to open zip archive '%s': %w", source, err)
	}
	defer func(reader *zip.ReadCloser) {
		err := reader.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "possible memory leak: failed to close %s\n", source)
		}
	}(reader)

	if err := os.MkdirAll(destination, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", destination, err)
	}
	root, err := filepath.Abs(destination)
	if err != nil {
		return fmt.Errorf("failed to resolve '%s': %w", destination, err)
	}

	for _, file := range reader.File {
		filePath := filepath.Join(root, file.Name)
		if filePath != root && !strings.HasPrefix(filePath, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry '%s' escapes destination '%s'", file.Name, destination)
		}
		if file.FileInfo().IsDir() {
			err := os.MkdirAll(filePath, os.ModePerm)
			if err != nil {
				return fmt.Errorf("failed to create directory '%s': %w", filePath, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", filepath.Dir(filePath), err)
		}
		err = extractZipFile(file, filePath)
		if err != nil {
			return err
		}
	}

	return nil
}

func extractZipFile(file *zip.File, filePath string) error {
	inputFile, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry '%s': %w", file.Name, err)
	}
	defer func() {
		_ = inputFile.Close()
	}()
	return WriteFile(io.LimitReader(inputFile, int64(file.UncompressedSize64)), filePath, file.Mode())
}
