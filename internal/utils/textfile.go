package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrBinaryFile is returned for files that do not look like text.
var ErrBinaryFile = errors.New("not a text file")

// ReadTextFile returns the file content with CRLF line endings normalised to LF.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, ErrBinaryFile)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// WriteTextFile writes content, replacing the file if it exists.
func WriteTextFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
