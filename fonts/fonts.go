// Package fonts resolves the two type faces a receipt uses. Callers may
// point at TTF files on disk; without an override the bundled Go fonts are
// served, which cover Latin including the German umlauts.
package fonts

import (
	"fmt"
	"os"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Regular returns TTF data for the regular face, read from path when given.
func Regular(path string) ([]byte, error) {
	return load(path, goregular.TTF)
}

// Bold returns TTF data for the bold face, read from path when given.
func Bold(path string) ([]byte, error) {
	return load(path, gobold.TTF)
}

func load(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return data, nil
}
