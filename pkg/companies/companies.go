// Package companies reads and cleans lists of company names.
package companies

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoCompanies is returned by LoadNonEmpty when the list has no usable names.
var ErrNoCompanies = errors.New("no companies found")

// Clean trims name and collapses internal whitespace to single spaces.
func Clean(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Dedupe cleans names, drops empty ones, and removes case-insensitive
// duplicates. The first spelling of each name wins and order is preserved.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := Clean(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Read returns one company per non-blank line of r, uncleaned.
func Read(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read companies: %w", err)
	}
	return names, nil
}

// Load reads the company list at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open companies file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return Read(f)
}

// LoadNonEmpty loads and dedupes the list at path, returning ErrNoCompanies
// when nothing remains.
func LoadNonEmpty(path string) ([]string, error) {
	names, err := Load(path)
	if err != nil {
		return nil, err
	}
	names = Dedupe(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCompanies)
	}
	return names, nil
}
