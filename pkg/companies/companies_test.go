package companies

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Acme   Corp  ", "Acme Corp"},
		{"\tGlobex\n", "Globex"},
		{"   ", ""},
		{"", ""},
		{"Initech", "Initech"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"Acme Corp", " acme  corp ", "", "Globex", "ACME CORP", "  ", "Initech", "globex"})
	want := []string{"Acme Corp", "Globex", "Initech"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedupe() mismatch (-want +got):\n%s", diff)
	}

	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Dedupe(nil) = %v, want empty", got)
	}
}

func TestRead(t *testing.T) {
	in := "Acme Corp\r\n\n   \n  Globex  \nInitech"
	got, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{"Acme Corp", "  Globex  ", "Initech"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.txt")
	if err := os.WriteFile(path, []byte("Acme\nGlobex\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Acme", "Globex"}, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want not-exist", err)
	}
}

func TestLoadNonEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr error
	}{
		{"dedupes", "Acme\n  acme \nGlobex\n", []string{"Acme", "Globex"}, nil},
		{"blank lines only", "\n   \n\t\n", nil, ErrNoCompanies},
		{"empty file", "", nil, ErrNoCompanies},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "companies.txt")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			got, err := LoadNonEmpty(path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadNonEmpty() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadNonEmpty() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := LoadNonEmpty(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadNonEmpty(missing) error = %v, want not-exist", err)
	}
}
