// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `
#Sample: {
	name:     string
	workers:  int & >=1 | *4
	verbose?: bool
}
`

type sample struct {
	Name    string `json:"name"`
	Workers int    `json:"workers"`
	Verbose bool   `json:"verbose,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Run("valid document with default", func(t *testing.T) {
		result, err := ParseAndDecode[sample]([]byte(testSchema), []byte(`name: "x"`), "#Sample")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if result.Value.Name != "x" || result.Value.Workers != 4 {
			t.Errorf("Value = %+v", result.Value)
		}
		if !result.Unified.Exists() {
			t.Error("Unified value not populated")
		}
	})

	t.Run("constraint violation names the field", func(t *testing.T) {
		_, err := ParseAndDecode[sample]([]byte(testSchema), []byte("name: \"x\"\nworkers: 0"), "#Sample",
			WithFilename("sample.cue"))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "sample.cue") || !strings.Contains(err.Error(), "workers") {
			t.Errorf("error = %q, want file name and field path", err)
		}
	})

	t.Run("unknown field rejected by closed definition", func(t *testing.T) {
		_, err := ParseAndDecode[sample]([]byte(testSchema), []byte("name: \"x\"\nextra: 1"), "#Sample")
		if err == nil {
			t.Fatal("expected error for field not in schema")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := ParseAndDecode[sample]([]byte(testSchema), []byte(`name: `), "#Sample", WithFilename("bad.cue"))
		if err == nil || !strings.Contains(err.Error(), "bad.cue") {
			t.Errorf("error = %v, want file name", err)
		}
	})

	t.Run("missing required field with concrete validation", func(t *testing.T) {
		_, err := ParseAndDecode[sample]([]byte(testSchema), []byte(`workers: 2`), "#Sample")
		if err == nil {
			t.Fatal("expected error for missing name")
		}
	})

	t.Run("file size limit", func(t *testing.T) {
		_, err := ParseAndDecode[sample]([]byte(testSchema), []byte(`name: "x"`), "#Sample", WithMaxFileSize(3))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("error = %v, want size limit error", err)
		}
	})

	t.Run("unknown schema definition", func(t *testing.T) {
		_, err := ParseAndDecode[sample]([]byte(testSchema), []byte(`name: "x"`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Errorf("error = %v, want internal error", err)
		}
	})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.cue")
	if err := os.WriteFile(path, []byte(`name: "from-file"`), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := ParseFile[sample]([]byte(testSchema), path, "#Sample")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if result.Value.Name != "from-file" {
		t.Errorf("Name = %q", result.Value.Name)
	}

	if _, err := ParseFile[sample]([]byte(testSchema), filepath.Join(t.TempDir(), "absent.cue"), "#Sample"); !os.IsNotExist(err) {
		t.Errorf("ParseFile(absent) error = %v, want not-exist", err)
	}
}
