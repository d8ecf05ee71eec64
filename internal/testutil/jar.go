// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// JarEntry is a single named entry of a jar fixture.
type JarEntry struct {
	Name string
	Data string
}

// MustWriteJar writes a zip archive at path containing entries in the given order.
func MustWriteJar(t testing.TB, path string, entries ...JarEntry) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create jar %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", e.Name, err)
		}
		if _, err := io.WriteString(w, e.Data); err != nil {
			t.Fatalf("failed to write entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish jar %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close jar %s: %v", path, err)
	}
}

// MustListJar returns the entry names of the jar at path in archive order.
func MustListJar(t testing.TB, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open jar %s: %v", path, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

// MustReadJarEntry returns the contents of the named entry, failing the test if it is absent.
func MustReadJarEntry(t testing.TB, path, name string) []byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open jar %s: %v", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", name, err)
		}
		return data
	}
	t.Fatalf("jar %s has no entry %s", path, name)
	return nil
}
