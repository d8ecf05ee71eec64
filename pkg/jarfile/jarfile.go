// SPDX-License-Identifier: MPL-2.0

// Package jarfile provides the zip primitives used to inspect and rewrite jar archives.
//
// Every mutation goes through [Rewrite], which streams the source archive into a sibling
// temporary file and renames it over the original only after the new archive has been
// fully written and synced. A failed rewrite therefore leaves the original file untouched.
package jarfile

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Extension is the file extension of archives that may be nested.
const Extension = ".jar"

// ErrEntryNotFound is returned by ReadEntry when the archive has no entry with the given name.
var ErrEntryNotFound = errors.New("entry not found")

type (
	// RewriteFunc receives the current archive contents and writes the replacement archive.
	// Entries not written to dst are dropped.
	RewriteFunc func(src *zip.Reader, dst *zip.Writer) error

	// Entry describes a single archive entry for listing purposes.
	Entry struct {
		// Name is the forward-slash entry path.
		Name string
		// Size is the uncompressed size in bytes.
		Size uint64
	}
)

// ContainsEntry reports whether the archive at path has an entry with the given name.
func ContainsEntry(path, name string) (found bool, err error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, f := range r.File {
		if f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ReadEntry returns the uncompressed contents of the named entry.
// Returns ErrEntryNotFound when the archive does not contain it.
func ReadEntry(path, name string) (data []byte, err error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, f := range r.File {
		if f.Name == name {
			return ReadFile(f)
		}
	}
	return nil, fmt.Errorf("%s in %s: %w", name, path, ErrEntryNotFound)
}

// List returns the archive entries in central directory order.
func List(path string) (entries []Entry, err error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	entries = make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, Entry{Name: f.Name, Size: f.UncompressedSize64})
	}
	return entries, nil
}

// ReadFile reads the full contents of an opened archive entry.
func ReadFile(f *zip.File) (data []byte, err error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
	}
	return data, nil
}

// WriteEntry writes data as a new deflated entry.
func WriteEntry(dst *zip.Writer, name string, modified time.Time, data []byte) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	}
	w, err := dst.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", name, err)
	}
	return nil
}

// AddFile streams the file at srcPath into a new deflated entry.
func AddFile(dst *zip.Writer, name, srcPath string) (err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := dst.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", name, err)
	}
	return nil
}

// AddEntry appends an entry to the archive at path, replacing any entry with the same name.
func AddEntry(path, name string, data []byte) error {
	return Rewrite(path, func(src *zip.Reader, dst *zip.Writer) error {
		for _, f := range src.File {
			if f.Name == name {
				continue
			}
			if err := dst.Copy(f); err != nil {
				return fmt.Errorf("failed to copy entry %s: %w", f.Name, err)
			}
		}
		return WriteEntry(dst, name, time.Now(), data)
	})
}

// Rewrite replaces the archive at path with the archive produced by fn.
//
// The replacement is written to a temporary file in the same directory and renamed over
// path once complete, so readers never observe a partially written archive and the
// original is left byte-identical when fn or any write fails.
func Rewrite(path string, fn RewriteFunc) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	src, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	srcClosed := false
	defer func() {
		if !srcClosed {
			_ = src.Close() // Read-only handle; close error is irrelevant on the failure path
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	tmpClosed := false
	defer func() {
		if !tmpClosed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = os.Remove(tmpPath) // Best-effort cleanup of the partial archive
		}
	}()

	zw := zip.NewWriter(tmp)
	if err = fn(&src.Reader, zw); err != nil {
		return err
	}
	if src.Comment != "" {
		if err = zw.SetComment(src.Comment); err != nil {
			return fmt.Errorf("failed to copy archive comment: %w", err)
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync archive: %w", err)
	}
	tmpClosed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err = os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set archive permissions: %w", err)
	}

	// The source must be closed before the rename on platforms that lock open files.
	srcClosed = true
	if err = src.Close(); err != nil {
		return fmt.Errorf("failed to close archive %s: %w", path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace archive %s: %w", path, err)
	}
	return nil
}
