// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the filesystem helpers (MustWriteFile, MustReadFile),
// the package builds jar fixtures (MustWriteJar) and reads them back (MustReadJarEntry,
// MustListJar) so archive tests can assert on entry names and contents.
package testutil
