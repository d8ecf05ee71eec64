// SPDX-License-Identifier: MPL-2.0

// Package issue holds the catalog of user-facing failures and the ActionableError type
// that links a failure to its catalog entry.
//
// Catalog entries are Markdown rendered with glamour. The CLI prints an ActionableError's
// Format output first and the entry's guidance below it.
package issue
