// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for jarnest.
//
// This package implements the Cobra command hierarchy: nesting include sets into a
// target archive, listing the remap tasks that must run first, inspecting nested
// archives, previewing synthesized descriptors, and showing configuration.
package cmd
