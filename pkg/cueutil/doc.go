// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Both the build description (nestbuild.cue) and the user configuration (config.cue) go
// through the same flow:
//
//  1. Compile the embedded schema
//  2. Compile the user document and unify it with the schema definition
//  3. Validate and decode into a Go struct
//
// Errors carry the JSON path of the offending field:
//
//	nestbuild.cue: projects.":lib".tasks[0].kind: 3 errors in empty disjunction
//
// # Usage
//
//	//go:embed build_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[Build](schema, data, "#Build",
//	    cueutil.WithFilename("nestbuild.cue"),
//	)
package cueutil
