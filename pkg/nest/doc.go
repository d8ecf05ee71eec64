// SPDX-License-Identifier: MPL-2.0

// Package nest embeds dependency jars into a target archive and records them in the
// target's descriptor.
//
// # Pipeline
//
// A bundling run goes through four stages, each usable on its own:
//
//   - [Classify] turns an [IncludeConfig] into an ordered list of [Candidate] jars. Project
//     dependencies come first in declaration order, then resolved external modules in
//     resolution order. An external module whose [Coordinate] is already produced by a
//     project dependency is skipped.
//   - [ValidateCandidates] checks every candidate (exists, regular file, ".jar" suffix)
//     before anything is written anywhere.
//   - [Synthesizer.Prepare] stages a copy of every candidate that lacks a descriptor and adds
//     a generated one to the copy. Originals are never modified.
//   - [Nester.Nest] rewrites the target once: candidate jars are stored under
//     [JarsPrefix] and the target's descriptor gets one jars record per candidate.
//
// [Bundler] wires the stages together. [RequiredTasks] reports the sibling re-mapping tasks
// a scheduler must run before bundling.
//
// # Ordering and idempotence
//
// The jars records follow candidate order exactly and are never deduplicated: nesting the
// same candidates twice yields duplicated records. Two candidates sharing a file name map to
// the same entry; the last one wins the entry while both keep their record.
package nest
