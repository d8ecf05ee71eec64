// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/jarnest/jarnest/pkg/jarfile"
)

// Classify turns the include configuration into the ordered candidate list.
//
// Declared project dependencies contribute their located archives first, in declaration
// order. Resolved external modules follow in resolution order, except those whose
// coordinate is already produced by a declared project dependency. A disabled
// configuration yields no candidates.
//
// Classify performs no I/O; call ValidateCandidates on the result before staging or nesting.
func Classify(cfg IncludeConfig) []Candidate {
	if cfg.Disabled {
		return nil
	}

	var candidates []Candidate
	produced := make(map[Coordinate]struct{})

	for _, dep := range cfg.Declared {
		if dep.Kind != KindProject {
			continue
		}
		produced[dep.Project.Coordinate] = struct{}{}
		for _, archive := range Locate(*dep.Project) {
			candidates = append(candidates, Candidate{Path: archive, Origin: dep})
		}
	}

	for _, mod := range cfg.Resolved {
		if _, ok := produced[mod.Coordinate]; ok {
			continue
		}
		origin := ExternalDependency(mod)
		seen := make(map[string]struct{}, len(mod.Artifacts))
		for _, artifact := range mod.Artifacts {
			if _, dup := seen[artifact]; dup {
				continue
			}
			seen[artifact] = struct{}{}
			candidates = append(candidates, Candidate{Path: artifact, Origin: origin})
		}
	}

	return candidates
}

// Locate returns the archives a sibling project contributes.
//
// Tasks named remapJar are used exclusively when the project has any; otherwise tasks
// named jar are used. Of the selected tasks only re-mapping and archive tasks with an
// archive path contribute. A project with neither contributes nothing.
func Locate(ref ProjectRef) []string {
	tasks := ref.TasksNamed(RemapJarTaskName)
	if len(tasks) == 0 {
		tasks = ref.TasksNamed(JarTaskName)
	}

	var archives []string
	for _, t := range tasks {
		switch t.Kind {
		case TaskKindRemapJar, TaskKindArchive:
			if t.Archive != "" {
				archives = append(archives, t.Archive)
			}
		case TaskKindOther:
		}
	}
	return archives
}

// ValidateCandidates checks every candidate before anything is written.
// The first candidate that is missing, is a directory, or lacks the jar extension aborts
// validation with an ArtifactNotFoundError or InvalidArtifactError.
func ValidateCandidates(candidates []Candidate) error {
	for _, c := range candidates {
		if err := validateCandidate(c.Path); err != nil {
			return err
		}
	}
	return nil
}

func validateCandidate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ArtifactNotFoundError{Path: path}
		}
		return &InvalidArtifactError{Path: path, Reason: "cannot be accessed", Cause: err}
	}
	if info.IsDir() {
		return &InvalidArtifactError{Path: path, Reason: "is a directory"}
	}
	if !strings.HasSuffix(info.Name(), jarfile.Extension) {
		return &InvalidArtifactError{Path: path, Reason: "missing " + jarfile.Extension + " extension"}
	}
	return nil
}
