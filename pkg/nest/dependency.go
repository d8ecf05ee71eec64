// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"fmt"
	"path"
	"path/filepath"
)

const (
	// KindProject marks a dependency produced by a sibling project of the same build.
	KindProject Kind = iota + 1
	// KindExternal marks a dependency backed by already resolved files on disk.
	KindExternal
)

const (
	// TaskKindRemapJar is a task whose output has been re-mapped for external consumption.
	TaskKindRemapJar TaskKind = "remap_jar"
	// TaskKindArchive is a plain archive-producing task.
	TaskKindArchive TaskKind = "archive"
	// TaskKindOther is any task that produces no archive.
	TaskKindOther TaskKind = "other"

	// RemapJarTaskName is the task name looked up first on a sibling project.
	RemapJarTaskName = "remapJar"
	// JarTaskName is the fallback task name used when a project has no remapJar task.
	JarTaskName = "jar"
)

type (
	// Kind tags which variant of Dependency is populated.
	Kind int

	// TaskKind classifies a sibling project's task by the kind of output it produces.
	TaskKind string

	// Task is a task of a sibling project.
	Task struct {
		// Project is the path of the project owning the task (e.g. ":lib").
		Project string
		// Name is the task name (e.g. "remapJar").
		Name string
		// Kind classifies the task output.
		Kind TaskKind
		// Archive is the output archive path. Empty for TaskKindOther.
		Archive string
	}

	// ProjectRef references a sibling project that builds its own archive.
	ProjectRef struct {
		// Path is the project path within the build (e.g. ":lib").
		Path string
		// Coordinate is the coordinate the project publishes under.
		Coordinate Coordinate
		// Tasks lists the project's tasks in registration order.
		Tasks []Task
	}

	// ExternalModule is a resolved module with its artifact files.
	ExternalModule struct {
		Coordinate Coordinate
		// Artifacts lists the resolved module artifact files.
		Artifacts []string
	}

	// Dependency is a tagged union over project and external references.
	// Project is set when Kind is KindProject, External when Kind is KindExternal.
	Dependency struct {
		Kind     Kind
		Project  *ProjectRef
		External *ExternalModule
	}

	// IncludeConfig is the already resolved include configuration of the target.
	IncludeConfig struct {
		// Declared holds the raw declared references in declaration order.
		Declared []Dependency
		// Resolved holds the first-level resolved modules in resolution order.
		Resolved []ExternalModule
		// Disabled is set by build profiles that forgo nesting entirely.
		Disabled bool
	}

	// Candidate is a jar that will be embedded into the target archive.
	Candidate struct {
		// Path is the file to embed; a staged copy when Synthesized is set.
		Path string
		// Origin is the dependency that contributed the file.
		Origin Dependency
		// Synthesized reports whether Path is a staged copy carrying a generated descriptor.
		Synthesized bool
	}
)

// String returns the lower-case variant name.
func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindExternal:
		return "external"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ProjectDependency wraps a project reference into a Dependency.
func ProjectDependency(ref ProjectRef) Dependency {
	return Dependency{Kind: KindProject, Project: &ref}
}

// ExternalDependency wraps a resolved module into a Dependency.
func ExternalDependency(mod ExternalModule) Dependency {
	return Dependency{Kind: KindExternal, External: &mod}
}

// Coordinate returns the coordinate of whichever variant backs the dependency.
func (d Dependency) Coordinate() Coordinate {
	switch d.Kind {
	case KindProject:
		return d.Project.Coordinate
	case KindExternal:
		return d.External.Coordinate
	default:
		panic(fmt.Sprintf("nest: dependency has unknown %s", d.Kind))
	}
}

// Group returns the dependency group.
func (d Dependency) Group() string { return d.Coordinate().Group }

// Name returns the dependency name.
func (d Dependency) Name() string { return d.Coordinate().Name }

// Version returns the dependency version.
func (d Dependency) Version() string { return d.Coordinate().Version }

// String returns a short human-readable form such as "project :lib (com.example:lib:1.0)".
func (d Dependency) String() string {
	if d.Kind == KindProject {
		return fmt.Sprintf("project %s (%s)", d.Project.Path, d.Project.Coordinate)
	}
	return fmt.Sprintf("%s %s", d.Kind, d.Coordinate())
}

// TasksNamed returns the project's tasks with the given name in registration order.
func (p ProjectRef) TasksNamed(name string) []Task {
	var tasks []Task
	for _, t := range p.Tasks {
		if t.Name == name {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// String returns "<project>:<task>", e.g. ":lib:remapJar".
func (t Task) String() string {
	if t.Project == "" || t.Project == ":" {
		return ":" + t.Name
	}
	return t.Project + ":" + t.Name
}

// FileName returns the base name of the candidate file.
func (c Candidate) FileName() string {
	return filepath.Base(c.Path)
}

// EntryName returns the entry the candidate is stored under in the target archive.
func (c Candidate) EntryName() string {
	return path.Join(JarsPrefix, c.FileName())
}
