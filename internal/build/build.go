// SPDX-License-Identifier: MPL-2.0

// Package build loads the build description (nestbuild.cue) and turns it into the
// include configuration and task plan consumed by pkg/nest.
package build

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/jarnest/jarnest/internal/taskgraph"
	"github.com/jarnest/jarnest/pkg/cueutil"
	"github.com/jarnest/jarnest/pkg/nest"
)

// DefaultFileName is the build description looked up when none is given.
const DefaultFileName = "nestbuild.cue"

var (
	//go:embed build_schema.cue
	buildSchema []byte

	// ErrBuildFileNotFound is returned by Load when the build description does not exist.
	ErrBuildFileNotFound = errors.New("build file not found")
	// ErrUnknownProject is the sentinel error wrapped by UnknownProjectError.
	ErrUnknownProject = errors.New("unknown project")
)

type (
	// Build is a decoded build description.
	Build struct {
		Projects        map[string]Project `json:"projects"`
		Target          string             `json:"target"`
		Include         *Include           `json:"include,omitempty"`
		NestingDisabled bool               `json:"nesting_disabled,omitempty"`

		// dir is the directory relative paths resolve against.
		dir string
	}

	// Project is a sibling build unit.
	Project struct {
		Group   string   `json:"group"`
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Dir     string   `json:"dir,omitempty"`
		Tasks   []Task   `json:"tasks,omitempty"`
		Include *Include `json:"include,omitempty"`
	}

	// Task is a task registered on a project.
	Task struct {
		Name    string `json:"name"`
		Kind    string `json:"kind"`
		Archive string `json:"archive,omitempty"`
	}

	// Include is a project's include configuration.
	Include struct {
		Declared []Declared `json:"declared,omitempty"`
		Resolved []Resolved `json:"resolved,omitempty"`
	}

	// Declared is a declared include reference; exactly one field is set.
	Declared struct {
		Project string `json:"project,omitempty"`
		Module  string `json:"module,omitempty"`
	}

	// Resolved is a first-level resolved module with its artifact files.
	Resolved struct {
		Group     string   `json:"group"`
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Artifacts []string `json:"artifacts,omitempty"`
	}

	// UnknownProjectError is returned when a project path does not name a project.
	UnknownProjectError struct {
		// Path is the missing project path.
		Path string
		// Field is where the reference was found, e.g. "target".
		Field string
	}
)

func (e *UnknownProjectError) Error() string {
	return fmt.Sprintf("%s references unknown project %q", e.Field, e.Path)
}

// Unwrap returns ErrUnknownProject for errors.Is() compatibility.
func (e *UnknownProjectError) Unwrap() error { return ErrUnknownProject }

// Load reads and validates the build description at path.
// Relative paths inside it resolve against the file's directory.
func Load(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrBuildFileNotFound)
		}
		return nil, fmt.Errorf("failed to read build file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path, filepath.Dir(absPath))
}

// Parse validates a build description. filename is used in errors and dir is the base
// for relative paths.
func Parse(data []byte, filename, dir string) (*Build, error) {
	result, err := cueutil.ParseAndDecode[Build](buildSchema, data, "#Build",
		cueutil.WithFilename(filename),
		cueutil.WithConcrete(true),
	)
	if err != nil {
		return nil, err
	}

	b := result.Value
	b.dir = dir
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return b, nil
}

// Dir returns the directory relative paths resolve against.
func (b *Build) Dir() string {
	return b.dir
}

// ProjectPaths returns the project paths in sorted order.
func (b *Build) ProjectPaths() []string {
	return slices.Sorted(maps.Keys(b.Projects))
}

// TargetInclude returns the include configuration of the target: the root include when
// present, otherwise the target project's own.
func (b *Build) TargetInclude() Include {
	if b.Include != nil {
		return *b.Include
	}
	if p, ok := b.Projects[b.Target]; ok && p.Include != nil {
		return *p.Include
	}
	return Include{}
}

// ProjectRef converts the project at path into the form pkg/nest consumes.
// Task archive paths are made absolute against the project directory.
func (b *Build) ProjectRef(path string) (nest.ProjectRef, error) {
	p, ok := b.Projects[path]
	if !ok {
		return nest.ProjectRef{}, &UnknownProjectError{Path: path, Field: "project"}
	}

	dir := b.projectDir(p)
	tasks := make([]nest.Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		task := nest.Task{Project: path, Name: t.Name, Kind: nest.TaskKind(t.Kind)}
		if t.Archive != "" {
			task.Archive = resolvePath(dir, t.Archive)
		}
		tasks = append(tasks, task)
	}

	return nest.ProjectRef{
		Path:       path,
		Coordinate: nest.Coordinate{Group: p.Group, Name: p.Name, Version: p.Version},
		Tasks:      tasks,
	}, nil
}

// IncludeConfig converts the target include configuration into the form pkg/nest
// consumes. Resolved artifact paths are made absolute against the target project directory.
func (b *Build) IncludeConfig() (nest.IncludeConfig, error) {
	inc := b.TargetInclude()
	dir := b.projectDir(b.Projects[b.Target])

	cfg := nest.IncludeConfig{Disabled: b.NestingDisabled}
	for _, r := range inc.Resolved {
		cfg.Resolved = append(cfg.Resolved, nest.ExternalModule{
			Coordinate: nest.Coordinate{Group: r.Group, Name: r.Name, Version: r.Version},
			Artifacts:  resolvePaths(dir, r.Artifacts),
		})
	}

	for _, d := range inc.Declared {
		if d.Project != "" {
			ref, err := b.ProjectRef(d.Project)
			if err != nil {
				return nest.IncludeConfig{}, err
			}
			cfg.Declared = append(cfg.Declared, nest.ProjectDependency(ref))
			continue
		}

		coord, err := nest.ParseCoordinate(d.Module)
		if err != nil {
			return nest.IncludeConfig{}, err
		}
		mod := nest.ExternalModule{Coordinate: coord}
		if i := slices.IndexFunc(cfg.Resolved, func(m nest.ExternalModule) bool { return m.Coordinate == coord }); i >= 0 {
			mod.Artifacts = cfg.Resolved[i].Artifacts
		}
		cfg.Declared = append(cfg.Declared, nest.ExternalDependency(mod))
	}
	return cfg, nil
}

// TargetArchive returns the archive the target project produces, preferring its remapJar
// output. Reports false when the target has no archive-producing task.
func (b *Build) TargetArchive() (string, bool) {
	ref, err := b.ProjectRef(b.Target)
	if err != nil {
		return "", false
	}
	archives := nest.Locate(ref)
	if len(archives) == 0 {
		return "", false
	}
	return archives[0], true
}

// Plan returns every remapJar task that must run before the target can be nested,
// including those of projects included transitively, dependencies first.
func (b *Build) Plan() ([]nest.Task, error) {
	g := taskgraph.FromDeps(declaredProjects(b.TargetInclude()), func(path string) []string {
		p := b.Projects[path]
		if p.Include == nil {
			return nil
		}
		return declaredProjects(*p.Include)
	})

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var tasks []nest.Task
	for _, path := range order {
		ref, err := b.ProjectRef(path)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, nest.RequiredTasks(nest.IncludeConfig{
			Declared: []nest.Dependency{nest.ProjectDependency(ref)},
		})...)
	}
	return tasks, nil
}

func (b *Build) validate() error {
	if _, ok := b.Projects[b.Target]; !ok {
		return &UnknownProjectError{Path: b.Target, Field: "target"}
	}
	if b.Include != nil {
		if err := b.validateInclude("include", *b.Include); err != nil {
			return err
		}
	}
	for _, path := range b.ProjectPaths() {
		if inc := b.Projects[path].Include; inc != nil {
			if err := b.validateInclude(fmt.Sprintf("projects.%q.include", path), *inc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Build) validateInclude(field string, inc Include) error {
	for i, d := range inc.Declared {
		if d.Project == "" {
			continue
		}
		if _, ok := b.Projects[d.Project]; !ok {
			return &UnknownProjectError{Path: d.Project, Field: fmt.Sprintf("%s.declared[%d]", field, i)}
		}
	}
	return nil
}

// projectDir returns the directory a project's relative paths resolve against.
func (b *Build) projectDir(p Project) string {
	if p.Dir == "" {
		return b.dir
	}
	return resolvePath(b.dir, p.Dir)
}

func declaredProjects(inc Include) []string {
	var paths []string
	for _, d := range inc.Declared {
		if d.Project != "" {
			paths = append(paths, d.Project)
		}
	}
	return paths
}

func resolvePath(dir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

func resolvePaths(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(dir, p))
	}
	return out
}
