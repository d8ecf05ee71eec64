// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarnest/jarnest/internal/config"
	"github.com/jarnest/jarnest/internal/testutil"
	"github.com/jarnest/jarnest/pkg/nest"
)

const fixtureBuild = `
target: ":mod"

projects: {
	":mod": {
		group: "com.example", name: "mod", version: "1.0"
		tasks: [{name: "remapJar", kind: "remap_jar", archive: "build/libs/mod-1.0.jar"}]
	}
	":lib": {
		group: "com.example", name: "lib", version: "1.0"
		dir: "lib"
		tasks: [{name: "remapJar", kind: "remap_jar", archive: "build/libs/lib-1.0.jar"}]
	}
}

include: {
	declared: [{project: ":lib"}]
	resolved: [
		{group: "com.example", name: "lib", version: "1.0", artifacts: ["repo/lib-1.0.jar"]},
		{group: "org.other", name: "util", version: "2.3", artifacts: ["repo/util-2.3.jar"]},
	]
}
`

type (
	staticConfig struct {
		cfg    *config.Config
		source string
		err    error
	}

	cliFixture struct {
		dir    string
		target string
		app    *App
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	}
)

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (s staticConfig) Locate(config.LoadOptions) (string, error) {
	return s.source, s.err
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()

	testutil.MustWriteFile(t, filepath.Join(dir, "nestbuild.cue"), []byte(fixtureBuild))
	target := filepath.Join(dir, "build", "libs", "mod-1.0.jar")
	testutil.MustWriteJar(t, target, testutil.JarEntry{Name: nest.DescriptorEntry, Data: `{"schemaVersion":1,"id":"mod"}`})
	testutil.MustWriteJar(t, filepath.Join(dir, "lib", "build", "libs", "lib-1.0.jar"),
		testutil.JarEntry{Name: nest.DescriptorEntry, Data: `{"schemaVersion":1,"id":"lib"}`})
	testutil.MustWriteJar(t, filepath.Join(dir, "repo", "lib-1.0.jar"), testutil.JarEntry{Name: "stale.class", Data: "x"})
	testutil.MustWriteJar(t, filepath.Join(dir, "repo", "util-2.3.jar"), testutil.JarEntry{Name: "org/other/Util.class", Data: "u"})

	cfg := config.DefaultConfig()
	cfg.CacheDir = config.CacheDirPath(filepath.Join(dir, "cache"))
	cfg.BuildFile = filepath.Join(dir, "nestbuild.cue")

	f := &cliFixture{dir: dir, target: target, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	f.app = NewApp(Dependencies{Config: staticConfig{cfg: cfg}, Stdout: f.stdout, Stderr: f.stderr})
	return f
}

func (f *cliFixture) run(args ...string) error {
	root := NewRootCommand(f.app)
	root.SetArgs(args)
	root.SetOut(f.stdout)
	root.SetErr(f.stderr)
	return root.ExecuteContext(context.Background())
}

func TestNestCommand(t *testing.T) {
	f := newCLIFixture(t)

	if err := f.run("nest"); err != nil {
		t.Fatalf("nest error: %v\nstderr:\n%s", err, f.stderr)
	}

	entries := testutil.MustListJar(t, f.target)
	for _, want := range []string{"META-INF/jars/lib-1.0.jar", "META-INF/jars/util-2.3.jar"} {
		if !contains(entries, want) {
			t.Errorf("target entries %v missing %s", entries, want)
		}
	}

	var doc struct {
		Jars []nest.JarRecord `json:"jars"`
	}
	if err := json.Unmarshal(testutil.MustReadJarEntry(t, f.target, nest.DescriptorEntry), &doc); err != nil {
		t.Fatal(err)
	}
	want := []nest.JarRecord{{File: "META-INF/jars/lib-1.0.jar"}, {File: "META-INF/jars/util-2.3.jar"}}
	if len(doc.Jars) != len(want) || doc.Jars[0] != want[0] || doc.Jars[1] != want[1] {
		t.Errorf("jars = %v, want %v", doc.Jars, want)
	}
	if !strings.Contains(f.stdout.String(), "Nested into") {
		t.Errorf("stdout = %q", f.stdout)
	}
}

func TestNestCommand_DryRunWritesNothing(t *testing.T) {
	f := newCLIFixture(t)
	before := testutil.MustReadFile(t, f.target)

	if err := f.run("nest", "--dry-run"); err != nil {
		t.Fatalf("nest --dry-run error: %v", err)
	}

	if !bytes.Equal(before, testutil.MustReadFile(t, f.target)) {
		t.Error("dry run modified the target archive")
	}
	if _, err := os.Stat(filepath.Join(f.dir, "cache")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry run created the cache directory: %v", err)
	}
	out := f.stdout.String()
	for _, want := range []string{":lib:remapJar", "META-INF/jars/lib-1.0.jar", "META-INF/jars/util-2.3.jar"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestNestCommand_MissingArtifact(t *testing.T) {
	f := newCLIFixture(t)
	if err := os.Remove(filepath.Join(f.dir, "repo", "util-2.3.jar")); err != nil {
		t.Fatal(err)
	}
	before := testutil.MustReadFile(t, f.target)

	err := f.run("nest")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("nest error = %v, want ExitError code 1", err)
	}
	if !errors.Is(err, nest.ErrArtifactNotFound) {
		t.Errorf("error %v does not wrap ErrArtifactNotFound", err)
	}
	if !bytes.Equal(before, testutil.MustReadFile(t, f.target)) {
		t.Error("failed nest modified the target archive")
	}
	if !strings.Contains(f.stderr.String(), "jarnest tasks") {
		t.Errorf("stderr lacks suggestion:\n%s", f.stderr)
	}
}

func TestNestCommand_ExplicitTarget(t *testing.T) {
	f := newCLIFixture(t)
	other := filepath.Join(f.dir, "other.jar")
	testutil.MustWriteJar(t, other, testutil.JarEntry{Name: nest.DescriptorEntry, Data: `{"id":"other"}`})

	if err := f.run("nest", other); err != nil {
		t.Fatalf("nest error: %v", err)
	}
	if !contains(testutil.MustListJar(t, other), "META-INF/jars/util-2.3.jar") {
		t.Error("explicit target was not nested into")
	}
}

func TestNestCommand_BuildFileNotFound(t *testing.T) {
	f := newCLIFixture(t)

	err := f.run("nest", "--build", filepath.Join(f.dir, "absent.cue"))
	if err == nil {
		t.Fatal("nest expected error")
	}
	if !strings.Contains(f.stderr.String(), "No build file found") {
		t.Errorf("stderr lacks issue guidance:\n%s", f.stderr)
	}
}

func TestNestCommand_ConfigError(t *testing.T) {
	f := newCLIFixture(t)
	f.app.Config = staticConfig{err: errors.New("broken config")}

	err := f.run("nest")
	if err == nil || !strings.Contains(err.Error(), "broken config") {
		t.Fatalf("nest error = %v", err)
	}
}

func TestTasksCommand(t *testing.T) {
	f := newCLIFixture(t)

	if err := f.run("tasks"); err != nil {
		t.Fatalf("tasks error: %v", err)
	}
	if got := strings.TrimSpace(f.stdout.String()); got != ":lib:remapJar" {
		t.Errorf("tasks output = %q", got)
	}
}

func TestInspectCommand(t *testing.T) {
	f := newCLIFixture(t)
	if err := f.run("nest"); err != nil {
		t.Fatalf("nest error: %v", err)
	}
	f.stdout.Reset()

	if err := f.run("inspect", "--json", f.target); err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	var report archiveReport
	if err := json.Unmarshal(f.stdout.Bytes(), &report); err != nil {
		t.Fatalf("inspect --json output invalid: %v\n%s", err, f.stdout)
	}
	if len(report.Nested) != 2 || len(report.Records) != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.Descriptor == nil || report.Descriptor.ID != "mod" {
		t.Errorf("descriptor = %+v", report.Descriptor)
	}
}

func TestInspectArchive_StagedCopyIsGenerated(t *testing.T) {
	f := newCLIFixture(t)
	util := filepath.Join(f.dir, "repo", "util-2.3.jar")
	before := testutil.MustReadFile(t, util)

	if err := f.run("descriptor", "--stage", util, "org.other:util:2.3"); err != nil {
		t.Fatalf("descriptor --stage error: %v", err)
	}
	staged := strings.TrimSpace(f.stdout.String())
	if staged == util {
		t.Fatal("staged path equals the original")
	}
	if !bytes.Equal(before, testutil.MustReadFile(t, util)) {
		t.Error("original jar was modified")
	}

	report, err := inspectArchive(staged)
	if err != nil {
		t.Fatalf("inspectArchive() error: %v", err)
	}
	if report.Descriptor == nil || !report.Descriptor.Generated || report.Descriptor.ID != "org_other_util" {
		t.Errorf("descriptor = %+v", report.Descriptor)
	}
}

func TestInspectArchive_NoDescriptor(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plain.jar")
	testutil.MustWriteJar(t, path, testutil.JarEntry{Name: "a.class", Data: "a"})

	report, err := inspectArchive(path)
	if err != nil {
		t.Fatalf("inspectArchive() error: %v", err)
	}
	if report.Descriptor != nil || len(report.Nested) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestDescriptorCommand(t *testing.T) {
	f := newCLIFixture(t)

	if err := f.run("descriptor", "org.Other:Util:2.3"); err != nil {
		t.Fatalf("descriptor error: %v", err)
	}
	var got nest.SyntheticDescriptor
	if err := json.Unmarshal(f.stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid descriptor JSON: %v", err)
	}
	if got.ID != "org_other_util" || got.Name != "Util" || got.Version != "2.3" || got.SchemaVersion != 1 {
		t.Errorf("descriptor = %+v", got)
	}
}

func TestDescriptorCommand_InvalidCoordinate(t *testing.T) {
	f := newCLIFixture(t)

	if err := f.run("descriptor", "not-a-coordinate"); !errors.Is(err, nest.ErrInvalidCoordinate) {
		t.Errorf("descriptor error = %v, want ErrInvalidCoordinate", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	f := newCLIFixture(t)

	if err := f.run("config", "show", "--format", "json"); err != nil {
		t.Fatalf("config show error: %v", err)
	}
	var got config.Config
	if err := json.Unmarshal(f.stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Workers != config.DefaultWorkers {
		t.Errorf("workers = %d", got.Workers)
	}
}

func TestConfigPathCommand(t *testing.T) {
	f := newCLIFixture(t)

	if err := f.run("config", "path"); err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if got := strings.TrimSpace(f.stdout.String()); got != "(defaults)" {
		t.Errorf("stdout = %q, want (defaults)", got)
	}

	f.stdout.Reset()
	f.app.Config = staticConfig{cfg: config.DefaultConfig(), source: "/etc/jarnest/config.cue"}
	if err := f.run("config", "path"); err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if got := strings.TrimSpace(f.stdout.String()); got != "/etc/jarnest/config.cue" {
		t.Errorf("stdout = %q", got)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
