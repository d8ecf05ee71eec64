// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	ArtifactNotFoundId
	InvalidArtifactId
	StagingFailedId
	ArchiveRewriteFailedId
	DescriptorParseFailedId
	BuildFileNotFoundId
	BuildFileParseErrorId
	ConfigLoadFailedId
	ProjectIncludeCycleId
	UnknownProjectId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation pages for this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

A file passed on the command line does not exist.

## Things you can try:
- Check the path for typos
- Use an absolute path when running from another directory`,
	}

	artifactNotFoundIssue = &Issue{
		id: ArtifactNotFoundId,
		mdMsg: `
# Nested artifact not found!

One of the jars selected for nesting does not exist on disk. Nothing was
written to the target archive.

## Common causes:
- The sibling project's ` + "`remapJar`" + ` task has not run yet
- The archive path in the build file points at a stale output directory
- A resolved module lists an artifact that was deleted from the cache

## Things you can try:
- List the tasks that must run before nesting:
~~~
$ jarnest tasks --plan
~~~

- Run those tasks, then nest again:
~~~
$ jarnest nest
~~~`,
	}

	invalidArtifactIssue = &Issue{
		id: InvalidArtifactId,
		mdMsg: `
# Invalid nested artifact!

Only ` + "`.jar`" + ` files can be nested. A selected artifact is a directory or
has a different extension. Nothing was written to the target archive.

## Things you can try:
- Point the task's ` + "`archive`" + ` at the jar it produces, not its output directory
- Remove non-jar artifacts from the ` + "`resolved`" + ` modules in your build file`,
	}

	stagingFailedIssue = &Issue{
		id: StagingFailedId,
		mdMsg: `
# Failed to stage a dependency!

A dependency without a ` + "`fabric.mod.json`" + ` is copied into the staging directory
before a descriptor is generated. That copy failed.

## Things you can try:
- Check free disk space and permissions on the cache directory
- Point the cache somewhere writable:
~~~
$ JARNEST_CACHE_DIR=/tmp/jarnest jarnest nest
~~~`,
	}

	archiveRewriteFailedIssue = &Issue{
		id: ArchiveRewriteFailedId,
		mdMsg: `
# Failed to rewrite the target archive!

The integrity of the target archive is not guaranteed after this failure.

## Things you can try:
- Run a clean rebuild to regenerate the target archive
- Check that no other process holds the archive open
- Run with verbose mode for the full error chain:
~~~
$ jarnest --verbose nest
~~~`,
	}

	descriptorParseFailedIssue = &Issue{
		id: DescriptorParseFailedId,
		mdMsg: `
# Failed to parse fabric.mod.json!

The target archive's descriptor must be a JSON object. When it has a ` + "`jars`" + `
field, that field must be an array of ` + "`{\"file\": ...}`" + ` records.

## Things you can try:
- Inspect the descriptor:
~~~
$ jarnest inspect build/libs/mod.jar
~~~

- Fix the source ` + "`fabric.mod.json`" + ` and rebuild the archive`,
	}

	buildFileNotFoundIssue = &Issue{
		id: BuildFileNotFoundId,
		mdMsg: `
# No build file found!

jarnest reads the project layout from ` + "`nestbuild.cue`" + ` in the current directory
unless ` + "`--build`" + ` names another file.

## Example build file:
~~~cue
target: ":mod"

projects: {
  ":mod": {
    dir: "."
    group: "com.example"
    name: "mod"
    version: "1.0.0"
    tasks: [{name: "remapJar", kind: "remap_jar", archive: "build/libs/mod-1.0.0.jar"}]
    include: declared: [{project: ":lib"}]
  }
  ":lib": {
    dir: "lib"
    group: "com.example"
    name: "lib"
    version: "1.0.0"
    tasks: [{name: "remapJar", kind: "remap_jar", archive: "build/libs/lib-1.0.0.jar"}]
  }
}
~~~`,
	}

	buildFileParseErrorIssue = &Issue{
		id: BuildFileParseErrorId,
		mdMsg: `
# Failed to parse the build file!

Your build file contains syntax errors or does not match the build schema.

## Common issues:
- Project paths must start with ` + "`:`" + `
- Task kinds are ` + "`remap_jar`" + `, ` + "`archive`" + ` or ` + "`other`" + `
- A declared include names either ` + "`project`" + ` or ` + "`module`" + `, never both

## Things you can try:
- Check the error message above for the specific line/column
- Validate the file with the cue command-line tool`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the jarnest configuration file.

## Configuration file locations:
- Linux: ~/.config/jarnest/config.cue
- macOS: ~/Library/Application Support/jarnest/config.cue
- Windows: %APPDATA%\jarnest\config.cue

## Things you can try:
- Print the effective configuration:
~~~
$ jarnest config show
~~~

- Remove the config file to use defaults

## Example configuration:
~~~cue
workers: 4
build_file: "nestbuild.cue"

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	projectIncludeCycleIssue = &Issue{
		id: ProjectIncludeCycleId,
		mdMsg: `
# Project include cycle detected!

Projects include each other, so no remap order exists.

## Example of a cycle:
~~~cue
projects: {
  ":a": include: declared: [{project: ":b"}]
  ":b": include: declared: [{project: ":a"}]  // Cycle: :a -> :b -> :a
}
~~~

## Things you can try:
- Review the declared includes in your build file
- Move shared code into a third project both can include`,
	}

	unknownProjectIssue = &Issue{
		id: UnknownProjectId,
		mdMsg: `
# Unknown project!

The build file refers to a project path that is not defined under ` + "`projects`" + `.

## Things you can try:
- Check the ` + "`target`" + ` field and every declared ` + "`project`" + ` include for typos
- Project paths are written with a leading colon, e.g. ` + "`:lib`",
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Things you can try:
- Check permissions on the target archive and its directory
- Check permissions on the cache directory used for staging`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():          fileNotFoundIssue,
		artifactNotFoundIssue.Id():      artifactNotFoundIssue,
		invalidArtifactIssue.Id():       invalidArtifactIssue,
		stagingFailedIssue.Id():         stagingFailedIssue,
		archiveRewriteFailedIssue.Id():  archiveRewriteFailedIssue,
		descriptorParseFailedIssue.Id(): descriptorParseFailedIssue,
		buildFileNotFoundIssue.Id():     buildFileNotFoundIssue,
		buildFileParseErrorIssue.Id():   buildFileParseErrorIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		projectIncludeCycleIssue.Id():   projectIncludeCycleIssue,
		unknownProjectIssue.Id():        unknownProjectIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

// Values returns every registered issue ordered by Id.
func Values() []*Issue {
	values := slices.Collect(maps.Values(issues))
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
