// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/pkg/jarfile"
	"github.com/jarnest/jarnest/pkg/nest"
)

type (
	// archiveReport is what inspect prints for one archive.
	archiveReport struct {
		Archive    string           `json:"archive"`
		Descriptor *descriptorInfo  `json:"descriptor,omitempty"`
		Nested     []string         `json:"nested"`
		Records    []nest.JarRecord `json:"records"`
	}

	descriptorInfo struct {
		ID        string `json:"id,omitempty"`
		Version   string `json:"version,omitempty"`
		Generated bool   `json:"generated,omitempty"`
	}
)

func newInspectCommand(app *App) *cobra.Command {
	var asJSON bool

	inspectCmd := &cobra.Command{
		Use:   "inspect <archive.jar>",
		Short: "Show the nested jars and descriptor records of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := inspectArchive(args[0])
			if err != nil {
				return app.fail(cmd, "inspect archive", args[0], issue.FileNotFoundId, err)
			}
			if asJSON {
				enc := json.NewEncoder(app.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(app.stdout, report)
			return nil
		},
	}

	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return inspectCmd
}

func inspectArchive(path string) (*archiveReport, error) {
	entries, err := jarfile.List(path)
	if err != nil {
		return nil, err
	}

	report := &archiveReport{Archive: path, Nested: []string{}, Records: []nest.JarRecord{}}
	for _, e := range entries {
		if strings.HasPrefix(e.Name, nest.JarsPrefix) && strings.HasSuffix(e.Name, jarfile.Extension) {
			report.Nested = append(report.Nested, e.Name)
		}
	}

	data, err := jarfile.ReadEntry(path, nest.DescriptorEntry)
	if errors.Is(err, jarfile.ErrEntryNotFound) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	doc, err := nest.ParseDocument(data)
	if err != nil {
		return nil, &nest.DescriptorParseError{Archive: path, Entry: nest.DescriptorEntry, Cause: err}
	}
	records, err := doc.Jars()
	if err != nil {
		return nil, &nest.DescriptorParseError{Archive: path, Entry: nest.DescriptorEntry, Cause: err}
	}
	report.Records = append(report.Records, records...)
	report.Descriptor = describe(doc)
	return report, nil
}

// describe extracts the identity fields of doc. Fields of unexpected type are left empty.
func describe(doc *nest.Document) *descriptorInfo {
	info := &descriptorInfo{}
	if raw, ok := doc.Raw("id"); ok {
		_ = json.Unmarshal(raw, &info.ID)
	}
	if raw, ok := doc.Raw("version"); ok {
		_ = json.Unmarshal(raw, &info.Version)
	}
	if raw, ok := doc.Raw("custom"); ok {
		var custom map[string]json.RawMessage
		if json.Unmarshal(raw, &custom) == nil {
			_ = json.Unmarshal(custom[nest.GeneratedKey], &info.Generated)
		}
	}
	return info
}

func printReport(w io.Writer, report *archiveReport) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Archive:"), report.Archive)

	if report.Descriptor == nil {
		fmt.Fprintf(w, "%s (none)\n", SubtitleStyle.Render(nest.DescriptorEntry+":"))
	} else {
		d := report.Descriptor
		fmt.Fprintf(w, "%s id=%s version=%s", SubtitleStyle.Render(nest.DescriptorEntry+":"), d.ID, d.Version)
		if d.Generated {
			fmt.Fprint(w, " (generated)")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s %d\n", SubtitleStyle.Render("Nested entries:"), len(report.Nested))
	for _, name := range report.Nested {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(name))
	}

	fmt.Fprintf(w, "%s %d\n", SubtitleStyle.Render("Jar records:"), len(report.Records))
	for _, r := range report.Records {
		fmt.Fprintf(w, "  %s\n", r.File)
	}
}
