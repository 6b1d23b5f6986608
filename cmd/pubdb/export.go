package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/clipboard"
	"github.com/matsen/pubdb/internal/config"
	"github.com/matsen/pubdb/internal/export"
	"github.com/matsen/pubdb/internal/storage"
)

var (
	exportFormat string
	exportAll    bool
	exportAppend string
	exportCopy   bool
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: bibtex, html or wos (default from global config, else bibtex)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every publication")
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append BibTeX entries missing from this .bib file instead of printing")
	exportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy the output to the clipboard instead of printing")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Export publications as BibTeX, HTML or WoS",
	Long: `Export publications by id, or every publication with --all.

Output is plain text in the chosen format, not JSON. With --append, BibTeX
entries are appended to a .bib file, skipping those whose DOI or citation
key it already holds. With --copy, the output goes to the clipboard.`,
	RunE: runExport,
}

// AppendResponse is the response for export --append.
type AppendResponse struct {
	Path     string `json:"path"`
	Appended int    `json:"appended"`
	Skipped  int    `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportAll == (len(args) > 0) {
		exitWithError(ExitError, "give either publication ids or --all")
	}

	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if exportCopy && !clipboard.IsAvailable() {
		exitWithError(ExitError, "%v", clipboard.ErrClipboardUnavailable)
	}

	r := openRepo()
	defer r.Close()

	format, err := export.ParseFormat(config.ResolveFormat(exportFormat, r.global))
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	if exportAppend != "" && format != export.FormatBibTeX {
		r.Close()
		exitWithError(ExitError, "--append only writes bibtex")
	}

	x := export.NewExporter(r.db)
	var entries []export.Entry
	if exportAll {
		entries, err = x.LoadAll()
		if err != nil {
			r.Close()
			exitWithError(ExitError, "%v", err)
		}
	} else {
		for _, id := range ids {
			e, err := x.Load(id)
			if err != nil {
				r.Close()
				if errors.Is(err, storage.ErrNotFound) {
					exitWithError(ExitDataError, "publication not found: %d", id)
				}
				exitWithError(ExitError, "%v", err)
			}
			entries = append(entries, e)
		}
	}

	if exportAppend != "" {
		path := config.ExpandPath(exportAppend)
		n, err := export.AppendNew(path, entries)
		if err != nil {
			r.Close()
			exitWithError(ExitError, "appending to %s: %v", path, err)
		}
		resp := AppendResponse{Path: path, Appended: n, Skipped: len(entries) - n}
		if humanOutput {
			fmt.Printf("Appended %d entries to %s (%d already present)\n", resp.Appended, resp.Path, resp.Skipped)
		} else {
			outputJSON(resp)
		}
		return nil
	}

	var out string
	if len(entries) == 1 {
		out = export.Render(entries[0], format)
	} else {
		out = export.RenderList(entries, format)
	}

	if exportCopy {
		if err := clipboard.Copy(out); err != nil {
			r.Close()
			exitWithError(ExitError, "copying to clipboard: %v", err)
		}
		if humanOutput {
			fmt.Printf("Copied %d entries to clipboard\n", len(entries))
		} else {
			outputJSON(StatusResponse{Status: "copied"})
		}
		return nil
	}

	fmt.Print(out)
	return nil
}

// parseIDs parses publication ids given on the command line.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid publication id: %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
