package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/config"
	"github.com/matsen/pubdb/internal/importer"
	"github.com/matsen/pubdb/internal/pdf"
)

var importShowFailures bool

func init() {
	importCmd.Flags().BoolVar(&importShowFailures, "show-failures", false, "Include every failed entry in the output")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import publications from a BibTeX file",
	Long: `Import every entry of a BibTeX file ("-" reads stdin).

Entries whose title is already stored are skipped. Entries that fail are
rolled back and logged; the rest of the file is still imported. When
failure_log is enabled, failed entries are also appended to
.pubdb/failures.jsonl. When pdf_root is set, missing DOIs are read from
the entries' PDFs.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	r := openRepo()
	defer r.Close()

	opts := importer.Options{Logger: r.log}
	if r.cfg.FailureLog {
		opts.FailureLog = config.FailurePath(r.root)
	}
	if r.cfg.PDFRoot != "" {
		opts.DOIs = pdf.NewBackfiller(r.cfg.PDFRoot)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := importer.New(r.db, opts).Run(ctx, text)
	if report == nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}

	resp := ImportResponse{
		Imported:   len(report.IDs),
		IDs:        report.IDs,
		Duplicates: report.Count(importer.OutcomeDuplicate),
		Ignored:    report.Count(importer.OutcomeIgnored),
		Failed:     report.Count(importer.OutcomeFailed),
	}
	if importShowFailures {
		for _, f := range report.Failures() {
			resp.Failures = append(resp.Failures, FailureResult{
				Index: f.Index,
				Stage: string(f.Stage),
				Type:  f.Type,
				Error: f.Err.Error(),
			})
		}
	}

	if humanOutput {
		fmt.Printf("Imported %d publications (%d duplicates, %d ignored, %d failed)\n",
			resp.Imported, resp.Duplicates, resp.Ignored, resp.Failed)
		for _, f := range resp.Failures {
			fmt.Printf("  entry %d [%s] %s\n", f.Index, f.Stage, truncateString(f.Error, ImportErrorMaxLen))
		}
	} else {
		outputJSON(resp)
	}

	if err != nil {
		// Cancelled: what was committed has been reported above.
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	return nil
}

// readInput reads a file, or stdin for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
