package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  pubdb config                          # Show all config
  pubdb config pdf-root                 # Get specific value
  pubdb config pdf-root /path/to/pdfs   # Set value
  pubdb config failure-log true         # Journal failed import entries

Keys:
  pdf-root     Folder that relative pdf paths resolve against (enables DOI back-fill)
  failure-log  Append failed import entries to .pubdb/failures.jsonl (true, false)
  log-mode     Log output: dev, prod or quiet (PUBDB_LOG_MODE overrides)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := findRepoRoot()

	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("pdf-root:    %s\n", cfg.PDFRoot)
			fmt.Printf("failure-log: %t\n", cfg.FailureLog)
			fmt.Printf("log-mode:    %s\n", cfg.LogMode)
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		var value string
		switch key {
		case "pdf_root":
			value = cfg.PDFRoot
		case "failure_log":
			value = strconv.FormatBool(cfg.FailureLog)
		case "log_mode":
			value = cfg.LogMode
		default:
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if key == "pdf_root" {
		value = config.ExpandPath(value)
	}
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", args[0], value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}
	return nil
}

// normalizeKey converts key formats (pdf-root, PDF_ROOT) to the JSON key.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "-", "_")
}
