// Package main provides the pubdb CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/config"
	"github.com/matsen/pubdb/internal/logger"
	"github.com/matsen/pubdb/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubdb",
	Short: "BibTeX publication database",
	Long: `pubdb imports BibTeX into a SQLite publication database and exports it
back as BibTeX or HTML.

Authors are deduplicated across imports and journals are shared between
articles. All commands output JSON by default; use --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getRepoRoot returns the directory commands start from: PUBDB_ROOT when
// set, otherwise the current directory.
func getRepoRoot() (string, int) {
	if root := os.Getenv(config.RootEnv); root != "" {
		return config.ExpandPath(root), 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}

	global, err := config.LoadGlobalConfig()
	if err == nil && global.DefaultRoot != "" && !hasRepository(cwd) {
		return global.DefaultRoot, 0
	}
	return cwd, 0
}

func hasRepository(start string) bool {
	_, err := config.FindRepository(start)
	return err == nil
}

// repo is an opened repository.
type repo struct {
	root   string
	cfg    *config.Config
	global *config.GlobalConfig
	db     *storage.DB
	log    *logger.Logger
}

// openRepo finds the repository, loads its config, opens the database and
// builds the logger. Failures exit the process.
func openRepo() *repo {
	root := findRepoRoot()

	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	log, err := logger.New(config.ResolveLogMode(cfg, global))
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	return &repo{root: root, cfg: cfg, global: global, db: db, log: log}
}

// Close releases the database and flushes the logger.
func (r *repo) Close() {
	r.db.Close()
	r.log.Sync()
}
