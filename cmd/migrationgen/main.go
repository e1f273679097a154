package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/tordrt/migrationgen"
	"github.com/tordrt/migrationgen/internal/config"
	"github.com/tordrt/migrationgen/internal/logging"
)

var (
	configPath       string
	dbURL            string
	mysqlURL         string
	sqlitePath       string
	outputFile       string
	outputDir        string
	tables           string
	ignoreTables     string
	schemaName       string
	databaseName     string
	format           string
	ignoreIndexNames bool
	concurrency      int
	logLevel         string
	logFormat        string
	showProgress     bool
)

var rootCmd = &cobra.Command{
	Use:   "migrationgen",
	Short: "Generate Laravel migrations from an existing database",
	Long: `migrationgen reads the tables, columns and indexes of a PostgreSQL, MySQL, SQLite or SQL Server database
and writes Laravel schema builder migrations that recreate them.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	registerFlags(rootCmd)
}

func registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "Database URL (postgres://, mysql://, sqlite:// or sqlserver://)")
	cmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory, one migration file per table")
	cmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	cmd.Flags().StringVarP(&ignoreTables, "ignore", "i", "", "Tables to skip (comma-separated, default: migrations)")
	cmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL, dbo for SQL Server)")
	cmd.Flags().StringVar(&databaseName, "database", "", "Database name passed to the enum catalog (ignored for PostgreSQL, which uses --schema)")
	cmd.Flags().StringVarP(&format, "format", "f", "php", "Output format: php, text or markdown")
	cmd.Flags().BoolVar(&ignoreIndexNames, "ignore-index-names", false, "Omit index names and use Laravel's defaults")
	cmd.Flags().IntVar(&concurrency, "concurrency", config.Default().Generation.Concurrency, "Number of tables generated in parallel")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress spinner on stderr")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if cfg.Database.URL == "" {
		return fmt.Errorf("one of --db-url, --mysql-url, or --sqlite must be specified")
	}

	opts := &migrationgen.Options{
		Tables:           cfg.Generation.Tables,
		ExcludeTables:    cfg.Generation.Ignore,
		SchemaName:       cfg.Database.Schema,
		Database:         cfg.Database.Name,
		IgnoreIndexNames: cfg.Generation.IgnoreIndexNames,
		Concurrency:      cfg.Generation.Concurrency,
		Logger:           logger,
	}

	if showProgress {
		s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " reading tables"
		s.Start()
		defer s.Stop()

		opts.Progress = func(done, total int, table string) {
			s.Lock()
			s.Suffix = fmt.Sprintf(" %d/%d %s", done, total, table)
			s.Unlock()
		}
	}

	migrations, err := migrationgen.GenerateSchema(ctx, cfg.Database.URL, opts)
	if err != nil {
		return fmt.Errorf("failed to generate migrations: %w", err)
	}

	outOpts := &migrationgen.OutputOptions{
		Writer:    os.Stdout,
		OutputDir: cfg.Output.Dir,
		Format:    cfg.Output.Format,
	}

	if cfg.Output.File != "" {
		f, err := os.Create(cfg.Output.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Warn("failed to close output file", slog.Any("error", err))
			}
		}()
		outOpts.Writer = f
	}

	if err := migrationgen.WriteMigrations(migrations, outOpts); err != nil {
		return fmt.Errorf("failed to write migrations: %w", err)
	}

	return nil
}

// applyFlags copies every flag set on the command line over cfg
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	url, err := resolveURL(dbURL, mysqlURL, sqlitePath)
	if err != nil {
		return err
	}
	if url != "" {
		cfg.Database.URL = url
	}

	if flags.Changed("schema") {
		cfg.Database.Schema = schemaName
	}
	if flags.Changed("database") {
		cfg.Database.Name = databaseName
	}
	if flags.Changed("tables") {
		cfg.Generation.Tables = parseTableList(tables)
	}
	if flags.Changed("ignore") {
		cfg.Generation.Ignore = parseTableList(ignoreTables)
	}
	if flags.Changed("ignore-index-names") {
		cfg.Generation.IgnoreIndexNames = ignoreIndexNames
	}
	if flags.Changed("concurrency") {
		cfg.Generation.Concurrency = concurrency
	}
	if flags.Changed("output") {
		cfg.Output.File = outputFile
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("format") {
		cfg.Output.Format = format
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}

	return nil
}

// resolveURL turns the database flags into a single database URL. It
// returns an empty string when none of them is set.
func resolveURL(dbURL, mysqlURL, sqlitePath string) (string, error) {
	var urls []string
	if dbURL != "" {
		urls = append(urls, dbURL)
	}
	if mysqlURL != "" {
		urls = append(urls, "mysql://"+strings.TrimPrefix(mysqlURL, "mysql://"))
	}
	if sqlitePath != "" {
		urls = append(urls, "sqlite://"+strings.TrimPrefix(sqlitePath, "sqlite://"))
	}

	switch len(urls) {
	case 0:
		return "", nil
	case 1:
		return urls[0], nil
	default:
		return "", fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}
}

// parseTableList splits a comma-separated flag value, dropping blanks
func parseTableList(s string) []string {
	var list []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			list = append(list, t)
		}
	}
	return list
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
