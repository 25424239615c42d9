// Package cmd provides the command-line interface for ListHarvest.
// It handles command parsing, configuration loading, and pipeline execution.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/masahif/listharvest/internal/config"
	"github.com/masahif/listharvest/internal/crawler"
	"github.com/masahif/listharvest/internal/extract"
	"github.com/masahif/listharvest/internal/logging"
	"github.com/masahif/listharvest/internal/output"
	"github.com/masahif/listharvest/internal/storage"
)

const defaultUserAgent = "ListHarvest/1.0"

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listharvest [seed-url]",
	Short: "Harvest structured fields from listing sites",
	Long: `ListHarvest crawls a listing site two levels deep and extracts fields.

From the seed page it follows index pages (search result pages), collects
the detail pages they link to, fetches a random sample of them one at a
time with a randomized delay, and writes one row per detail page.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runHarvest,
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the crawl and
// the rows collected so far are still written.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./listharvest.yml or $XDG_CONFIG_HOME/listharvest/listharvest.yml)")

	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Crawl shape
	rootCmd.Flags().StringSlice("index-include", []string{}, "Regex an index page URL must match (repeatable, all must match)")
	rootCmd.Flags().StringSlice("index-exclude", []string{}, "Regex that rejects an index page URL")
	rootCmd.Flags().StringSlice("leaf-include", []string{}, "Regex a leaf page URL must match (repeatable, all must match)")
	rootCmd.Flags().StringSlice("leaf-exclude", []string{}, "Regex that rejects a leaf page URL")
	rootCmd.Flags().StringArrayP("field", "f", []string{}, "Field as name=selector[@attr][|text|number|integer] (repeatable)")
	rootCmd.Flags().IntP("max-leaf-pages", "n", 10, "Maximum number of leaf pages to fetch")
	rootCmd.Flags().Bool("no-resolve", false, "Match patterns against raw href values instead of absolute URLs")

	// Politeness
	rootCmd.Flags().Duration("delay-min", 10*time.Second, "Minimum random delay before each leaf fetch")
	rootCmd.Flags().Duration("delay-max", 30*time.Second, "Maximum random delay before each leaf fetch")
	rootCmd.Flags().Duration("host-interval", 0, "Minimum interval between requests to one host (0=off)")
	rootCmd.Flags().DurationP("timeout", "t", 30*time.Second, "HTTP request timeout")
	rootCmd.Flags().StringP("user-agent", "u", defaultUserAgent, "HTTP User-Agent header")
	rootCmd.Flags().Bool("ignore-robots", false, "Ignore robots.txt rules")

	// Authentication
	rootCmd.Flags().String("auth-type", "", "Authentication type: 'basic', 'bearer', or 'api-key'")
	rootCmd.Flags().String("auth-username", "", "Username for basic authentication")
	rootCmd.Flags().String("auth-password", "", "Password for basic authentication")
	rootCmd.Flags().String("auth-token", "", "Bearer token for authorization header")
	rootCmd.Flags().String("auth-header", "", "API key header name (e.g., X-API-Key)")
	rootCmd.Flags().String("auth-value", "", "API key header value")
	rootCmd.Flags().StringSliceP("header", "H", []string{}, "Custom HTTP headers in 'Name: Value' format")

	// Output
	rootCmd.Flags().StringP("output", "o", "-", "Output file ('-' for stdout)")
	rootCmd.Flags().String("format", "csv", "Output format: csv, json or markdown (md)")
	rootCmd.Flags().String("missing", "NA", "Text for missing values in csv/markdown; should not occur in real data (empty makes missing and empty text identical)")
	rootCmd.Flags().StringP("database", "d", "", "SQLite database recording every run (empty=off)")

	// Logging
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-file", "", "Also write logs to this file, rotated")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"index_pattern.include", "index-include"},
		{"index_pattern.exclude", "index-exclude"},
		{"leaf_pattern.include", "leaf-include"},
		{"leaf_pattern.exclude", "leaf-exclude"},
		{"max_leaf_pages", "max-leaf-pages"},
		{"delay_min", "delay-min"},
		{"delay_max", "delay-max"},
		{"host_interval", "host-interval"},
		{"request_timeout", "timeout"},
		{"user_agent", "user-agent"},
		{"auth.type", "auth-type"},
		{"auth.basic.username", "auth-username"},
		{"auth.basic.password", "auth-password"},
		{"auth.bearer.token", "auth-token"},
		{"auth.apikey.header", "auth-header"},
		{"auth.apikey.value", "auth-value"},
		{"output", "output"},
		{"format", "format"},
		{"missing", "missing"},
		{"database_path", "database"},
		{"log.level", "log-level"},
		{"log.file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "listharvest"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("listharvest")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func generateUserAgent() string {
	if version != "" && version != "dev" {
		return fmt.Sprintf("ListHarvest/%s", version)
	}
	return "ListHarvest/dev"
}

// loadConfig merges defaults, config file, environment, flags and args
func loadConfig(cmd *cobra.Command, args []string) (*config.HarvestConfig, error) {
	cfg := config.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(args) > 0 {
		cfg.SeedURL = args[0]
	}

	flags := cmd.Flags()

	if fieldFlags, err := flags.GetStringArray("field"); err == nil && len(fieldFlags) > 0 {
		fields := make([]config.FieldConfig, 0, len(fieldFlags))
		for _, f := range fieldFlags {
			fc, err := config.ParseFieldFlag(f)
			if err != nil {
				return nil, err
			}
			fields = append(fields, fc)
		}
		cfg.Fields = fields
	}

	if headerFlags, err := flags.GetStringSlice("header"); err == nil && len(headerFlags) > 0 {
		headers, err := config.ParseHeaders(headerFlags)
		if err != nil {
			return nil, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	cfg.LoadHeadersFromEnv()

	if ignore, _ := flags.GetBool("ignore-robots"); ignore {
		cfg.RespectRobots = false
	}
	if noResolve, _ := flags.GetBool("no-resolve"); noResolve {
		cfg.ResolveLinks = false
	}

	if !flags.Changed("user-agent") && cfg.UserAgent == defaultUserAgent {
		cfg.UserAgent = generateUserAgent()
	}

	return cfg, nil
}

func showCurrentConfig(w io.Writer, cfg *config.HarvestConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration validation failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Displaying configuration anyway...\n\n")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Fprintf(w, "# Current ListHarvest Configuration\n")
	fmt.Fprintf(w, "# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# Configuration file search paths: ./listharvest.yml, %s\n", filepath.Join(xdg.ConfigHome, "listharvest", "listharvest.yml"))
	fmt.Fprintf(w, "# Environment variables prefix: LH_\n\n")

	fmt.Fprint(w, string(yamlData))

	fmt.Fprintf(w, "\n# Configuration source priority:\n")
	fmt.Fprintf(w, "# 1. Command-line arguments (highest priority)\n")
	fmt.Fprintf(w, "# 2. Environment variables (LH_ prefix)\n")
	fmt.Fprintf(w, "# 3. Configuration file (listharvest.yml)\n")
	fmt.Fprintf(w, "# 4. Default values (lowest priority)\n")

	return nil
}

func runHarvest(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	if showConfig {
		return showCurrentConfig(cmd.OutOrStdout(), cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCloser, err := logging.SetDefault(logging.Config{
		Level:      logging.ParseLevel(cfg.Log.Level),
		FilePath:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Console:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	if cfg.MissingMarker == "" && cfg.OutputFormat != "json" {
		slog.Warn("Empty missing marker: missing values and empty text print the same", "format", cfg.OutputFormat)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return harvest(ctx, cfg, cmd.OutOrStdout())
}

// harvest builds the pipeline from cfg, runs it and writes the table.
// A cancelled crawl still writes the rows collected before cancellation.
func harvest(ctx context.Context, cfg *config.HarvestConfig, stdout io.Writer) error {
	spec, err := buildSpec(cfg.Fields)
	if err != nil {
		return err
	}

	indexPattern, err := crawler.CompilePattern(cfg.IndexPattern.Include, cfg.IndexPattern.Exclude)
	if err != nil {
		return fmt.Errorf("index pattern: %w", err)
	}
	leafPattern, err := crawler.CompilePattern(cfg.LeafPattern.Include, cfg.LeafPattern.Exclude)
	if err != nil {
		return fmt.Errorf("leaf pattern: %w", err)
	}

	delay, err := crawler.NewRandomDelay(cfg.DelayMin, cfg.DelayMax, nil)
	if err != nil {
		return err
	}

	fetcher := initializeFetcher(cfg)
	defer fetcher.Close()

	opts := crawler.Options{
		SeedURL:      cfg.SeedURL,
		IndexPattern: indexPattern,
		LeafPattern:  leafPattern,
		Fields:       spec,
		MaxLeafPages: cfg.MaxLeafPages,
		Delay:        delay,
		ResolveLinks: cfg.ResolveLinks,
	}

	var (
		store *storage.SQLiteStorage
		runID int64
	)
	if cfg.DatabasePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		store, err = storage.NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer func() { _ = store.Close() }()

		runID, err = store.StartRun(cfg.SeedURL, spec.Names())
		if err != nil {
			return err
		}
		opts.Observer = store.Observer(runID)
	}

	pipeline, err := crawler.NewPipeline(fetcher, opts)
	if err != nil {
		return err
	}

	slog.Info("Starting harvest",
		"seed", cfg.SeedURL,
		"max_leaf_pages", cfg.MaxLeafPages,
		"delay_min", cfg.DelayMin,
		"delay_max", cfg.DelayMax,
		"respect_robots", cfg.RespectRobots,
		"auth", authSummary(cfg))

	table, runErr := pipeline.Run(ctx)

	if store != nil {
		if err := store.FinishRun(runID, pipeline.Stats(), runErr); err != nil {
			slog.Error("Failed to finish run", "run_id", runID, "error", err)
		}
		if err := store.SetMeta("last_run_id", strconv.FormatInt(runID, 10)); err != nil {
			slog.Error("Failed to update meta", "error", err)
		}
	}

	if table == nil {
		return runErr
	}

	if err := writeTable(cfg, table, stdout); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func buildSpec(fields []config.FieldConfig) (*extract.Spec, error) {
	specFields := make([]extract.Field, 0, len(fields))
	for _, f := range fields {
		specFields = append(specFields, extract.Field{
			Name:     f.Name,
			Selector: f.Selector,
			Attr:     f.Attr,
			Coerce:   extract.Coercion(f.Coerce),
		})
	}
	spec, err := extract.Compile(specFields)
	if err != nil {
		return nil, fmt.Errorf("invalid fields: %w", err)
	}
	return spec, nil
}

// initializeFetcher wires the HTTP client, auth, headers, host limiter and robots gate
func initializeFetcher(cfg *config.HarvestConfig) *crawler.HTTPFetcher {
	client := crawler.NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout)

	if cfg.Auth != nil {
		switch cfg.Auth.Type {
		case "basic":
			if username, password := cfg.GetBasicAuthCredentials(); username != "" {
				client.SetBasicAuth(username, password)
			}
		case "bearer":
			if token := cfg.GetBearerToken(); token != "" {
				client.SetBearerAuth(token)
			}
		case "api-key":
			if header, value := cfg.GetAPIKeyCredentials(); header != "" && value != "" {
				client.SetAPIKeyAuth(header, value)
			}
		}
	}
	if len(cfg.Headers) > 0 {
		client.SetCustomHeaders(cfg.Headers)
	}

	var robots *crawler.RobotsGate
	if cfg.RespectRobots {
		robots = crawler.NewRobotsGate(client, cfg.UserAgent)
	}

	return crawler.NewHTTPFetcher(client, crawler.NewHostLimiter(cfg.HostInterval), robots)
}

func authSummary(cfg *config.HarvestConfig) string {
	if cfg.Auth == nil || cfg.Auth.Type == "" {
		return "none"
	}
	return cfg.Auth.Type
}

func writeTable(cfg *config.HarvestConfig, table *extract.Table, stdout io.Writer) error {
	dest := stdout
	if cfg.OutputPath != "" && cfg.OutputPath != "-" {
		if dir := filepath.Dir(cfg.OutputPath); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		dest = f
	}

	w, err := output.NewWriter(cfg.OutputFormat, dest, cfg.MissingMarker)
	if err != nil {
		return err
	}
	if err := w.Write(table); err != nil {
		return err
	}

	slog.Info("Table written", "rows", table.Len(), "format", cfg.OutputFormat, "output", cfg.OutputPath)
	return nil
}
