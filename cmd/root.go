package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/evencheck/internal/config"
	"github.com/zjrosen/evencheck/internal/log"
	"github.com/zjrosen/evencheck/internal/paths"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	cfgFile    string
	configPath string
	debug      bool
	v          *viper.Viper
	cfg        config.Config
	logCleanup func()
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "evencheck",
		Short: "Attendance ledger and registry",
		Long: `evencheck records daily attendance and keeps a registry of known individuals.

Each individual can be marked present at most once per day. Data lives in a
ledger CSV and a registry JSON file, or in a SQLite database with
backend: sqlite.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logCleanup != nil {
				a.logCleanup()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: .evencheck/config.yaml or ~/.config/evencheck/config.yaml)")
	pf.String("data-dir", "", "directory holding the ledger and registry")
	pf.StringP("output", "o", "", "output format: table or json")
	pf.BoolVar(&a.debug, "debug", false, "write a debug log (also EVENCHECK_DEBUG)")

	_ = a.v.BindPFlag("data_dir", pf.Lookup("data-dir"))
	_ = a.v.BindPFlag("output", pf.Lookup("output"))

	root.AddCommand(
		newMarkCmd(a),
		newStudentAddCmd(a),
		newStudentRemoveCmd(a),
		newStudentListCmd(a),
		newStudentShowCmd(a),
		newRecordsTodayCmd(a),
		newRecordsForCmd(a),
		newRecordsRangeCmd(a),
		newReportStatsCmd(a),
		newExportRecordsCmd(a),
		newExportStudentsCmd(a),
		newClearTodayCmd(a),
		newClearDateCmd(a),
		newClearAllCmd(a),
		newImportCmd(a),
		newWatchCmd(a),
		newConfigInitCmd(a),
		newConfigSetCmd(a),
	)
	return root
}

// init loads .env and the config file, then starts logging.
func (a *app) init(cmd *cobra.Command) error {
	_ = godotenv.Load() // .env is optional

	// config:init writes the file itself and reports whether it existed.
	if err := a.loadConfig(cmd.Name() != configInitName); err != nil {
		return err
	}
	a.cfg.DataDir = paths.ResolveDataDir(a.cfg.DataDir)
	if a.cfg.Tracing.FilePath == "" {
		a.cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", a.configPath, err)
	}
	return a.initLogging()
}

// loadConfig resolves the config path and reads it over the defaults. A
// missing file is written from the default template when writeDefault is set.
func (a *app) loadConfig(writeDefault bool) error {
	defaults := config.Defaults()
	v := a.v
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("ledger_file", defaults.LedgerFile)
	v.SetDefault("registry_file", defaults.RegistryFile)
	v.SetDefault("sqlite_file", defaults.SQLiteFile)
	v.SetDefault("default_category", defaults.DefaultCategory)
	v.SetDefault("default_method", defaults.DefaultMethod)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("flags", defaults.Flags)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.metrics_interval", defaults.Watch.MetricsInterval)
	v.SetDefault("watch.compact_cron", defaults.Watch.CompactCron)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix("EVENCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config lookup order:
	// 1. --config
	// 2. .evencheck/config.yaml (current directory)
	// 3. ~/.config/evencheck/config.yaml (user config)
	// A default file is written at the first candidate when none exists.
	a.configPath = a.cfgFile
	if a.configPath == "" {
		candidates := paths.ConfigCandidates()
		a.configPath = candidates[0]
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				a.configPath = c
				break
			}
		}
	}
	_, statErr := os.Stat(a.configPath)
	missing := errors.Is(statErr, os.ErrNotExist)
	if missing && writeDefault {
		// Continue with defaults when the file cannot be written
		missing = config.WriteDefaultConfig(a.configPath) != nil
	}

	if !missing {
		v.SetConfigFile(a.configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", a.configPath, err)
		}
	}
	if err := v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

func (a *app) initLogging() error {
	if !a.debug && os.Getenv("EVENCHECK_DEBUG") == "" {
		return nil
	}
	logPath := a.cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(a.cfg.Log.Level))
	a.logCleanup = cleanup
	log.Info(log.CatConfig, "evencheck starting", "version", version, "config", a.configPath, "data_dir", a.cfg.DataDir)
	return nil
}

// Execute runs the root command and prints a one-line error on failure.
func Execute() error {
	return execute(context.Background(), newRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stdout, stderr io.Writer) error {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		log.ErrorErr(log.CatCLI, "Command failed", err)
		_, _ = fmt.Fprintln(stderr, "Error: "+userMessage(err))
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
