package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PinjariAbdul/smart-task-analyser/internal/analysis"
	"github.com/PinjariAbdul/smart-task-analyser/internal/config"
	"github.com/PinjariAbdul/smart-task-analyser/internal/telemetry"
	"github.com/PinjariAbdul/smart-task-analyser/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "taskanalyser",
	Short: "Dependency-aware task prioritization",
	Long: `taskanalyser scores and ranks a batch of tasks by urgency, importance,
effort and how much other work each task unblocks. Batches are JSON, YAML
or TOML files; the same engine is served over HTTP by "taskanalyser serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.New(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .taskanalyser.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".taskanalyser")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TASKANALYSER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// env is the wiring shared by every command.
type env struct {
	cfg    config.Config
	log    logr.Logger
	events *telemetry.Emitter
	svc    *analysis.Service
	fs     afero.Fs
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newEnvFrom(cfg, afero.NewOsFs(), newLogger(cfg.Verbose))
}

func newEnvFrom(cfg config.Config, fs afero.Fs, logger logr.Logger) (*env, error) {
	opts, err := cfg.AnalysisOptions()
	if err != nil {
		return nil, err
	}

	var events *telemetry.Emitter
	if cfg.Telemetry.Path != "" {
		events, err = telemetry.NewEmitter(cfg.Telemetry.Path)
		if err != nil {
			return nil, err
		}
	}

	return &env{
		cfg:    cfg,
		log:    logger,
		events: events,
		svc: analysis.New(opts,
			analysis.WithLogger(logger.WithName("analysis")),
			analysis.WithTelemetry(events)),
		fs: fs,
	}, nil
}

func (e *env) Close() error {
	return e.events.Close()
}

// newLogger logs to stderr; verbose enables V(1) detail.
func newLogger(verbose bool) logr.Logger {
	if verbose {
		stdr.SetVerbosity(1)
	}
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}
