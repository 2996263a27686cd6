package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/PinjariAbdul/smart-task-analyser/internal/analysis"
	"github.com/PinjariAbdul/smart-task-analyser/internal/priority"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func bindEnv() {
	viper.SetEnvPrefix("TASKANALYSER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"MaxBatchSize", cfg.Analysis.MaxBatchSize, 500},
		{"DefaultStrategy", cfg.Analysis.DefaultStrategy, "balanced"},
		{"Weights", cfg.Analysis.Weights, priority.DefaultWeights()},
		{"SuggestLimit", cfg.Suggest.Limit, 3},
		{"SuggestStrategy", cfg.Suggest.Strategy, "balanced"},
		{"Addr", cfg.Server.Addr, ":8080"},
		{"BodyLimit", cfg.Server.BodyLimit, 4 << 20},
		{"TelemetryPath", cfg.Telemetry.Path, ""},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_DefaultsMatchEngine(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	opts, err := cfg.AnalysisOptions()
	if err != nil {
		t.Fatalf("AnalysisOptions: %v", err)
	}
	if diff := cmp.Diff(analysis.DefaultOptions(), opts); diff != "" {
		t.Errorf("default config diverges from engine defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "max_batch_size",
			envKey: "TASKANALYSER_ANALYSIS_MAX_BATCH_SIZE",
			envVal: "50",
			field:  func(c Config) any { return c.Analysis.MaxBatchSize },
			want:   50,
		},
		{
			name:   "default_strategy",
			envKey: "TASKANALYSER_ANALYSIS_DEFAULT_STRATEGY",
			envVal: "deadline",
			field:  func(c Config) any { return c.Analysis.DefaultStrategy },
			want:   "deadline",
		},
		{
			name:   "urgency weight",
			envKey: "TASKANALYSER_ANALYSIS_WEIGHTS_URGENCY",
			envVal: "0.9",
			field:  func(c Config) any { return c.Analysis.Weights.Urgency },
			want:   0.9,
		},
		{
			name:   "suggest limit",
			envKey: "TASKANALYSER_SUGGEST_LIMIT",
			envVal: "5",
			field:  func(c Config) any { return c.Suggest.Limit },
			want:   5,
		},
		{
			name:   "server addr",
			envKey: "TASKANALYSER_SERVER_ADDR",
			envVal: "127.0.0.1:9000",
			field:  func(c Config) any { return c.Server.Addr },
			want:   "127.0.0.1:9000",
		},
		{
			name:   "telemetry path",
			envKey: "TASKANALYSER_TELEMETRY_PATH",
			envVal: "/tmp/events.jsonl",
			field:  func(c Config) any { return c.Telemetry.Path },
			want:   "/tmp/events.jsonl",
		},
		{
			name:   "verbose",
			envKey: "TASKANALYSER_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			bindEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), ".taskanalyser.yaml")
	body := `analysis:
  max_batch_size: 20
  default_strategy: impact
  weights:
    urgency: 1
    importance: 1
    unblocks: 0
    effort: 0
suggest:
  limit: 1
  strategy: fastest
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	opts, err := cfg.AnalysisOptions()
	if err != nil {
		t.Fatalf("AnalysisOptions: %v", err)
	}

	want := analysis.Options{
		MaxBatchSize:    20,
		DefaultStrategy: priority.Importance,
		Weights:         priority.Weights{Urgency: 1, Importance: 1},
		SuggestLimit:    1,
		SuggestStrategy: priority.Effort,
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("unset key should keep its default, got %q", cfg.Server.Addr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		mention string
		wantErr error
	}{
		{"negative batch size", "analysis.max_batch_size", -1, "analysis.max_batch_size", nil},
		{"zero suggest limit", "suggest.limit", 0, "suggest.limit", nil},
		{"unknown strategy", "analysis.default_strategy", "coinflip", "analysis.default_strategy", priority.ErrStrategyNotSupported},
		{"unknown suggest strategy", "suggest.strategy", "random", "suggest.strategy", priority.ErrStrategyNotSupported},
		{"negative weight", "analysis.weights.effort", -0.5, "effort", priority.ErrInvalidWeights},
		{"zero body limit", "server.body_limit", 0, "server.body_limit", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.value)

			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("got %v, want ErrInvalidConfig", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want it to wrap %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error %q should name %s", err, tt.mention)
			}
		})
	}
}

func TestLoad_AllWeightsZero(t *testing.T) {
	resetViper()
	for _, k := range []string{"urgency", "importance", "unblocks", "effort"} {
		viper.Set("analysis.weights."+k, 0)
	}

	if _, err := Load(); !errors.Is(err, priority.ErrInvalidWeights) {
		t.Fatalf("got %v, want ErrInvalidWeights", err)
	}
}
