package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PinjariAbdul/smart-task-analyser/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "View the JSONL telemetry event stream",
	Long: `Reads and formats the JSONL telemetry file configured by telemetry.path.

With --follow (-f), watches the file for new events (like tail -f).`,
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().String("file", "", "telemetry file (default telemetry.path)")
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	follow, _ := cmd.Flags().GetBool("follow")
	if path == "" {
		path = viper.GetString("telemetry.path")
	}
	if path == "" {
		return errors.New("telemetry: no file; set telemetry.path or pass --file")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	// Print all existing events.
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		printEvent(cmd.OutOrStdout(), line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		return nil
	}

	return tailFollow(cmd.OutOrStdout(), f, path)
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(w io.Writer, f *os.File, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	for event := range watcher.Events {
		if !event.Has(fsnotify.Write) {
			continue
		}
		for {
			line, err := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line != "" {
				printEvent(w, line)
			}
			if err != nil {
				break
			}
		}
	}
	return nil
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Format(time.TimeOnly)), evt.Kind}
	if evt.RequestID != "" {
		parts = append(parts, "request="+evt.RequestID)
	}
	if evt.Source != "" {
		parts = append(parts, "source="+evt.Source)
	}
	switch data := evt.Data.(type) {
	case nil:
	case map[string]any:
		if len(data) > 0 {
			parts = append(parts, formatDataMap(data))
		}
	default:
		b, _ := json.Marshal(data)
		parts = append(parts, string(b))
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
