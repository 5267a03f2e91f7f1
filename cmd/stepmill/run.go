package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepmill/stepmill"
	"github.com/stepmill/stepmill/internal/logging"
	"github.com/stepmill/stepmill/pkg/domain"
	"github.com/stepmill/stepmill/pkg/ports"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <definition>",
	Short: "Execute a workflow definition",
	Long: `Runs a definition file against the built-in demo handlers and prints
the terminal outcome as JSON on stdout. Logs go to stderr.

Built-in resources:
  echo    succeed with the incoming event
  delay   sleep for $.ms milliseconds, then echo
  fail    fail with the string at $.reason`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputJSON, _ := cmd.Flags().GetString("input")
		detailed, _ := cmd.Flags().GetBool("detailed")
		levelName, _ := cmd.Flags().GetString("log-level")

		if err := runWorkflow(args[0], inputJSON, detailed, levelName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "{}", "Initial event as a JSON object")
	runCmd.Flags().Bool("detailed", false, "Log every state start/finish")
}

func runWorkflow(path, inputJSON string, detailed bool, levelName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definition: %w", err)
	}

	def, err := stepmill.Parse(data)
	if err != nil {
		return err
	}

	var input any
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return fmt.Errorf("invalid --input: %w", err)
	}

	eng, err := stepmill.New(def,
		stepmill.WithHandlers(demoHandlers()),
		stepmill.WithLogger(logging.New(parseLevel(levelName))),
		stepmill.WithDetailedLogging(detailed),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := eng.Execute(ctx, input)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}

	if outcome.Status == domain.StatusFailed {
		os.Exit(2)
	}
	return nil
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// demoHandlers lets definitions be exercised from the CLI without writing Go.
func demoHandlers() map[string]ports.TaskHandler {
	return map[string]ports.TaskHandler{
		"echo": func(_ context.Context, event any, tc ports.TaskContext) {
			tc.Succeed(event)
		},
		"delay": func(ctx context.Context, event any, tc ports.TaskContext) {
			ms := float64(0)
			if m, ok := event.(map[string]any); ok {
				ms, _ = m["ms"].(float64)
			}
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
				tc.Succeed(event)
			case <-ctx.Done():
				tc.Fail(ctx.Err())
			}
		},
		"fail": func(_ context.Context, event any, tc ports.TaskContext) {
			reason := "fail handler invoked"
			if m, ok := event.(map[string]any); ok {
				if r, ok := m["reason"].(string); ok {
					reason = r
				}
			}
			tc.Fail(fmt.Errorf("%s", reason))
		},
	}
}
