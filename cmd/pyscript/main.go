// Command pyscript is the reference host for the embeddable interpreter:
// a cobra-based CLI with a default "run" subcommand and a "watch"
// subcommand. RunE functions return errors or record an exit code; only
// main() ever calls os.Exit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/pyscript"
	"github.com/aledsdavies/pyscript/internal/colorfmt"
)

// Process exit codes, following the sysexits-style convention for
// interpreter drivers: data errors exit 65, software errors 70.
const (
	ExitSuccess      = 0
	ExitIOError      = 1
	ExitSyntaxError  = 65
	ExitRuntimeError = 70
)

func main() {
	var noColor bool
	exitCode := ExitSuccess

	rootCmd := &cobra.Command{
		Use:           "pyscript [script]",
		Short:         "Run scripts with the pyscript embeddable interpreter",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	runCmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script once and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runOnce(cmd.Context(), args[0], colorfmt.ShouldUse(noColor))
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch <script>",
		Short: "Re-run a script each time it changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), args[0], colorfmt.ShouldUse(noColor))
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd)

	// Bare "pyscript <script>" behaves like "pyscript run <script>".
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		exitCode = runOnce(cmd.Context(), args[0], colorfmt.ShouldUse(noColor))
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorfmt.Colorize("Error: ", colorfmt.Red, colorfmt.ShouldUse(noColor))+err.Error())
		exitCode = ExitIOError
	}
	cancel()
	if exitCode != ExitSuccess {
		os.Exit(exitCode)
	}
}

// runOnce reads path, evaluates it once, and returns the process exit code
// the caller should use. Cancelling ctx stops the running script.
func runOnce(ctx context.Context, path string, useColor bool) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, colorfmt.Colorize("Error reading file: ", colorfmt.Red, useColor)+err.Error())
		return ExitIOError
	}

	interp := pyscript.New()
	stopOnCancel := context.AfterFunc(ctx, interp.Stop)
	defer stopOnCancel()
	interp.RegisterPrintCallback(func(s string) { fmt.Print(s) })
	interp.RegisterErrorCallback(func(s string) {
		fmt.Fprintln(os.Stderr, colorfmt.Colorize(s, colorfmt.Red, useColor))
	})

	_, outcome := interp.Evaluate(string(content))
	switch outcome {
	case pyscript.OutcomeOK:
		return ExitSuccess
	case pyscript.OutcomeSyntaxError:
		return ExitSyntaxError
	case pyscript.OutcomeRuntimeError:
		return ExitRuntimeError
	default:
		return ExitRuntimeError
	}
}

// runWatch re-runs path on every write event. It is a re-run trigger, not
// a REPL, so it lives entirely in the CLI layer.
func runWatch(ctx context.Context, path string, useColor bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	fmt.Fprintln(os.Stderr, colorfmt.Colorize(fmt.Sprintf("watching %s (ctrl-c to stop)", path), colorfmt.Cyan, useColor))
	runOnce(ctx, path, useColor)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintln(os.Stderr, colorfmt.Colorize("--- re-running ---", colorfmt.Gray, useColor))
			runOnce(ctx, path, useColor)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, colorfmt.Colorize("watch error: ", colorfmt.Red, useColor)+err.Error())
		}
	}
}
