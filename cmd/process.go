package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"cip/internal/codec"
	"cip/internal/logger"
	"cip/internal/processor"
	"cip/internal/resolver"
	"cip/internal/tui"
)

var flagProgress bool

func runProcess(cmd *cobra.Command, args []string) error {
	started := time.Now()

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	set, err := resolver.Resolve(fs, cfg.Paths, cfg.Depth)
	if err != nil {
		return err
	}
	logger.Info("Resolved paths", "directories", set.Directories, "files", set.Files)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	updates := make(chan processor.ProgressUpdate, 64)
	uiDone := make(chan struct{})
	if flagProgress {
		program := tea.NewProgram(tui.NewModel(updates, stop), tea.WithOutput(out))
		go func() {
			watchProgress(func() error {
				_, err := program.Run()
				return err
			}, out, updates)
			close(uiDone)
		}()
	} else {
		go func() {
			printLines(out, updates)
			close(uiDone)
		}()
	}

	p := processor.New(fs, codec.New(), cfg)
	summary, err := p.Run(ctx, set, updates)

	close(updates)
	<-uiDone
	if err != nil {
		logger.Error("Run aborted", "processed", summary.Processed, "skipped", summary.Skipped, "error", err)
		return err
	}

	fmt.Fprintln(out, tui.RenderSummary(tui.SummaryRows(summary)))
	finished := time.Now().UTC()
	fmt.Fprintf(out, "Program finished in %s at %s\n", processor.Clock(time.Since(started)), finished.Format("2006.01.02 15:04:05"))
	return nil
}

// watchProgress runs the progress UI and then prints whatever it left unread,
// so the sender never blocks on a UI that has exited.
func watchProgress(run func() error, out io.Writer, updates <-chan processor.ProgressUpdate) {
	if err := run(); err != nil {
		logger.Warn("Progress display failed, falling back to plain output", "error", err)
	}
	printLines(out, updates)
}

func printLines(w io.Writer, updates <-chan processor.ProgressUpdate) {
	for update := range updates {
		if update.Line != "" {
			fmt.Fprintln(w, update.Line)
		}
	}
}
