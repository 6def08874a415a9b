package stitch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultFijiCommand is the executable looked up on PATH when none is
// configured.
const DefaultFijiCommand = "fiji"

// Runner executes stitching plans against a Fiji installation.
type Runner struct {
	Command   string // fiji executable, DefaultFijiCommand when empty
	MacroPath string // stitching macro handed to --run
	Log       *logrus.Logger
}

// NewRunner returns a runner using the given macro script.
func NewRunner(macroPath string) *Runner {
	return &Runner{
		Command:   DefaultFijiCommand,
		MacroPath: macroPath,
		Log:       logrus.StandardLogger(),
	}
}

// Run stitches the plan's folder, blocking until Fiji exits. On success the
// stitched image exists at plan.OutputPath.
func (r *Runner) Run(ctx context.Context, plan *Plan) error {
	cmd := r.Command
	if cmd == "" {
		cmd = DefaultFijiCommand
	}
	args := []string{"--headless", "--console", "--run", r.MacroPath, plan.MacroArgs()}

	r.Log.WithFields(logrus.Fields{
		"dir":    plan.Dir,
		"tiles":  plan.GridX,
		"output": plan.OutputPath,
	}).Info("stitching tile folder")

	c := exec.CommandContext(ctx, cmd, args...)
	out, err := c.CombinedOutput()
	if err != nil {
		r.Log.WithError(err).WithField("output", string(out)).Error("stitch run failed")
		return fmt.Errorf("run %s: %w", cmd, err)
	}
	if _, err := os.Stat(plan.OutputPath); err != nil {
		return fmt.Errorf("stitcher exited cleanly but %s was not written", plan.OutputPath)
	}
	r.Log.WithField("output", plan.OutputPath).Info("stitch finished")
	return nil
}

// WaitForOutput blocks until path exists, watching its directory for
// creation. Useful when the stitcher was launched outside our control.
func WaitForOutput(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	// The file may have appeared between the stat and the watch.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if ev.Name == path && ev.Op.Has(fsnotify.Create|fsnotify.Write) {
				// Give the writer a moment to finish the file.
				time.Sleep(100 * time.Millisecond)
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return err
		}
	}
}
