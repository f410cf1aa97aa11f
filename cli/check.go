package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"ocm-mapper/internal/analyze"
	"ocm-mapper/internal/diagnostic"
	"ocm-mapper/mapping"
)

var errCheckFailed = errors.New("mapping check failed")

type checkOptions struct {
	mappings []string
	packages []string
	dir      string
	watch    bool
	debounce time.Duration
}

func newCheckCmd(a *app) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate mapping files against Go packages",
		Long: `check loads every mapping file matching the given globs, loads the Go
packages holding the mapped types, and reports errors, warnings and notes.
With --watch it re-runs whenever a mapping file or Go source changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.mappings) == 0 {
				opts.mappings = a.cfg.Mappings
			}

			if opts.watch {
				return a.watchCheck(cmd.Context(), cmd.OutOrStdout(), opts)
			}

			ok, err := a.runCheck(cmd.Context(), cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}

			if !ok {
				return errCheckFailed
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.mappings, "mappings", "m", nil, "mapping file globs (default from config)")
	cmd.Flags().StringSliceVarP(&opts.packages, "packages", "p", []string{"./..."}, "Go package patterns holding the mapped types")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory package patterns are resolved from")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run on file changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "delay before re-running after a change")

	return cmd
}

// runCheck runs one validation and reports whether it found no errors.
func (a *app) runCheck(ctx context.Context, out io.Writer, opts *checkOptions) (bool, error) {
	mf, paths, err := mapping.LoadGlob(opts.mappings...)
	if err != nil {
		return false, err
	}

	a.logger.Debug("loaded mapping files", "files", paths)

	graph, err := analyze.NewAnalyzer(analyze.WithDir(opts.dir), analyze.WithLogger(a.logger)).
		LoadPackages(ctx, opts.packages...)
	if err != nil {
		return false, err
	}

	diags := mapping.Validate(mf, graph)
	printDiagnostics(out, diags)

	fmt.Fprintf(out, "%d file(s), %d type(s): %d error(s), %d warning(s)\n",
		len(paths), len(mf.TypeMappings), len(diags.Errors), len(diags.Warnings))

	return diags.IsValid(), nil
}

func printDiagnostics(out io.Writer, diags *diagnostic.Diagnostics) {
	label := map[diagnostic.DiagnosticSeverity]func(a ...any) string{
		diagnostic.DiagnosticError:   color.New(color.FgRed, color.Bold).SprintFunc(),
		diagnostic.DiagnosticWarning: color.New(color.FgYellow).SprintFunc(),
		diagnostic.DiagnosticInfo:    color.New(color.FgCyan).SprintFunc(),
	}

	for _, d := range diags.All() {
		fmt.Fprintf(out, "%s %s\n", label[d.Severity](d.Severity.String()+":"), d.String())
	}
}

// watchCheck runs check once and again after every batch of relevant file
// changes, until ctx is done.
func (a *app) watchCheck(ctx context.Context, out io.Writer, opts *checkOptions) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	rerun := func() {
		if _, err := a.runCheck(ctx, out, opts); err != nil {
			fmt.Fprintln(out, color.RedString("error:"), err)
		}

		for _, dir := range watchDirs(opts) {
			if err := w.Add(dir); err != nil {
				a.logger.Warn("failed to watch directory", "path", dir, "error", err)
			}
		}
	}

	rerun()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !relevant(event) {
				continue
			}

			a.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			pending = time.After(opts.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			a.logger.Error("watcher error", "error", err)

		case <-pending:
			pending = nil

			fmt.Fprintln(out, color.New(color.Faint).Sprint("--- re-running check"))
			rerun()
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	switch filepath.Ext(event.Name) {
	case ".yaml", ".yml", ".go":
		return true
	default:
		return false
	}
}

// watchDirs returns the existing directories holding mapping files or the
// local packages being checked.
func watchDirs(opts *checkOptions) []string {
	seen := map[string]bool{}

	var dirs []string

	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}

		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}

		seen[dir] = true
		dirs = append(dirs, dir)
	}

	if _, paths, err := mapping.LoadGlob(opts.mappings...); err == nil {
		for _, p := range paths {
			add(filepath.Dir(p))
		}
	}

	for _, pattern := range opts.packages {
		if !strings.HasPrefix(pattern, ".") && !filepath.IsAbs(pattern) {
			continue
		}

		dir := strings.TrimSuffix(pattern, "/...")
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(opts.dir, dir)
		}

		add(dir)
	}

	return dirs
}
