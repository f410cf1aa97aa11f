// Package cli builds the ocm-mapper command tree. The stock binary links no
// model types; a program that links its own passes them with WithTypes so
// that get --as can load stored nodes as objects.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"ocm-mapper/internal/config"
	"ocm-mapper/mapping"
)

// app carries state shared by subcommands. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	configPath  string
	logLevel    string
	noColor     bool
	showMetrics bool

	types      map[string]reflect.Type
	converters *mapping.ConverterRegistry

	cfg     *config.Config
	logger  *slog.Logger
	metrics *prometheus.Registry
}

// Option configures the command tree.
type Option func(*app)

// WithTypes links Go types under the names mapping files use for them, such
// as mapping.TypesOf returns.
func WithTypes(types map[string]reflect.Type) Option {
	return func(a *app) {
		a.types = types
	}
}

// WithConverters supplies the converters mapping files declare.
func WithConverters(converters *mapping.ConverterRegistry) Option {
	return func(a *app) {
		a.converters = converters
	}
}

// NewRootCommand returns the ocm-mapper root command.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:   "ocm-mapper",
		Short: "Object-content mapping tools",
		Long: `ocm-mapper maps Go structs onto nodes of a hierarchical content store.

The tool validates YAML mapping files against Go packages, prints the
resulting type mappings, and reads or writes nodes in the configured store
(memory, sqlite or nats).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.showMetrics {
				return nil
			}

			return writeMetrics(cmd.ErrOrStderr(), a.metrics)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path (YAML, default ./"+config.DefaultFile+" if present)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the config")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVar(&a.showMetrics, "metrics", false, "print store fetch metrics to stderr on exit")

	cmd.AddCommand(
		newCheckCmd(a),
		newDescribeCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newPutCmd(a),
		newRemoveCmd(a),
		newScaffoldCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.noColor {
		color.NoColor = true
	}

	bootstrap := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.NewLoader(bootstrap).Load(a.configPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.metrics = prometheus.NewRegistry()

	return nil
}

// writeMetrics prints the gathered metrics in the Prometheus text format.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	if reg == nil {
		return nil
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}
