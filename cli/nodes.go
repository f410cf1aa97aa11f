package cli

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ocm-mapper/internal/telemetry"
	"ocm-mapper/node"
)

// nodeDoc is the YAML form of a node used by put and get.
type nodeDoc struct {
	Path       string         `yaml:"path"`
	Type       string         `yaml:"type"`
	Version    int64          `yaml:"version,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// docOf renders n so that put accepts the output again.
func docOf(n *node.Node) nodeDoc {
	d := nodeDoc{Path: n.Path, Type: n.TypeTag, Version: n.Version}

	if len(n.Properties) > 0 {
		d.Properties = make(map[string]any, len(n.Properties))
	}

	for k, v := range n.Properties {
		d.Properties[k] = yamlValue(v)
	}

	return d
}

func yamlValue(v any) any {
	switch vv := v.(type) {
	case time.Time:
		return map[string]any{node.TypeDate.String(): vv.Format(time.RFC3339Nano)}
	case []byte:
		return map[string]any{node.TypeBinary.String(): base64.StdEncoding.EncodeToString(vv)}
	case []any:
		if len(vv) == 0 {
			return vv
		}

		switch node.TypeOf(vv[0]) {
		case node.TypeDate, node.TypeBinary:
			var typ string

			out := make([]any, len(vv))
			for i, e := range vv {
				m := yamlValue(e).(map[string]any)
				for t, x := range m {
					typ, out[i] = t, x
				}
			}

			return map[string]any{typ: out}
		}
	}

	return v
}

func (d nodeDoc) node() (*node.Node, error) {
	n := node.New(d.Path, d.Type)

	for k, v := range d.Properties {
		typed, err := typedValue(k, v)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", d.Path, err)
		}

		n.Set(k, typed)
	}

	return n, nil
}

// typedValue decodes a property written as a single-key map naming its
// property type, such as {Date: 2024-02-29T12:30:00Z} or {Binary: yv4=}.
// Other values are returned as is.
func typedValue(name string, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v, nil
	}

	for typ, value := range m {
		if _, err := node.ParsePropertyType(typ); err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		_, multiple := value.([]any)

		data, err := json.Marshal(map[string]any{
			name: map[string]any{"type": typ, "multiple": multiple, "value": value},
		})
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		props, err := node.DecodeProperties(data)
		if err != nil {
			return nil, err
		}

		return props[name], nil
	}

	return v, nil
}

// parseNodes reads a YAML list of nodes, or a single node document.
func parseNodes(data []byte) ([]*node.Node, error) {
	var docs []nodeDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		var single nodeDoc
		if err2 := yaml.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("parse nodes: %w", err)
		}

		docs = []nodeDoc{single}
	}

	nodes := make([]*node.Node, 0, len(docs))

	for i, d := range docs {
		if d.Path == "" {
			return nil, fmt.Errorf("parse nodes: document %d has no path", i)
		}

		n, err := d.node()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, n)
	}

	return nodes, nil
}

func newGetCmd(a *app) *cobra.Command {
	var (
		format   string
		as       string
		patterns []string
		resolve  bool
	)

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Print the node stored at PATH",
		Long: `get prints the node stored at PATH.

With --as TYPE the node is loaded as the named Go type through the mapping
files and dumped instead; --resolve then also loads its lazy fields. --as
needs a binary built with cli.WithTypes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target reflect.Type

			if as != "" {
				t, err := a.lookupType(as)
				if err != nil {
					return err
				}

				target = t
			}

			s, metrics, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			defer func() {
				a.logger.Debug("fetch stats",
					"hits", metrics.Count(telemetry.OutcomeHit),
					"misses", metrics.Count(telemetry.OutcomeMiss))
			}()

			if target == nil {
				n, err := s.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return printNode(cmd.OutOrStdout(), n, format)
			}

			m, err := a.newMapper(s, patterns)
			if err != nil {
				return err
			}

			obj, err := m.Load(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}

			return printObject(cmd.Context(), cmd.OutOrStdout(), obj, resolve)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "output format (yaml, json, dump)")
	cmd.Flags().StringVar(&as, "as", "", "load the node as this Go type")
	cmd.Flags().StringSliceVarP(&patterns, "mappings", "m", nil, "mapping file globs used with --as (default from config)")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "with --as, resolve lazy fields")

	return cmd
}

func printNode(out io.Writer, n *node.Node, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)

		if err := enc.Encode(docOf(n)); err != nil {
			return err
		}

		return enc.Close()

	case "json":
		data, err := node.Marshal(n)
		if err != nil {
			return err
		}

		var indented any
		if err := json.Unmarshal(data, &indented); err != nil {
			return err
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(indented)

	case "dump":
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		cfg.Fdump(out, n)

		return nil

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [PREFIX]",
		Short: "List node paths at or below PREFIX",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := node.Root
			if len(args) == 1 {
				prefix = args[0]
			}

			s, _, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			paths, err := s.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}

			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}

			return nil
		},
	}
}

func newPutCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "put -f FILE",
		Short: "Write the nodes of a YAML file into the store",
		Long: `put reads a YAML list of nodes and saves each one:

  - path: /main/detail
    type: ocm:detail
    properties:
      ocm:field: hello
      ocm:created: {Date: 2024-02-29T12:30:00Z}
      ocm:avatar: {Binary: yv4=}

Dates and binaries are written as a single-key map naming the property
type; plain YAML values map to String, Long, Double and Boolean.
Use "-f -" to read from standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data []byte
				err  error
			)

			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}

			if err != nil {
				return fmt.Errorf("read nodes: %w", err)
			}

			nodes, err := parseNodes(data)
			if err != nil {
				return err
			}

			s, _, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			for _, n := range nodes {
				if err := s.Save(cmd.Context(), n); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s v%d\n", n.Path, n.Version)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file of nodes")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm PATH...",
		Short: "Remove nodes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			for _, p := range args {
				err := s.Remove(cmd.Context(), p)
				if force && errors.Is(err, node.ErrNotFound) {
					continue
				}

				if err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "ignore missing nodes")

	return cmd
}
