package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ocm-mapper/mapping"
)

func newDescribeCmd(a *app) *cobra.Command {
	var (
		patterns []string
		asYAML   bool
	)

	cmd := &cobra.Command{
		Use:   "describe [type...]",
		Short: "Print the type mappings declared in mapping files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(patterns) == 0 {
				patterns = a.cfg.Mappings
			}

			mf, _, err := mapping.LoadGlob(patterns...)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				mf.TypeMappings = selectTypes(mf.TypeMappings, args)
				if len(mf.TypeMappings) == 0 {
					return fmt.Errorf("no mapping for %s", strings.Join(args, ", "))
				}
			}

			if asYAML {
				data, err := mapping.Marshal(mf)
				if err != nil {
					return err
				}

				_, err = cmd.OutOrStdout().Write(data)

				return err
			}

			describe(cmd.OutOrStdout(), mf)

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&patterns, "mappings", "m", nil, "mapping file globs (default from config)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the merged mapping file as YAML")

	return cmd
}

// selectTypes keeps the mappings whose type or jcr type matches one of names.
// A type matches by full identifier or by its short package.Name suffix.
func selectTypes(tms []mapping.TypeMapping, names []string) []mapping.TypeMapping {
	var out []mapping.TypeMapping

	for _, tm := range tms {
		for _, name := range names {
			if tm.Type == name || tm.JcrType == name || strings.HasSuffix(tm.Type, "/"+name) || strings.HasSuffix(tm.Type, "."+name) {
				out = append(out, tm)
				break
			}
		}
	}

	return out
}

func describe(out io.Writer, mf *mapping.MappingFile) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	for i, tm := range mf.TypeMappings {
		if i > 0 {
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "%s (%s)\n", bold(tm.Type), tm.JcrType)

		for _, fd := range tm.Fields {
			fm := fd.Mapping()
			fmt.Fprintf(out, "  %-12s %-10s -> %s%s\n", fm.Field, strings.ToLower(fm.Kind.String()), fm.StoreName(), faint(flags(fm)))
		}
	}

	for _, c := range mf.Converters {
		fmt.Fprintf(out, "converter %s", c.Name)

		if c.Description != "" {
			fmt.Fprintf(out, ": %s", c.Description)
		}

		fmt.Fprintln(out)
	}
}

func flags(fm mapping.FieldMapping) string {
	var b strings.Builder

	if fm.Lazy {
		b.WriteString(" lazy")
	}

	if fm.Required {
		b.WriteString(" required")
	}

	if fm.OmitEmpty {
		b.WriteString(" omitempty")
	}

	if fm.Converter != "" {
		b.WriteString(" converter=" + fm.Converter)
	}

	return b.String()
}
