package cli

import (
	"github.com/spf13/cobra"

	"ocm-mapper/internal/analyze"
	"ocm-mapper/mapping"
)

func newScaffoldCmd(a *app) *cobra.Command {
	var (
		packages []string
		dir      string
		prefix   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "scaffold TYPE...",
		Short: "Propose a mapping file for Go struct types",
		Long: `scaffold inspects the given struct types and writes a mapping file that
maps every storable field under a prefixed property name. Review the result,
then add converters, required flags and identity fields where needed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := analyze.NewAnalyzer(analyze.WithDir(dir), analyze.WithLogger(a.logger)).
				LoadPackages(cmd.Context(), packages...)
			if err != nil {
				return err
			}

			mf, diags := mapping.Scaffold(graph, prefix, args...)
			printDiagnostics(cmd.ErrOrStderr(), diags)

			if err := diags.Error(); err != nil {
				return err
			}

			if output != "" {
				return mapping.WriteFile(mf, output)
			}

			data, err := mapping.Marshal(mf)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringSliceVarP(&packages, "packages", "p", []string{"./..."}, "Go package patterns holding the types")
	cmd.Flags().StringVar(&dir, "dir", "", "directory package patterns are resolved from")
	cmd.Flags().StringVar(&prefix, "prefix", "ocm:", "namespace prefix of type tags and property names")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the mapping file here instead of stdout")

	return cmd
}
