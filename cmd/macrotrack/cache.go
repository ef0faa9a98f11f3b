package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/macrotrack-backend/internal/app"
)

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the shared nutrition cache",
	}

	var limit int
	top := &cobra.Command{
		Use:   "top",
		Short: "List the most requested cached foods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			st, err := app.OpenStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := st.Foods.Top(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("top foods: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HITS\tNAME\tKCAL/100G\tP\tC\tF\tLAST HIT")
			for _, r := range recs {
				fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
					r.HitCount, r.Name,
					r.Per100g.Calories, r.Per100g.Protein, r.Per100g.Carbs, r.Per100g.Fats,
					r.LastUpdated.Format("2006-01-02 15:04"),
				)
			}
			return w.Flush()
		},
	}
	top.Flags().IntVarP(&limit, "limit", "n", 20, "number of foods to list")

	cmd.AddCommand(top)
	return cmd
}
