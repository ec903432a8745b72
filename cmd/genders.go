package cmd

import (
	"fmt"

	"github.com/KaramelBytes/depdash-cli/internal/dataset"
	"github.com/KaramelBytes/depdash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var gendersJSON bool

var gendersCmd = &cobra.Command{
	Use:   "genders",
	Short: "List the gender filter values with their record counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDataset()
		if err != nil {
			return err
		}
		counts := dataset.CountByGender(d)
		out := cmd.OutOrStdout()
		if gendersJSON {
			b, err := utils.PrettyJSON(counts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "%s: %d records\n", d.Name(), d.Len())
		for _, gc := range counts {
			fmt.Fprintf(out, "  %-20s %d\n", dataset.Display(gc.Gender), gc.Count)
		}
		if un := d.Unmapped(); len(un) > 0 {
			fmt.Fprintf(out, "⚠ %d records have a depression value outside {0,1}\n", len(un))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gendersCmd)
	gendersCmd.Flags().BoolVar(&gendersJSON, "json", false, "output as JSON")
}
