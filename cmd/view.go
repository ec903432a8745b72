package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/depdash-cli/internal/dashboard"
	"github.com/KaramelBytes/depdash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	viewPage          string
	viewGenders       []string
	viewNoGender      bool
	viewOnlyDepressed bool
	viewJSON          bool
	viewOutputPath    string
	viewTableLimit    int
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Render one dashboard page as Markdown or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDataset()
		if err != nil {
			return err
		}
		opt := dashboard.DefaultOptions()
		opt.OnlyDepressed = viewOnlyDepressed
		opt.TableLimit = viewTableLimit
		v, err := dashboard.Render(d, selectionFrom(d, viewGenders, viewNoGender), viewPage, opt)
		if err != nil {
			if errors.Is(err, dashboard.ErrUnknownPage) {
				var ids []string
				for _, p := range dashboard.Pages() {
					ids = append(ids, p.ID)
				}
				return fmt.Errorf("%w (use one of: %s)", err, strings.Join(ids, ", "))
			}
			return err
		}

		var out []byte
		if viewJSON {
			if out, err = utils.PrettyJSON(v); err != nil {
				return err
			}
		} else {
			out = []byte(v.Markdown())
		}
		if viewOutputPath != "" {
			if err := utils.SafeWriteFile(viewOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s view to %s\n", v.Page.ID, viewOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewPage, "page", dashboard.DefaultPage().ID, "page id: sono|cgpa|trabalho|interativos|tabela")
	viewCmd.Flags().StringArrayVar(&viewGenders, "gender", nil, "gender to include (repeatable; default all)")
	viewCmd.Flags().BoolVar(&viewNoGender, "no-gender", false, "select no gender (empty working set)")
	viewCmd.Flags().BoolVar(&viewOnlyDepressed, "only-depressed", false, "suicidal thoughts chart: only students with depression")
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "output the view as JSON instead of Markdown")
	viewCmd.Flags().StringVarP(&viewOutputPath, "output", "o", "", "optional path to write the view")
	viewCmd.Flags().IntVar(&viewTableLimit, "table-limit", 0, "max rows for the data table page (0 = all)")
}
