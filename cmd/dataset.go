package cmd

import (
	cfgpkg "github.com/KaramelBytes/depdash-cli/internal/config"
	"github.com/KaramelBytes/depdash-cli/internal/dataset"
)

// loadDataset reads the configured dataset. Any error is fatal for the calling command.
func loadDataset() (*dataset.Dataset, error) {
	delim, err := cfgpkg.ParseDelimiter(cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	return dataset.Load(cfg.DatasetPath, dataset.LoadOptions{
		Delimiter:         delim,
		SheetName:         cfg.SheetName,
		ShowMissingGender: cfg.ShowMissingGender,
		Logger:            log,
	})
}

// selectionFrom turns --gender/--no-gender into a selection. No flags selects the whole domain.
// The missing-gender label is accepted in place of the blank value.
func selectionFrom(d *dataset.Dataset, genders []string, none bool) dataset.Selection {
	if none {
		return dataset.NewSelection()
	}
	if len(genders) == 0 {
		return dataset.AllOf(d.Domain())
	}
	sel := dataset.NewSelection()
	dm := d.Domain()
	for _, g := range genders {
		if g == dataset.MissingGenderLabel {
			g = ""
		}
		if !dm.Contains(g) {
			log.WithField("gender", g).Warn("gender is not part of the dataset; it matches no records")
		}
		sel[g] = struct{}{}
	}
	return sel
}
