package dataset

import (
	"errors"

	"github.com/KaramelBytes/depdash-cli/internal/parser"
	"github.com/sirupsen/logrus"
)

// LoadOptions controls how the dataset file is read and prepared.
type LoadOptions struct {
	Delimiter         rune
	SheetName         string
	ShowMissingGender bool
	Logger            logrus.FieldLogger
}

// DefaultLoadOptions shows blank genders in the domain and logs to the standard logrus logger.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{ShowMissingGender: true}
}

// Load reads, validates and prepares the dataset at path. Any failure is a *LoadError.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	log := opt.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("path", path)

	tbl, err := parser.ReadFile(path, parser.Options{Delimiter: opt.Delimiter, SheetName: opt.SheetName})
	if err != nil {
		if errors.Is(err, parser.ErrNotFound) {
			err = ErrSourceNotFound
		} else {
			err = errors.Join(ErrMalformed, err)
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(tbl.Header) == 0 {
		return nil, &LoadError{Path: path, Err: ErrEmpty}
	}
	raw, err := New(tbl.Name, tbl.Header, tbl.Rows)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	d := Prepare(raw, opt.ShowMissingGender)

	if un := d.Unmapped(); len(un) > 0 {
		sample := un
		if len(sample) > 5 {
			sample = sample[:5]
		}
		log.WithFields(logrus.Fields{
			"count":       len(un),
			"first_lines": sample,
		}).Warnf("depression values outside {0,1} labelled %q", LabelUnknown)
	}
	if !opt.ShowMissingGender {
		blank := 0
		d.Each(func(r Record) {
			if r.Gender == "" {
				blank++
			}
		})
		if blank > 0 {
			log.WithField("count", blank).Warn("rows with blank gender are outside the filter domain and will never be shown")
		}
	}
	log.WithFields(logrus.Fields{
		"records": d.Len(),
		"columns": len(d.columns),
		"genders": len(d.domain),
	}).Debug("dataset loaded")
	return d, nil
}
