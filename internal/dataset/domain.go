package dataset

import "sort"

// Domain is the ordered set of distinct gender values, in first-appearance order.
type Domain []string

// Contains reports whether g is part of the domain.
func (dm Domain) Contains(g string) bool {
	for _, v := range dm {
		if v == g {
			return true
		}
	}
	return false
}

// Display returns the label shown for a gender value.
func Display(g string) string {
	if g == "" {
		return MissingGenderLabel
	}
	return g
}

func discoverDomain(recs []Record, showMissing bool) Domain {
	seen := map[string]struct{}{}
	dm := Domain{}
	for _, r := range recs {
		if r.Gender == "" && !showMissing {
			continue
		}
		if _, ok := seen[r.Gender]; ok {
			continue
		}
		seen[r.Gender] = struct{}{}
		dm = append(dm, r.Gender)
	}
	return dm
}

// Selection is a set of gender values chosen by the user.
type Selection map[string]struct{}

// NewSelection builds a selection from the given values.
func NewSelection(genders ...string) Selection {
	s := make(Selection, len(genders))
	for _, g := range genders {
		s[g] = struct{}{}
	}
	return s
}

// AllOf selects every value in the domain.
func AllOf(dm Domain) Selection { return NewSelection(dm...) }

// Has reports whether g is selected.
func (s Selection) Has(g string) bool {
	_, ok := s[g]
	return ok
}

// Sorted returns the selected values in ascending order.
func (s Selection) Sorted() []string {
	out := make([]string, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// GenderCount pairs a domain value with its number of records.
type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// CountByGender counts records per domain value, in domain order.
func CountByGender(d *Dataset) []GenderCount {
	counts := map[string]int{}
	for _, r := range d.records {
		counts[r.Gender]++
	}
	out := make([]GenderCount, 0, len(d.domain))
	for _, g := range d.domain {
		out = append(out, GenderCount{Gender: g, Count: counts[g]})
	}
	return out
}
