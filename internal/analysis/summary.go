package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/depdash-cli/internal/dataset"
)

// Options controls numeric parsing and the dataset summary.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for the survey summary.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly summary of a working set.
type Report struct {
	Name     string
	Rows     int
	Total    int
	Genders  []string
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Groups   []GroupResult
	Corr     *CorrMatrix
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical|text|unknown
	NonNull int
	Missing int
	Unique  int
	Min     float64
	Max     float64
	Mean    float64
	Std     float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	TopValues        []CategoryCount
	ExampleTexts     []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Summarize describes the working set d. total is the size of the unfiltered dataset
// and sel the active gender selection; both only feed the report header.
func Summarize(d *dataset.Dataset, total int, sel dataset.Selection, opt Options) *Report {
	cols := d.Columns()
	cols = append(cols, "depression_label")
	rep := &Report{Name: d.Name(), Rows: d.Len(), Total: total}
	for _, g := range sel.Sorted() {
		rep.Genders = append(rep.Genders, dataset.Display(g))
	}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}

	type colAcc struct {
		w      *welford
		miss   int
		nonNil int
		numCnt int
		txtCnt int
		cats   map[string]int
		exText []string
		// nums is indexed by record position; NaN marks a non-numeric cell
		nums []float64
	}
	acc := make([]*colAcc, len(cols))
	for i := range acc {
		acc[i] = &colAcc{w: newWelford(), cats: map[string]int{}, nums: make([]float64, 0, d.Len())}
	}

	type gAcc struct {
		size int
		w    map[int]*welford
	}
	groups := map[string]*gAcc{}

	d.Each(func(r dataset.Record) {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = d.Value(r, col)
		}
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, row)
		}
		var ga *gAcc
		if len(opt.GroupBy) > 0 {
			var parts []string
			for _, name := range opt.GroupBy {
				if !d.HasColumn(name) && !strings.EqualFold(name, "depression_label") {
					continue
				}
				parts = append(parts, fmt.Sprintf("%s=%s", name, safeVal(d.Value(r, name))))
			}
			if len(parts) > 0 {
				key := strings.Join(parts, " | ")
				ga = groups[key]
				if ga == nil {
					ga = &gAcc{w: map[int]*welford{}}
					groups[key] = ga
				}
				ga.size++
			}
		}
		for j, v := range row {
			c := acc[j]
			if v == "" {
				c.miss++
				c.nums = append(c.nums, math.NaN())
				continue
			}
			c.nonNil++
			if x, ok := parseNumeric(v, opt); ok {
				c.numCnt++
				c.w.add(x)
				c.nums = append(c.nums, x)
				if ga != nil {
					gw := ga.w[j]
					if gw == nil {
						gw = newWelford()
						ga.w[j] = gw
					}
					gw.add(x)
				}
				continue
			}
			c.nums = append(c.nums, math.NaN())
			c.txtCnt++
			if len(c.cats) <= 10000 && len(v) <= 64 {
				c.cats[v]++
			}
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}
	})

	var numCols []int
	for idx, c := range acc {
		s := ColumnSummary{Name: cols[idx], NonNull: c.nonNil, Missing: c.miss, Kind: "unknown"}
		switch {
		case c.numCnt > 0 && c.numCnt >= c.txtCnt:
			s.Kind = "numeric"
			s.Min, s.Max, s.Mean, s.Std = c.w.min, c.w.max, c.w.mean, c.w.std()
			numCols = append(numCols, idx)
			if opt.Outliers {
				s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = robustOutliers(finite(c.nums), opt.OutlierThreshold)
			}
		case len(c.cats) > 0:
			s.Kind = "categorical"
			tops := make([]CategoryCount, 0, len(c.cats))
			for k, v := range c.cats {
				tops = append(tops, CategoryCount{Value: k, Count: v})
			}
			sort.Slice(tops, func(i, j int) bool {
				if tops[i].Count == tops[j].Count {
					return tops[i].Value < tops[j].Value
				}
				return tops[i].Count > tops[j].Count
			})
			if len(tops) > 8 {
				tops = tops[:8]
			}
			s.TopValues = tops
			s.Unique = len(c.cats)
		case c.txtCnt > 0:
			s.Kind = "text"
			s.ExampleTexts = c.exText
		}
		rep.Cols = append(rep.Cols, s)
	}

	if rep.Rows == 0 {
		rep.Warnings = append(rep.Warnings, "working set is empty for the current gender selection")
	}
	if un := d.Unmapped(); len(un) > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d rows have a depression value outside {0,1} (labelled %q)", len(un), dataset.LabelUnknown))
	}

	if len(groups) > 0 {
		out := make([]GroupResult, 0, len(groups))
		for k, ga := range groups {
			gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
			for _, idx := range numCols {
				gw := ga.w[idx]
				if gw == nil || gw.n == 0 {
					continue
				}
				gr.Metrics[cols[idx]] = NumSummary{Count: gw.n, Min: gw.min, Max: gw.max, Mean: gw.mean}
			}
			out = append(out, gr)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Size == out[j].Size {
				return out[i].Key < out[j].Key
			}
			return out[i].Size > out[j].Size
		})
		if len(out) > 20 {
			out = out[:20]
		}
		rep.Groups = out
	}

	if opt.Correlations && len(numCols) >= 2 {
		n := len(numCols)
		m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
		for a, ia := range numCols {
			m.Columns[a] = cols[ia]
			m.Values[a] = make([]float64, n)
			for b, ib := range numCols {
				if a == b {
					m.Values[a][b] = 1
					continue
				}
				xs, ys := pairwiseComplete(acc[ia].nums, acc[ib].nums)
				if r, ok := pearson(xs, ys); ok {
					m.Values[a][b] = r
				}
			}
		}
		rep.Corr = m
	}
	return rep
}

func finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func pairwiseComplete(a, b []float64) ([]float64, []float64) {
	var xs, ys []float64
	for i := range a {
		if i >= len(b) || math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	return xs, ys
}

// robustOutliers counts values whose modified z-score exceeds thr. Needs at least 8 values.
func robustOutliers(vals []float64, thr float64) (int, float64, float64) {
	if thr <= 0 {
		thr = 3.5
	}
	if len(vals) < 8 {
		return 0, 0, 0
	}
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0, thr
	}
	var cnt int
	maxAbsZ := 0.0
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			cnt++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return cnt, maxAbsZ, thr
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Total > 0 && r.Total != r.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d of %d\n", r.Rows, r.Total))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	if len(r.Genders) > 0 {
		b.WriteString(fmt.Sprintf("Genders: %s\n", strings.Join(r.Genders, ", ")))
	} else {
		b.WriteString("Genders: (none selected)\n")
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString(" — e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", g.Key, g.Size))
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			if len(keys) > 6 {
				keys = keys[:6]
			}
			for _, k := range keys {
				m := g.Metrics[k]
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g)\n", k, m.Mean, m.Min, m.Max))
			}
		}
	}
	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: r.Corr.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		WriteMarkdownTable(&b, columnNames(r.Cols), r.Samples)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func columnNames(cols []ColumnSummary) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// WriteMarkdownTable renders a pipe table; cells longer than 80 bytes are truncated.
func WriteMarkdownTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			val = truncateRunes(val, 80)
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

// truncateRunes shortens s to at most max runes, ending with "..." when cut.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
