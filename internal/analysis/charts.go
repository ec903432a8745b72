package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/depdash-cli/internal/dataset"
)

// CountChart counts records per category of X, split by the levels of Hue.
type CountChart struct {
	X      string
	Hue    string
	Groups []string
	Levels []string
	// Counts[i][j] is the count for Groups[i] and Levels[j].
	Counts [][]int
	Total  int
	Empty  bool
}

// Count builds a grouped count chart. Records with a blank X or Hue value are skipped.
func Count(d *dataset.Dataset, x, hue string) CountChart {
	c := CountChart{X: x, Hue: hue}
	gi := map[string]int{}
	li := map[string]int{}
	type cell struct{ g, l int }
	counts := map[cell]int{}
	d.Each(func(r dataset.Record) {
		gv, hv := d.Value(r, x), d.Value(r, hue)
		if gv == "" || hv == "" {
			return
		}
		g, ok := gi[gv]
		if !ok {
			g = len(c.Groups)
			gi[gv] = g
			c.Groups = append(c.Groups, gv)
		}
		l, ok := li[hv]
		if !ok {
			l = len(c.Levels)
			li[hv] = l
			c.Levels = append(c.Levels, hv)
		}
		counts[cell{g, l}]++
		c.Total++
	})
	c.Counts = make([][]int, len(c.Groups))
	for g := range c.Groups {
		c.Counts[g] = make([]int, len(c.Levels))
		for l := range c.Levels {
			c.Counts[g][l] = counts[cell{g, l}]
		}
	}
	c.Empty = c.Total == 0
	return c
}

// Max returns the largest single count.
func (c CountChart) Max() int {
	m := 0
	for _, row := range c.Counts {
		for _, v := range row {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// BoxStats is a five-number summary with Tukey whiskers (1.5·IQR).
type BoxStats struct {
	Group        string
	N            int
	Mean         float64
	Min          float64
	Q1           float64
	Median       float64
	Q3           float64
	Max          float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     []float64
}

// NewBoxStats summarizes vals. It returns false for an empty input.
func NewBoxStats(group string, vals []float64) (BoxStats, bool) {
	if len(vals) == 0 {
		return BoxStats{Group: group}, false
	}
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	w := newWelford()
	for _, v := range s {
		w.add(v)
	}
	b := BoxStats{
		Group:  group,
		N:      len(s),
		Mean:   w.mean,
		Min:    s[0],
		Max:    s[len(s)-1],
		Q1:     quantile(s, 0.25),
		Median: quantile(s, 0.5),
		Q3:     quantile(s, 0.75),
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	first := true
	for _, v := range s {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if first {
			b.LowerWhisker = v
			first = false
		}
		b.UpperWhisker = v
	}
	return b, true
}

// BoxChart holds one box per category of X for the numeric column Y.
type BoxChart struct {
	X       string
	Y       string
	Boxes   []BoxStats
	Skipped int
	Empty   bool
}

// Box builds a box chart of y grouped by x. Non-numeric y values are skipped.
func Box(d *dataset.Dataset, x, y string, opt Options) BoxChart {
	c := BoxChart{X: x, Y: y}
	groups, vals, skipped := numericByGroup(d, x, y, opt)
	c.Skipped = skipped
	for _, g := range groups {
		if b, ok := NewBoxStats(g, vals[g]); ok {
			c.Boxes = append(c.Boxes, b)
		}
	}
	c.Empty = len(c.Boxes) == 0
	return c
}

// Range returns the smallest and largest values across all boxes.
func (c BoxChart) Range() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range c.Boxes {
		lo = math.Min(lo, b.Min)
		hi = math.Max(hi, b.Max)
	}
	return lo, hi
}

// DensityPoint is one sample of a kernel density estimate.
type DensityPoint struct {
	Y       float64
	Density float64
}

// Violin is the density of one category plus its inner box and raw points.
type Violin struct {
	Box       BoxStats
	Bandwidth float64
	Density   []DensityPoint
	Points    []float64
}

// ViolinChart holds one violin per category of X for the numeric column Y.
type ViolinChart struct {
	X       string
	Y       string
	Violins []Violin
	Skipped int
	Empty   bool
}

// ViolinOptions controls the density grid.
type ViolinOptions struct {
	// GridSize is the number of density samples per violin.
	GridSize int
	// Cut extends the grid past the data by this many bandwidths.
	Cut float64
	// Points keeps every raw value on the violin.
	Points bool
}

// DefaultViolinOptions mirrors the usual statistical-graphics defaults.
func DefaultViolinOptions() ViolinOptions {
	return ViolinOptions{GridSize: 64, Cut: 2}
}

// ViolinPlot builds a violin chart of y grouped by x using a Gaussian KDE with Scott's bandwidth.
func ViolinPlot(d *dataset.Dataset, x, y string, opt Options, vopt ViolinOptions) ViolinChart {
	c := ViolinChart{X: x, Y: y}
	if vopt.GridSize < 2 {
		vopt.GridSize = 64
	}
	groups, vals, skipped := numericByGroup(d, x, y, opt)
	c.Skipped = skipped
	for _, g := range groups {
		b, ok := NewBoxStats(g, vals[g])
		if !ok {
			continue
		}
		v := Violin{Box: b}
		v.Bandwidth, v.Density = kde(vals[g], vopt)
		if vopt.Points {
			v.Points = append([]float64(nil), vals[g]...)
		}
		c.Violins = append(c.Violins, v)
	}
	c.Empty = len(c.Violins) == 0
	return c
}

// Range returns the extent of the density grids (or data when no density was computed).
func (c ViolinChart) Range() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range c.Violins {
		lo = math.Min(lo, v.Box.Min)
		hi = math.Max(hi, v.Box.Max)
		if n := len(v.Density); n > 0 {
			lo = math.Min(lo, v.Density[0].Y)
			hi = math.Max(hi, v.Density[n-1].Y)
		}
	}
	return lo, hi
}

func kde(vals []float64, vopt ViolinOptions) (float64, []DensityPoint) {
	w := newWelford()
	for _, v := range vals {
		w.add(v)
	}
	sd := w.std()
	if len(vals) < 2 || sd == 0 {
		return 0, nil
	}
	bw := sd * math.Pow(float64(len(vals)), -1.0/5.0)
	lo := w.min - vopt.Cut*bw
	hi := w.max + vopt.Cut*bw
	step := (hi - lo) / float64(vopt.GridSize-1)
	norm := 1 / (float64(len(vals)) * bw * math.Sqrt(2*math.Pi))
	out := make([]DensityPoint, vopt.GridSize)
	for i := range out {
		y := lo + float64(i)*step
		var sum float64
		for _, v := range vals {
			z := (y - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		out[i] = DensityPoint{Y: y, Density: sum * norm}
	}
	return bw, out
}

// ScatterPoint is one record plotted by two numeric columns.
type ScatterPoint struct {
	X     float64
	Y     float64
	Line  int
	Hover map[string]string
}

// ScatterSeries is the set of points sharing one color value.
type ScatterSeries struct {
	Name   string
	Points []ScatterPoint
}

// ScatterChart plots y against x, colored by a categorical column.
type ScatterChart struct {
	X       string
	Y       string
	Color   string
	Series  []ScatterSeries
	Skipped int
	Empty   bool
	MinX    float64
	MaxX    float64
	MinY    float64
	MaxY    float64
}

// Scatter builds a scatter chart. Records where x or y is not numeric are skipped.
func Scatter(d *dataset.Dataset, x, y, color string, hover []string, opt Options) ScatterChart {
	c := ScatterChart{X: x, Y: y, Color: color, MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	si := map[string]int{}
	total := 0
	d.Each(func(r dataset.Record) {
		xv, okx := parseNumeric(d.Value(r, x), opt)
		yv, oky := parseNumeric(d.Value(r, y), opt)
		if !okx || !oky {
			c.Skipped++
			return
		}
		name := d.Value(r, color)
		i, ok := si[name]
		if !ok {
			i = len(c.Series)
			si[name] = i
			c.Series = append(c.Series, ScatterSeries{Name: name})
		}
		p := ScatterPoint{X: xv, Y: yv, Line: r.Line}
		if len(hover) > 0 {
			p.Hover = make(map[string]string, len(hover))
			for _, h := range hover {
				p.Hover[h] = d.Value(r, h)
			}
		}
		c.Series[i].Points = append(c.Series[i].Points, p)
		c.MinX, c.MaxX = math.Min(c.MinX, xv), math.Max(c.MaxX, xv)
		c.MinY, c.MaxY = math.Min(c.MinY, yv), math.Max(c.MaxY, yv)
		total++
	})
	c.Empty = total == 0
	if c.Empty {
		c.MinX, c.MaxX, c.MinY, c.MaxY = 0, 0, 0, 0
	}
	return c
}

// numericByGroup collects numeric y values per x category. Categories are ordered
// numerically when every one parses as a number, otherwise by first appearance.
func numericByGroup(d *dataset.Dataset, x, y string, opt Options) ([]string, map[string][]float64, int) {
	var groups []string
	vals := map[string][]float64{}
	skipped := 0
	d.Each(func(r dataset.Record) {
		g := d.Value(r, x)
		if g == "" {
			skipped++
			return
		}
		v, ok := parseNumeric(d.Value(r, y), opt)
		if !ok {
			skipped++
			return
		}
		if _, seen := vals[g]; !seen {
			groups = append(groups, g)
		}
		vals[g] = append(vals[g], v)
	})
	numeric := true
	keys := make(map[string]float64, len(groups))
	for _, g := range groups {
		f, ok := parseNumeric(g, opt)
		if !ok {
			numeric = false
			break
		}
		keys[g] = f
	}
	if numeric {
		sort.SliceStable(groups, func(i, j int) bool { return keys[groups[i]] < keys[groups[j]] })
	}
	return groups, vals, skipped
}
