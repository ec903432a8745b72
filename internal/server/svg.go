package server

import (
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/depdash-cli/internal/analysis"
	"github.com/KaramelBytes/depdash-cli/internal/dashboard"
)

const (
	chartW = 560.0
	chartH = 340.0
	padL   = 56.0
	padR   = 130.0
	padT   = 16.0
	padB   = 48.0
	plotW  = chartW - padL - padR
	bottom = chartH - padB
)

var palette = []string{"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3", "#937860", "#da8bc3", "#8c8c8c"}

func color(i int) string { return palette[i%len(palette)] }

// chartSVG draws a non-empty chart panel as inline SVG.
func chartSVG(p dashboard.Panel) template.HTML {
	switch {
	case p.Count != nil:
		return countSVG(p)
	case p.Box != nil:
		return boxSVG(p)
	case p.Violin != nil:
		return violinSVG(p)
	case p.Scatter != nil:
		return scatterSVG(p)
	}
	return ""
}

type canvas struct{ b strings.Builder }

func newCanvas(title string) *canvas {
	c := &canvas{}
	c.f(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g" width="%g" height="%g" role="img" aria-label="%s" font-size="11">`,
		chartW, chartH, chartW, chartH, esc(title))
	return c
}

func (c *canvas) f(format string, args ...any) { fmt.Fprintf(&c.b, format, args...) }

func (c *canvas) text(x, y float64, anchor, s string) {
	c.f(`<text x="%.1f" y="%.1f" text-anchor="%s">%s</text>`, x, y, anchor, esc(s))
}

func (c *canvas) done() template.HTML {
	c.b.WriteString("</svg>")
	return template.HTML(c.b.String()) //nolint:gosec // every text node goes through esc
}

func esc(s string) string { return template.HTMLEscapeString(s) }

// linear maps the domain [d0,d1] onto the range [r0,r1].
type linear struct{ d0, d1, r0, r1 float64 }

func (s linear) at(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// ticks returns round values covering [lo,hi], about n of them.
func ticks(lo, hi float64, n int) []float64 {
	if hi <= lo || n < 1 {
		return []float64{lo}
	}
	raw := (hi - lo) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := 10 * mag
	for _, m := range []float64{1, 2, 5} {
		if raw <= m*mag {
			step = m * mag
			break
		}
	}
	var out []float64
	start := math.Ceil(lo/step) * step
	for i := 0; i <= 2*n+2; i++ {
		v := start + float64(i)*step
		if v > hi+step*1e-9 {
			break
		}
		out = append(out, math.Round(v/step)*step)
	}
	return out
}

// pad widens [lo,hi] by 5% each side, or by 1 when empty.
func pad(lo, hi float64) (float64, float64) {
	if hi <= lo {
		return lo - 1, hi + 1
	}
	d := (hi - lo) * 0.05
	return lo - d, hi + d
}

func (c *canvas) axes(y linear, p dashboard.Panel, groups []string) {
	for _, t := range ticks(y.d0, y.d1, 5) {
		yy := y.at(t)
		c.f(`<line x1="%g" y1="%.1f" x2="%g" y2="%.1f" stroke="#e5e5e5"/>`, padL, yy, padL+plotW, yy)
		c.text(padL-6, yy+4, "end", trimFloat(t))
	}
	c.f(`<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#444"/>`, padL, bottom, padL+plotW, bottom)
	c.f(`<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#444"/>`, padL, padT, padL, bottom)
	if groups != nil {
		band := plotW / float64(len(groups))
		for i, g := range groups {
			c.text(padL+band*(float64(i)+0.5), bottom+16, "middle", g)
		}
	}
	c.text(padL+plotW/2, chartH-8, "middle", p.XLabel)
	c.f(`<text transform="translate(14,%.1f) rotate(-90)" text-anchor="middle">%s</text>`, padT+(bottom-padT)/2, esc(p.YLabel))
}

func (c *canvas) legend(title string, names []string) {
	x := padL + plotW + 16
	y := padT + 4
	if title != "" {
		c.f(`<text x="%.1f" y="%.1f" font-weight="bold">%s</text>`, x, y+8, esc(title))
		y += 16
	}
	for i, n := range names {
		c.f(`<rect x="%.1f" y="%.1f" width="10" height="10" fill="%s"/>`, x, y, color(i))
		c.text(x+14, y+9, "start", n)
		y += 16
	}
}

func trimFloat(f float64) string { return fmt.Sprintf("%.4g", f) }

func countSVG(p dashboard.Panel) template.HTML {
	cc := p.Count
	c := newCanvas(p.Title)
	y := linear{0, float64(max(cc.Max(), 1)) * 1.1, bottom, padT}
	c.axes(y, p, cc.Groups)
	band := plotW / float64(len(cc.Groups))
	bw := band * 0.8 / float64(len(cc.Levels))
	for i, g := range cc.Groups {
		x0 := padL + band*float64(i) + band*0.1
		for j, lvl := range cc.Levels {
			n := cc.Counts[i][j]
			top := y.at(float64(n))
			c.f(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s · %s: %d</title></rect>`,
				x0+bw*float64(j), top, bw, bottom-top, color(j), esc(g), esc(lvl), n)
		}
	}
	c.legend(p.Legend, cc.Levels)
	return c.done()
}

func boxSVG(p dashboard.Panel) template.HTML {
	bc := p.Box
	c := newCanvas(p.Title)
	lo, hi := pad(bc.Range())
	y := linear{lo, hi, bottom, padT}
	groups := make([]string, len(bc.Boxes))
	for i, b := range bc.Boxes {
		groups[i] = b.Group
	}
	c.axes(y, p, groups)
	band := plotW / float64(len(groups))
	for i, b := range bc.Boxes {
		c.box(b, padL+band*(float64(i)+0.5), band*0.5, y, color(i))
	}
	return c.done()
}

func (c *canvas) box(b analysis.BoxStats, cx, width float64, y linear, fill string) {
	x0 := cx - width/2
	c.f(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`, cx, y.at(b.LowerWhisker), cx, y.at(b.Q1))
	c.f(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`, cx, y.at(b.Q3), cx, y.at(b.UpperWhisker))
	for _, w := range []float64{b.LowerWhisker, b.UpperWhisker} {
		c.f(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`, cx-width/4, y.at(w), cx+width/4, y.at(w))
	}
	top := y.at(b.Q3)
	c.f(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.8" stroke="#333"><title>%s: n=%d, Q1=%s, mediana=%s, Q3=%s</title></rect>`,
		x0, top, width, math.Max(y.at(b.Q1)-top, 1), fill, esc(b.Group), b.N, trimFloat(b.Q1), trimFloat(b.Median), trimFloat(b.Q3))
	c.f(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#111" stroke-width="2"/>`, x0, y.at(b.Median), x0+width, y.at(b.Median))
	for _, o := range b.Outliers {
		c.f(`<circle cx="%.1f" cy="%.1f" r="2.5" fill="none" stroke="#333"/>`, cx, y.at(o))
	}
}

func violinSVG(p dashboard.Panel) template.HTML {
	vc := p.Violin
	c := newCanvas(p.Title)
	lo, hi := pad(vc.Range())
	y := linear{lo, hi, bottom, padT}
	groups := make([]string, len(vc.Violins))
	maxD := 0.0
	for i, v := range vc.Violins {
		groups[i] = v.Box.Group
		for _, d := range v.Density {
			maxD = math.Max(maxD, d.Density)
		}
	}
	c.axes(y, p, groups)
	band := plotW / float64(len(groups))
	half := band * 0.45
	for i, v := range vc.Violins {
		cx := padL + band*(float64(i)+0.5)
		if len(v.Density) > 0 && maxD > 0 {
			var pts []string
			for _, d := range v.Density {
				pts = append(pts, fmt.Sprintf("%.1f,%.1f", cx+d.Density/maxD*half, y.at(d.Y)))
			}
			for k := len(v.Density) - 1; k >= 0; k-- {
				d := v.Density[k]
				pts = append(pts, fmt.Sprintf("%.1f,%.1f", cx-d.Density/maxD*half, y.at(d.Y)))
			}
			c.f(`<polygon points="%s" fill="%s" fill-opacity="0.6" stroke="%s"/>`, strings.Join(pts, " "), color(i), color(i))
		}
		c.box(v.Box, cx, half*0.25, y, "#fff")
		for k, pt := range v.Points {
			// jitter by index
			jx := cx - half - 8 + float64(k%5)*1.5
			c.f(`<circle cx="%.1f" cy="%.1f" r="1.5" fill="%s" fill-opacity="0.7"/>`, jx, y.at(pt), color(i))
		}
	}
	if p.Legend != "" {
		c.legend(p.Legend, groups)
	}
	return c.done()
}

func scatterSVG(p dashboard.Panel) template.HTML {
	sc := p.Scatter
	c := newCanvas(p.Title)
	x0, x1 := pad(sc.MinX, sc.MaxX)
	y0, y1 := pad(sc.MinY, sc.MaxY)
	x := linear{x0, x1, padL, padL + plotW}
	y := linear{y0, y1, bottom, padT}
	c.axes(y, p, nil)
	for _, t := range ticks(x0, x1, 6) {
		c.text(x.at(t), bottom+16, "middle", trimFloat(t))
	}
	names := make([]string, len(sc.Series))
	for i, s := range sc.Series {
		names[i] = s.Name
		for _, pt := range s.Points {
			c.f(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s" fill-opacity="0.7"><title>%s</title></circle>`,
				x.at(pt.X), y.at(pt.Y), color(i), esc(hoverText(s.Name, pt)))
		}
	}
	c.legend(p.Legend, names)
	return c.done()
}

func hoverText(series string, pt analysis.ScatterPoint) string {
	keys := make([]string, 0, len(pt.Hover))
	for k := range pt.Hover {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{series}
	for _, k := range keys {
		parts = append(parts, k+"="+pt.Hover[k])
	}
	return strings.Join(parts, ", ")
}
