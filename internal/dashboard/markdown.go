package dashboard

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/depdash-cli/internal/analysis"
)

// Markdown renders the view as plain text tables, one section per panel.
func (v *View) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", v.Page.Title))
	b.WriteString(fmt.Sprintf("Dataset: %s\n", v.Dataset))
	b.WriteString(fmt.Sprintf("Registros: %d de %d\n", v.Count, v.Total))
	var sel []string
	for _, g := range v.Genders {
		if g.Selected {
			sel = append(sel, g.Label)
		}
	}
	if len(sel) == 0 {
		b.WriteString("Gênero: (nenhum selecionado)\n")
	} else {
		b.WriteString(fmt.Sprintf("Gênero: %s\n", strings.Join(sel, ", ")))
	}
	if v.Unmapped > 0 {
		b.WriteString(fmt.Sprintf("Aviso: %d registros com depressão fora de {0,1}\n", v.Unmapped))
	}
	for _, p := range v.Panels {
		b.WriteString(fmt.Sprintf("\n## %s\n\n", p.Title))
		if p.Toggle != "" && p.ToggleOn {
			b.WriteString(fmt.Sprintf("(%s)\n\n", p.Toggle))
		}
		if p.Empty() {
			b.WriteString("Sem dados para a seleção atual.\n")
			continue
		}
		switch {
		case p.Count != nil:
			writeCount(&b, p)
		case p.Box != nil:
			writeBoxes(&b, p.XLabel, p.Box.Boxes)
			writeSkipped(&b, p.Box.Skipped)
		case p.Violin != nil:
			boxes := make([]analysis.BoxStats, 0, len(p.Violin.Violins))
			for _, vi := range p.Violin.Violins {
				boxes = append(boxes, vi.Box)
			}
			writeBoxes(&b, p.XLabel, boxes)
			writeSkipped(&b, p.Violin.Skipped)
		case p.Scatter != nil:
			writeScatter(&b, p)
		case p.Table != nil:
			analysis.WriteMarkdownTable(&b, p.Table.Columns, p.Table.Rows)
			if p.Table.Truncated {
				b.WriteString(fmt.Sprintf("\n%d de %d linhas exibidas.\n", len(p.Table.Rows), p.Table.Total))
			}
		}
	}
	b.WriteString("\n---\n\n")
	b.WriteString(v.About)
	b.WriteString("\n")
	return b.String()
}

func writeCount(b *strings.Builder, p Panel) {
	c := p.Count
	header := append([]string{p.XLabel}, c.Levels...)
	rows := make([][]string, len(c.Groups))
	for i, g := range c.Groups {
		row := []string{g}
		for _, n := range c.Counts[i] {
			row = append(row, fmt.Sprint(n))
		}
		rows[i] = row
	}
	analysis.WriteMarkdownTable(b, header, rows)
}

func writeBoxes(b *strings.Builder, xlabel string, boxes []analysis.BoxStats) {
	header := []string{xlabel, "n", "mín", "Q1", "mediana", "Q3", "máx", "outliers"}
	rows := make([][]string, len(boxes))
	for i, s := range boxes {
		rows[i] = []string{
			s.Group,
			fmt.Sprint(s.N),
			num(s.Min), num(s.Q1), num(s.Median), num(s.Q3), num(s.Max),
			fmt.Sprint(len(s.Outliers)),
		}
	}
	analysis.WriteMarkdownTable(b, header, rows)
}

func writeScatter(b *strings.Builder, p Panel) {
	c := p.Scatter
	header := []string{p.Legend, "pontos", p.XLabel + " (mín-máx)", p.YLabel + " (mín-máx)"}
	rows := make([][]string, len(c.Series))
	for i, s := range c.Series {
		minX, maxX, minY, maxY := s.Points[0].X, s.Points[0].X, s.Points[0].Y, s.Points[0].Y
		for _, pt := range s.Points[1:] {
			minX, maxX = min(minX, pt.X), max(maxX, pt.X)
			minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
		}
		rows[i] = []string{s.Name, fmt.Sprint(len(s.Points)), num(minX) + "-" + num(maxX), num(minY) + "-" + num(maxY)}
	}
	analysis.WriteMarkdownTable(b, header, rows)
	writeSkipped(b, c.Skipped)
}

func writeSkipped(b *strings.Builder, n int) {
	if n > 0 {
		b.WriteString(fmt.Sprintf("\n%d registros ignorados (valor não numérico).\n", n))
	}
}

func num(f float64) string { return fmt.Sprintf("%.4g", f) }
