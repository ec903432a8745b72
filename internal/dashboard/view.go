package dashboard

import (
	"fmt"

	"github.com/KaramelBytes/depdash-cli/internal/analysis"
	"github.com/KaramelBytes/depdash-cli/internal/dataset"
)

// PanelKind identifies the chart type of a panel.
type PanelKind string

const (
	KindCount   PanelKind = "count"
	KindBox     PanelKind = "box"
	KindViolin  PanelKind = "violin"
	KindScatter PanelKind = "scatter"
	KindTable   PanelKind = "table"
)

// Panel is one chart (or the table) of a page. Exactly one of the chart fields is set.
type Panel struct {
	Kind   PanelKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`
	Legend string    `json:"legend,omitempty"`
	// Toggle is the caption of a panel-level option, when the panel has one.
	Toggle   string `json:"toggle,omitempty"`
	ToggleOn bool   `json:"toggle_on,omitempty"`

	Count   *analysis.CountChart   `json:"count,omitempty"`
	Box     *analysis.BoxChart     `json:"box,omitempty"`
	Violin  *analysis.ViolinChart  `json:"violin,omitempty"`
	Scatter *analysis.ScatterChart `json:"scatter,omitempty"`
	Table   *Table                 `json:"table,omitempty"`
}

// Empty reports whether the panel has nothing to draw.
func (p Panel) Empty() bool {
	switch {
	case p.Count != nil:
		return p.Count.Empty
	case p.Box != nil:
		return p.Box.Empty
	case p.Violin != nil:
		return p.Violin.Empty
	case p.Scatter != nil:
		return p.Scatter.Empty
	case p.Table != nil:
		return len(p.Table.Rows) == 0
	}
	return true
}

// Table is the working set laid out as rows.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	// Total is the working set size; Rows may be shorter when a limit applies.
	Total     int  `json:"total"`
	Truncated bool `json:"truncated"`
}

// GenderOption is one entry of the gender filter.
type GenderOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// View is everything needed to draw one page for one selection.
type View struct {
	Page          Page           `json:"page"`
	About         string         `json:"about"`
	Dataset       string         `json:"dataset"`
	Total         int            `json:"total"`
	Count         int            `json:"count"`
	Genders       []GenderOption `json:"genders"`
	OnlyDepressed bool           `json:"only_depressed"`
	Unmapped      int            `json:"unmapped"`
	Panels        []Panel        `json:"panels"`
}

// Selected returns the values of the selected gender options, in domain order.
func (v *View) Selected() []string {
	var out []string
	for _, g := range v.Genders {
		if g.Selected {
			out = append(out, g.Value)
		}
	}
	return out
}

// Options tweaks a render.
type Options struct {
	// OnlyDepressed restricts the suicidal thoughts count to depressed students.
	OnlyDepressed bool
	// TableLimit caps the number of table rows; 0 means no cap.
	TableLimit int
	Analysis   analysis.Options
	Violin     analysis.ViolinOptions
}

// DefaultOptions returns the render options used by the CLI and the server.
func DefaultOptions() Options {
	return Options{Analysis: analysis.DefaultOptions(), Violin: analysis.DefaultViolinOptions()}
}

// Render builds the view of page for the records of d whose gender is in sel.
// It has no side effects and the same inputs always give the same view.
func Render(d *dataset.Dataset, sel dataset.Selection, page string, opt Options) (*View, error) {
	p, ok := Lookup(page)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	ws := dataset.FilterByGender(d, sel)
	v := &View{
		Page:          p,
		About:         About,
		Dataset:       d.Name(),
		Total:         d.Len(),
		Count:         ws.Len(),
		OnlyDepressed: opt.OnlyDepressed,
		Unmapped:      len(ws.Unmapped()),
	}
	for _, gc := range dataset.CountByGender(d) {
		v.Genders = append(v.Genders, GenderOption{
			Value:    gc.Gender,
			Label:    dataset.Display(gc.Gender),
			Count:    gc.Count,
			Selected: sel.Has(gc.Gender),
		})
	}

	switch p.ID {
	case PageSleep:
		v.Panels = []Panel{genderByDepression(ws), sleepBySatisfaction(ws, opt)}
	case PageCGPA:
		v.Panels = []Panel{cgpaScatter(ws, opt, "CGPA vs Pressão Acadêmica"), financialStress(ws, opt)}
	case PageWork:
		v.Panels = []Panel{workPressureBox(ws, opt), suicidalByGender(ws, opt)}
	case PageInteractive:
		v.Panels = []Panel{cgpaScatter(ws, opt, "CGPA vs Pressão Acadêmica (Interativo)"), workPressureViolin(ws, opt)}
	case PageTable:
		v.Panels = []Panel{table(ws, opt)}
	}
	return v, nil
}

func genderByDepression(ws *dataset.Dataset) Panel {
	c := analysis.Count(ws, "gender", "depression_label")
	return Panel{Kind: KindCount, Title: "Depressão por Gênero", XLabel: "Gênero", YLabel: "Contagem", Legend: "Depressão", Count: &c}
}

func sleepBySatisfaction(ws *dataset.Dataset, opt Options) Panel {
	c := analysis.Box(ws, "study_satisfaction", "sleep_duration", opt.Analysis)
	return Panel{Kind: KindBox, Title: "Duração do Sono por Satisfação nos Estudos", XLabel: "Satisfação com os Estudos", YLabel: "Duração do Sono", Box: &c}
}

func cgpaScatter(ws *dataset.Dataset, opt Options, title string) Panel {
	c := analysis.Scatter(ws, "academic_pressure", "cgpa", "depression_label", []string{"gender", "academic_pressure", "cgpa"}, opt.Analysis)
	return Panel{Kind: KindScatter, Title: title, XLabel: "Pressão Acadêmica", YLabel: "CGPA", Legend: "Depressão", Scatter: &c}
}

func financialStress(ws *dataset.Dataset, opt Options) Panel {
	c := analysis.ViolinPlot(ws, "depression", "financial_stress", opt.Analysis, opt.Violin)
	return Panel{Kind: KindViolin, Title: "Estresse Financeiro por Depressão", XLabel: "Depressão", YLabel: "Estresse Financeiro", Violin: &c}
}

func workPressureBox(ws *dataset.Dataset, opt Options) Panel {
	c := analysis.Box(ws, "depression_label", "work_pressure", opt.Analysis)
	return Panel{Kind: KindBox, Title: "Pressão no Trabalho vs Depressão", XLabel: "Depressão", YLabel: "Pressão no Trabalho", Box: &c}
}

func suicidalByGender(ws *dataset.Dataset, opt Options) Panel {
	src := ws
	if opt.OnlyDepressed {
		src = dataset.Where(ws, func(r dataset.Record) bool { return r.DepressionLabel == dataset.LabelYes })
	}
	c := analysis.Count(src, "gender", "suicidal_thoughts")
	return Panel{
		Kind:     KindCount,
		Title:    "Pensamentos Suicidas por Gênero",
		XLabel:   "Gênero",
		YLabel:   "Contagem",
		Legend:   "Pensamentos Suicidas",
		Toggle:   OnlyDepressedLabel,
		ToggleOn: opt.OnlyDepressed,
		Count:    &c,
	}
}

func workPressureViolin(ws *dataset.Dataset, opt Options) Panel {
	vo := opt.Violin
	vo.Points = true
	c := analysis.ViolinPlot(ws, "depression_label", "work_pressure", opt.Analysis, vo)
	return Panel{Kind: KindViolin, Title: "Distribuição da Pressão no Trabalho (Interativo)", XLabel: "Depressão", YLabel: "Pressão no Trabalho", Legend: "Depressão", Violin: &c}
}

func table(ws *dataset.Dataset, opt Options) Panel {
	t := &Table{Columns: append(ws.Columns(), "depression_label"), Total: ws.Len(), Rows: [][]string{}}
	ws.Each(func(r dataset.Record) {
		if opt.TableLimit > 0 && len(t.Rows) >= opt.TableLimit {
			t.Truncated = true
			return
		}
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = ws.Value(r, col)
		}
		t.Rows = append(t.Rows, row)
	})
	return Panel{Kind: KindTable, Title: "Tabela de Dados Completos", Table: t}
}
