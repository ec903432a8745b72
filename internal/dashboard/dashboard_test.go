package dashboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/depdash-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"gender", "depression", "sleep_duration", "study_satisfaction", "academic_pressure", "cgpa", "financial_stress", "work_pressure", "suicidal_thoughts"}

func survey(t *testing.T) *dataset.Dataset {
	t.Helper()
	raw, err := dataset.New("dataset_depressao_estudantes.csv", header, [][]string{
		{"Male", "1", "5", "2", "5", "8.97", "1", "0", "Yes"},
		{"Female", "0", "7", "5", "2", "5.9", "2", "0", "No"},
		{"Male", "0", "8", "4", "3", "7.03", "1", "0", "No"},
		{"Female", "1", "4", "2", "4", "5.59", "5", "5", "Yes"},
		{"Male", "1", "6", "3", "3", "8.13", "4", "2", "No"},
		{"Male", "2", "6", "3", "1", "n/a", "3", "1", "Yes"},
	})
	require.NoError(t, err)
	return dataset.Prepare(raw, true)
}

func TestPagesCatalog(t *testing.T) {
	ids := []string{}
	for _, p := range Pages() {
		ids = append(ids, p.ID)
		assert.NotEmpty(t, p.Title)
	}
	assert.Equal(t, []string{PageSleep, PageCGPA, PageWork, PageInteractive, PageTable}, ids)
	assert.Equal(t, PageSleep, DefaultPage().ID)
	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestRenderUnknownPage(t *testing.T) {
	_, err := Render(survey(t), dataset.NewSelection("Male"), "nope", DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPage))
}

func TestRenderSleepPage(t *testing.T) {
	d := survey(t)
	v, err := Render(d, dataset.AllOf(d.Domain()), PageSleep, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 6, v.Total)
	assert.Equal(t, 6, v.Count)
	assert.Equal(t, 1, v.Unmapped)
	assert.Equal(t, About, v.About)
	require.Len(t, v.Panels, 2)

	c := v.Panels[0].Count
	require.NotNil(t, c)
	assert.Equal(t, []string{"Male", "Female"}, c.Groups)
	assert.Equal(t, []string{dataset.LabelYes, dataset.LabelNo, dataset.LabelUnknown}, c.Levels)
	assert.Equal(t, [][]int{{2, 1, 1}, {1, 1, 0}}, c.Counts)

	box := v.Panels[1].Box
	require.NotNil(t, box)
	var groups []string
	for _, b := range box.Boxes {
		groups = append(groups, b.Group)
	}
	assert.Equal(t, []string{"2", "3", "4", "5"}, groups)
}

func TestRenderFiltersByGender(t *testing.T) {
	d := survey(t)
	v, err := Render(d, dataset.NewSelection("Female"), PageCGPA, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count)
	assert.Equal(t, []string{"Female"}, v.Selected())
	assert.Equal(t, []GenderOption{
		{Value: "Male", Label: "Male", Count: 4},
		{Value: "Female", Label: "Female", Count: 2, Selected: true},
	}, v.Genders)

	sc := v.Panels[0].Scatter
	require.NotNil(t, sc)
	for _, s := range sc.Series {
		for _, p := range s.Points {
			assert.Equal(t, "Female", p.Hover["gender"])
		}
	}
	vi := v.Panels[1].Violin
	require.NotNil(t, vi)
	require.Len(t, vi.Violins, 2)
	assert.Equal(t, "0", vi.Violins[0].Box.Group)
}

func TestRenderEmptySelection(t *testing.T) {
	d := survey(t)
	for _, p := range Pages() {
		v, err := Render(d, dataset.NewSelection(), p.ID, DefaultOptions())
		require.NoError(t, err, p.ID)
		assert.Equal(t, 0, v.Count)
		for _, panel := range v.Panels {
			assert.True(t, panel.Empty(), "%s/%s", p.ID, panel.Title)
		}
		assert.Contains(t, v.Markdown(), "Sem dados para a seleção atual.")
	}
}

func TestRenderOnlyDepressed(t *testing.T) {
	d := survey(t)
	all := dataset.AllOf(d.Domain())

	v, err := Render(d, all, PageWork, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 6, v.Panels[1].Count.Total)
	assert.False(t, v.Panels[1].ToggleOn)

	opt := DefaultOptions()
	opt.OnlyDepressed = true
	v, err = Render(d, all, PageWork, opt)
	require.NoError(t, err)
	c := v.Panels[1].Count
	assert.Equal(t, 3, c.Total)
	assert.True(t, v.Panels[1].ToggleOn)
	assert.Equal(t, OnlyDepressedLabel, v.Panels[1].Toggle)
	// the box panel is not affected by the toggle
	assert.Equal(t, 6, v.Count)
}

func TestRenderInteractiveViolinKeepsPoints(t *testing.T) {
	d := survey(t)
	v, err := Render(d, dataset.AllOf(d.Domain()), PageInteractive, DefaultOptions())
	require.NoError(t, err)
	vi := v.Panels[1].Violin
	require.NotNil(t, vi)
	total := 0
	for _, x := range vi.Violins {
		total += len(x.Points)
	}
	assert.Equal(t, 6, total)
}

func TestRenderTable(t *testing.T) {
	d := survey(t)
	opt := DefaultOptions()
	opt.TableLimit = 2
	v, err := Render(d, dataset.NewSelection("Male"), PageTable, opt)
	require.NoError(t, err)
	tbl := v.Panels[0].Table
	require.NotNil(t, tbl)
	assert.Equal(t, "depression_label", tbl.Columns[len(tbl.Columns)-1])
	assert.Equal(t, 4, tbl.Total)
	assert.Len(t, tbl.Rows, 2)
	assert.True(t, tbl.Truncated)
	assert.Equal(t, dataset.LabelYes, tbl.Rows[0][len(tbl.Columns)-1])
}

func TestRenderIsDeterministic(t *testing.T) {
	d := survey(t)
	sel := dataset.NewSelection("Male", "Female")
	for _, p := range Pages() {
		a, err := Render(d, sel, p.ID, DefaultOptions())
		require.NoError(t, err)
		b, err := Render(d, sel, p.ID, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, a, b, p.ID)
		assert.Equal(t, a.Markdown(), b.Markdown(), p.ID)
	}
}

func TestMarkdown(t *testing.T) {
	d := survey(t)
	v, err := Render(d, dataset.NewSelection("Male"), PageSleep, DefaultOptions())
	require.NoError(t, err)
	md := v.Markdown()
	for _, want := range []string{
		"# Depressão por Gênero e Hábitos de Sono",
		"Registros: 4 de 6",
		"Gênero: Male",
		"## Depressão por Gênero",
		"| Gênero | Sim | Não | unknown |",
		"## Duração do Sono por Satisfação nos Estudos",
		"**Objetivo:**",
	} {
		assert.True(t, strings.Contains(md, want), "missing %q in\n%s", want, md)
	}
}
