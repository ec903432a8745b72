package server

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/KaramelBytes/depdash-cli/internal/dashboard"
	"github.com/KaramelBytes/depdash-cli/internal/dataset"
	"github.com/KaramelBytes/depdash-cli/internal/observability"
	"github.com/go-chi/render"
)

// viewQuery is what every page request carries.
type viewQuery struct {
	Page          string
	Selection     dataset.Selection
	OnlyDepressed bool
}

// parseViewQuery reads page, gender, applied and only_depressed. Without applied=1 and
// without any gender parameter the whole domain is selected, so "no genders" stays expressible.
func (s *Server) parseViewQuery(r *http.Request) (viewQuery, error) {
	q := r.URL.Query()
	vq := viewQuery{Page: q.Get("page")}
	if vq.Page == "" {
		vq.Page = dashboard.DefaultPage().ID
	}
	genders, explicit := q["gender"]
	applied, err := flag(q.Get("applied"))
	if err != nil {
		return vq, InvalidParameter("applied", err)
	}
	if explicit || applied {
		vq.Selection = dataset.NewSelection(genders...)
	} else {
		vq.Selection = dataset.AllOf(s.data.Domain())
	}
	if vq.OnlyDepressed, err = flag(q.Get("only_depressed")); err != nil {
		return vq, InvalidParameter("only_depressed", err)
	}
	return vq, nil
}

func flag(v string) (bool, error) {
	switch v {
	case "", "0":
		return false, nil
	case "1", "on":
		return true, nil
	}
	return strconv.ParseBool(v)
}

func (s *Server) render(vq viewQuery, tableLimit int) (*dashboard.View, error) {
	opt := s.opt.Render
	opt.OnlyDepressed = vq.OnlyDepressed
	opt.TableLimit = tableLimit
	start := time.Now()
	v, err := dashboard.Render(s.data, vq.Selection, vq.Page, opt)
	count := 0
	if v != nil {
		count = v.Count
	}
	observability.RecordRender(vq.Page, start, count, err)
	return v, err
}

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	vq, err := s.parseViewQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.render(vq, s.opt.TableLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := pageData{View: v, Pages: dashboard.Pages(), OnlyDepressedLabel: dashboard.OnlyDepressedLabel}
	for _, p := range v.Panels {
		pd := panelData{Panel: p}
		if !p.Empty() && p.Kind != dashboard.KindTable {
			pd.SVG = chartSVG(p)
		}
		data.Panels = append(data.Panels, pd)
	}
	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

type pageData struct {
	View               *dashboard.View
	Pages              []dashboard.Page
	Panels             []panelData
	OnlyDepressedLabel string
}

type panelData struct {
	Panel dashboard.Panel
	SVG   template.HTML
}

// handleView handles GET /api/view
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	vq, err := s.parseViewQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.render(vq, s.opt.TableLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, v)
}

// handlePages handles GET /api/pages
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, dashboard.Pages())
}

type genderEntry struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// handleGenders handles GET /api/genders
func (s *Server) handleGenders(w http.ResponseWriter, r *http.Request) {
	out := []genderEntry{}
	for _, gc := range dataset.CountByGender(s.data) {
		out = append(out, genderEntry{Value: gc.Gender, Label: dataset.Display(gc.Gender), Count: gc.Count})
	}
	render.JSON(w, r, out)
}

type recordsQuery struct {
	Offset int `validate:"gte=0,lte=1000000000"`
	Limit  int `validate:"gte=1,lte=5000"`
}

type recordsResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
	Offset  int        `json:"offset"`
	Limit   int        `json:"limit"`
}

// handleRecords handles GET /api/records: the working set, one page at a time.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	vq, err := s.parseViewQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rq := recordsQuery{Limit: 100}
	for name, dst := range map[string]*int{"offset": &rq.Offset, "limit": &rq.Limit} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		if *dst, err = strconv.Atoi(raw); err != nil {
			s.writeError(w, r, InvalidParameter(name, err))
			return
		}
	}
	if err := s.validate.Struct(rq); err != nil {
		s.writeError(w, r, NewAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error()))
		return
	}
	vq.Page = dashboard.PageTable
	v, err := s.render(vq, rq.Offset+rq.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tbl := v.Panels[0].Table
	rows := [][]string{}
	if rq.Offset < len(tbl.Rows) {
		rows = tbl.Rows[rq.Offset:]
	}
	render.JSON(w, r, recordsResponse{Columns: tbl.Columns, Rows: rows, Total: tbl.Total, Offset: rq.Offset, Limit: rq.Limit})
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":   "ok",
		"dataset":  s.data.Name(),
		"records":  s.data.Len(),
		"unmapped": len(s.data.Unmapped()),
	})
}
