package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/depdash-cli/internal/dashboard"
	"github.com/KaramelBytes/depdash-cli/internal/dataset"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"gender", "depression", "sleep_duration", "study_satisfaction", "academic_pressure", "cgpa", "financial_stress", "work_pressure", "suicidal_thoughts"}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	raw, err := dataset.New("dataset_depressao_estudantes.csv", header, [][]string{
		{"Male", "1", "5", "2", "5", "8.97", "1", "0", "Yes"},
		{"Female", "0", "7", "5", "2", "5.9", "2", "0", "No"},
		{"Male", "0", "8", "4", "3", "7.03", "1", "0", "No"},
		{"Female", "1", "4", "2", "4", "5.59", "5", "5", "Yes"},
		{"", "1", "6", "3", "3", "8.13", "4", "2", "No"},
		{"Male", "<script>", "6", "3", "1", "6.1", "3", "1", "Yes"},
	})
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	opt := Options{TableLimit: 3, Render: dashboard.DefaultOptions()}
	s, err := New(dataset.Prepare(raw, true), logger, opt)
	require.NoError(t, err)
	return s, s.Router()
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestIndexRendersEveryPage(t *testing.T) {
	_, h := newTestServer(t)
	for _, p := range dashboard.Pages() {
		rec := get(t, h, "/?page="+p.ID)
		require.Equal(t, http.StatusOK, rec.Code, p.ID)
		body := rec.Body.String()
		assert.Contains(t, body, p.Title)
		assert.Contains(t, body, "Sobre o Dashboard")
		assert.NotContains(t, body, "<script>", "values must be escaped")
		if p.ID != dashboard.PageTable {
			assert.Contains(t, body, "<svg", p.ID)
		}
	}
}

func TestIndexDefaultsToFirstPageAndAllGenders(t *testing.T) {
	_, h := newTestServer(t)
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "Depressão por Gênero e Hábitos de Sono")
	assert.Contains(t, body, "6 de 6 registros")
	assert.Contains(t, body, dataset.MissingGenderLabel)
}

func TestIndexEmptySelection(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/?page=sono&applied=1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "0 de 6 registros")
	assert.Contains(t, body, "Sem dados para a seleção atual.")
	assert.NotContains(t, body, "<svg")
}

func TestIndexTableIsLimited(t *testing.T) {
	_, h := newTestServer(t)
	body := get(t, h, "/?page=tabela").Body.String()
	assert.Contains(t, body, "3 de 6 linhas exibidas")
}

func TestAPIViewEmptySelection(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/api/view?page=cgpa&applied=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var v dashboard.View
	decode(t, rec, &v)
	assert.Equal(t, 0, v.Count)
	assert.Equal(t, 6, v.Total)
	require.Len(t, v.Panels, 2)
	assert.True(t, v.Panels[0].Scatter.Empty)
	assert.Empty(t, v.Panels[0].Scatter.Series)
	assert.True(t, v.Panels[1].Violin.Empty)
}

func TestAPIViewFilters(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/api/view?page=trabalho&gender=Male&gender=&only_depressed=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var v dashboard.View
	decode(t, rec, &v)
	assert.Equal(t, 4, v.Count)
	assert.True(t, v.OnlyDepressed)
	assert.Equal(t, []string{"Male", ""}, v.Selected())
	assert.Equal(t, 1, v.Unmapped)
	// charts drop blank categories, so only the depressed Male row is counted
	assert.Equal(t, 1, v.Panels[1].Count.Total)
}

func TestAPIViewUnknownPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/view?page=nope", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	var e APIError
	decode(t, rec, &e)
	assert.Equal(t, "PAGE_NOT_FOUND", e.ErrorCode)
	assert.Equal(t, http.StatusNotFound, e.StatusCode)
	assert.Equal(t, "req-123", e.RequestID)
}

func TestAPIViewBadFlag(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/api/view?only_depressed=maybe")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var e APIError
	decode(t, rec, &e)
	assert.Equal(t, "INVALID_PARAMETER", e.ErrorCode)
	assert.NotEmpty(t, e.RequestID)
	assert.Equal(t, e.RequestID, rec.Header().Get(RequestIDHeader))
}

func TestAPIPagesAndGenders(t *testing.T) {
	_, h := newTestServer(t)
	var pages []dashboard.Page
	decode(t, get(t, h, "/api/pages"), &pages)
	assert.Len(t, pages, 5)

	var genders []genderEntry
	decode(t, get(t, h, "/api/genders"), &genders)
	assert.Equal(t, []genderEntry{
		{Value: "Male", Label: "Male", Count: 3},
		{Value: "Female", Label: "Female", Count: 2},
		{Value: "", Label: dataset.MissingGenderLabel, Count: 1},
	}, genders)
}

func TestAPIRecords(t *testing.T) {
	_, h := newTestServer(t)
	var resp recordsResponse
	decode(t, get(t, h, "/api/records?gender=Male&offset=1&limit=5"), &resp)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, "depression_label", resp.Columns[len(resp.Columns)-1])
	assert.Equal(t, dataset.LabelUnknown, resp.Rows[1][len(resp.Columns)-1])

	decode(t, get(t, h, "/api/records?offset=50"), &resp)
	assert.Empty(t, resp.Rows)

	rec := get(t, h, "/api/records?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = get(t, h, "/api/records?offset=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = get(t, h, "/api/records?offset=9223372036854775807&limit=5000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	_, h := newTestServer(t)
	var health map[string]any
	decode(t, get(t, h, "/healthz"), &health)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 6, health["records"])

	get(t, h, "/api/view?page=sono")
	body := get(t, h, "/metrics").Body.String()
	assert.True(t, strings.Contains(body, `depdash_renders_total{page="sono",status="success"}`))
	assert.Contains(t, body, "depdash_dataset_records 6")
}

func TestNotFoundRoute(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var e APIError
	decode(t, rec, &e)
	assert.Equal(t, "NOT_FOUND", e.ErrorCode)
}

func TestRecovererReturnsAPIError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := RequestID(Recoverer(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := get(t, h, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var e APIError
	decode(t, rec, &e)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", e.ErrorCode)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "panic recovered", hook.LastEntry().Message)
}

func TestTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10}, ticks(0, 10, 5))
	assert.Equal(t, []float64{3}, ticks(3, 3, 5))

	// step below the float spacing at 1e17
	got := ticks(1e17, 1e17+8, 5)
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 2*5+3)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
