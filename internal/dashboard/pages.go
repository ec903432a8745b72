// Package dashboard turns a prepared dataset and a gender selection into the
// chart views shown on each dashboard page.
package dashboard

import "errors"

// ErrUnknownPage is returned by Render for a page id that is not in the catalog.
var ErrUnknownPage = errors.New("unknown page")

// Page ids.
const (
	PageSleep       = "sono"
	PageCGPA        = "cgpa"
	PageWork        = "trabalho"
	PageInteractive = "interativos"
	PageTable       = "tabela"
)

// Page is one entry of the navigation menu.
type Page struct {
	ID    string `json:"id"`
	Menu  string `json:"menu"`
	Title string `json:"title"`
}

var catalog = []Page{
	{ID: PageSleep, Menu: "Página 1: Depressão e Sono", Title: "Depressão por Gênero e Hábitos de Sono"},
	{ID: PageCGPA, Menu: "Página 2: CGPA e Estresse Financeiro", Title: "CGPA e Estresse Financeiro"},
	{ID: PageWork, Menu: "Página 3: Pressão no Trabalho e Suicídio", Title: "Pressão no Trabalho e Pensamentos Suicidas"},
	{ID: PageInteractive, Menu: "Página 4: Interativos", Title: "Gráficos Interativos"},
	{ID: PageTable, Menu: "Tabela de Dados", Title: "Tabela de Dados Completos"},
}

// Pages returns the page catalog in menu order.
func Pages() []Page { return append([]Page(nil), catalog...) }

// DefaultPage is shown when no page is requested.
func DefaultPage() Page { return catalog[0] }

// Lookup finds a page by id.
func Lookup(id string) (Page, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

// About is the sidebar text shown with every view.
const About = `**Objetivo:**
Este dashboard visa explorar padrões relacionados à depressão entre estudantes, considerando fatores como gênero, sono, CGPA, estresse financeiro e pensamentos suicidas.

**Navegação:**
Use o menu "Selecione a Página" para alternar entre seções com diferentes visualizações.

**Filtros:**
Você pode filtrar os dados por gênero. Isso afeta todos os gráficos mostrados nas páginas, permitindo comparações mais direcionadas.`

// OnlyDepressedLabel captions the toggle on the work pressure page.
const OnlyDepressedLabel = "Mostrar apenas estudantes com depressão"
