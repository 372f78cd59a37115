package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/cerebro/internal/fetch"
)

// fakePage serves markup from pages keyed by the last navigated URL. A URL
// listed in statuses answers with that document status.
type fakePage struct {
	pages       map[string]string
	statuses    map[string]int
	navigateErr error
	waitErr     error
	current     string
	closed      bool
	tabs        []*fakePage
	waited      []string
}

func (p *fakePage) Navigate(_ context.Context, url string, _ time.Duration) error {
	if p.navigateErr != nil {
		return p.navigateErr
	}
	p.current = url
	return fetch.CheckStatus(url, p.statuses[url])
}

func (p *fakePage) WaitForSelector(_ context.Context, selector string, _ time.Duration) error {
	p.waited = append(p.waited, selector)
	return p.waitErr
}

func (p *fakePage) HTML(context.Context) (string, error) {
	html, ok := p.pages[p.current]
	if !ok {
		return "", fmt.Errorf("no page for %s", p.current)
	}
	return html, nil
}

func (p *fakePage) NewPage(context.Context) (fetch.Page, error) {
	tab := &fakePage{pages: p.pages, statuses: p.statuses}
	p.tabs = append(p.tabs, tab)
	return tab, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeRenderer struct {
	page    *fakePage
	openErr error
	opened  int
}

func (r *fakeRenderer) Open(context.Context) (fetch.Page, error) {
	r.opened++
	if r.openErr != nil {
		return nil, r.openErr
	}
	return r.page, nil
}

// fakeFetcher serves detail pages from memory.
type fakeFetcher struct {
	pages  map[string]string
	errs   map[string]error
	panics map[string]bool
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Result, error) {
	f.calls = append(f.calls, url)
	if f.panics[url] {
		panic("fetcher exploded")
	}
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return &fetch.Result{URL: url, StatusCode: 404}, &fetch.Error{URL: url, Message: "HTTP status 404", StatusCode: 404}
	}
	return &fetch.Result{URL: url, HTML: html, StatusCode: 200}, nil
}

var errNetwork = errors.New("connection reset by peer")

func fixedClock() Clock {
	t := time.Date(2024, 5, 17, 12, 30, 0, 0, time.FixedZone("CLT", -4*3600))
	return func() time.Time { return t }
}

const saboresURL = "https://sitiospublicos.bancochile.cl/personas/beneficios/sabores"

const saboresListing = `<html><body><div class="grid">
<a class="card group border-gray-background" href="/personas/beneficios/sabores/detalle/1">
  <p>Restaurante   Uno</p><p>20% dcto</p><p>Lunes a jueves</p>
</a>
<a class="card group border-gray-background">
  <p>Sin link</p><p>10% dcto</p>
</a>
<a class="card group border-gray-background" href="https://otro.cl/d/3">
  <p> Café Tres </p><p>2x1</p>
</a>
<a class="card group border-gray-background" href="/personas/beneficios/sabores/detalle/4"></a>
</div></body></html>`

const saboresDetail1 = `<html><body>
<h1> Restaurante Uno Providencia </h1>
<div class="vigencia">Válido hasta el 31/12/2024</div>
<ul class="condiciones">
  <li>Pago con tarjeta de crédito</li>
  <li>   </li>
  <li>No acumulable   con otras promociones</li>
</ul>
<div class="local"><span class="direccion">Av. Providencia 1234</span><span class="comuna">Providencia</span></div>
<div class="local"><span class="direccion">Alonso de Córdova 5678</span></div>
<div class="local"><span class="comuna">Las Condes</span></div>
<div class="local"></div>
</body></html>`
