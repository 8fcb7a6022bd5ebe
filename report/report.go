// Package report renders the automation of parameters as text.
package report

import (
	_ "embed"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/autorec"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	// Entry is the view of one parameter given to the template.
	Entry struct {
		Name   string          `json:"name" yaml:"name"`
		Mode   string          `json:"mode" yaml:"mode"`
		Min    float64         `json:"min" yaml:"min"`
		Max    float64         `json:"max" yaml:"max"`
		States int             `json:"states,omitempty" yaml:"states,omitempty"`
		Points []autorec.Point `json:"points" yaml:"points"`
	}

	// Report renders entries with a text template. The template has the
	// sprig functions available.
	Report struct {
		tmpl  *template.Template
		caser cases.Caser
	}
)

//go:embed report.tmpl
var defaultTemplate string

// New parses the default template.
func New() (*Report, error) {
	return Parse(defaultTemplate)
}

// Parse parses text as the report template.
func Parse(text string) (*Report, error) {
	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("report: could not parse template: %w", err)
	}
	return &Report{tmpl: tmpl, caser: cases.Title(language.English)}, nil
}

// Entry collects the report view of p.
func (r *Report) Entry(p *autorec.Parameter) Entry {
	lo, hi := p.ValueRange()
	e := Entry{
		Name:   p.Name(),
		Mode:   r.caser.String(p.Mode().String()),
		Min:    lo,
		Max:    hi,
		States: p.NumStates(),
	}
	p.EditCurve(func(c autorec.Curve) {
		e.Points = autorec.CopyCurve(c).Points
	})
	return e
}

// Entries collects the report views of params.
func (r *Report) Entries(params []*autorec.Parameter) []Entry {
	entries := make([]Entry, len(params))
	for i, p := range params {
		entries[i] = r.Entry(p)
	}
	return entries
}

// Write renders the parameters to w.
func (r *Report) Write(w io.Writer, params []*autorec.Parameter) error {
	if err := r.tmpl.Execute(w, r.Entries(params)); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
