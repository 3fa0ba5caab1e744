// Package render fills text templates, typically LaTeX sources, with a
// report document.
//
// Templates use ((* *)) for control blocks, ((( ))) for values and ((= =))
// for comments; the contents of each tag follow text/template syntax:
//
//	((* range .Run.SamplesInOrder *))
//	\item ((( .Name ))): ((( .RNAMetrics.pct_exonic_bases | float2nice_pct )))\%
//	((* end *))
//
// Every file next to the main template with the same extension is loaded
// too and can be included by base name with ((* template "name.tex" . *)).
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/biopet/gentrap-report/internal/report"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Options configure a Renderer.
type Options struct {
	// Locale selects digit grouping and decimal marks of the number
	// filters. The zero value means American English.
	Locale language.Tag

	// DefaultValue is printed for absent numbers. Empty means DefaultValue.
	DefaultValue string

	Logger *zap.Logger
}

// Renderer loads and executes templates.
type Renderer struct {
	filters *Filters
	logger  *zap.Logger
}

// New returns a Renderer configured by opts.
func New(opts Options) *Renderer {
	if opts.Locale == language.Und {
		opts.Locale = language.AmericanEnglish
	}
	if opts.DefaultValue == "" {
		opts.DefaultValue = DefaultValue
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Renderer{
		filters: NewFilters(opts.Locale, opts.DefaultValue),
		logger:  opts.Logger,
	}
}

// Filters returns the number filters used by r.
func (r *Renderer) Filters() *Filters {
	return r.filters
}

func (r *Renderer) newTemplate(name string) *template.Template {
	return template.New(name).Delims(actionStart, actionEnd).Funcs(r.filters.FuncMap())
}

// Parse translates and parses src as a template called name.
func (r *Renderer) Parse(name, src string) (*template.Template, error) {
	return parseInto(r.newTemplate(name), name, src)
}

func parseInto(t *template.Template, name, src string) (*template.Template, error) {
	translated, err := translate(name, src)
	if err != nil {
		return nil, err
	}
	parsed, err := t.Parse(translated)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return parsed, nil
}

// Load parses the template at path together with its siblings. The returned
// template is named after the base name of path.
func (r *Renderer) Load(path string) (*template.Template, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving template path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	main, err := r.Parse(filepath.Base(abs), string(src))
	if err != nil {
		return nil, err
	}

	siblings, err := siblingTemplates(abs)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		data, err := os.ReadFile(sib)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		name := filepath.Base(sib)
		if _, err := parseInto(main.New(name), name, string(data)); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("loaded template",
		zap.String("path", abs),
		zap.Int("siblings", len(siblings)))
	return main, nil
}

// siblingTemplates lists the files in the directory of path sharing its
// extension, excluding path itself, sorted by name.
func siblingTemplates(path string) ([]string, error) {
	dir, ext := filepath.Dir(path), filepath.Ext(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing template directory: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if p == path {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Execute renders t with data into w. The output always ends with exactly
// the newlines the template produced, plus one if it produced none.
func Execute(w io.Writer, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering template %s: %w", t.Name(), err)
	}
	if b := buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
	_, err := buf.WriteTo(w)
	return err
}

// Render loads the template at path and renders doc into w. When
// doc.DocumentPath is empty it is set to path.
func (r *Renderer) Render(w io.Writer, path string, doc *report.Document) error {
	t, err := r.Load(path)
	if err != nil {
		return err
	}
	if doc.DocumentPath == "" {
		doc.DocumentPath = path
	}
	return Execute(w, t, doc)
}
