package results

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/backend"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger routes export failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer holds the most recently rendered result table. Every Render
// replaces the previous header and body.
type Renderer struct {
	mu     sync.RWMutex
	table  Table
	markup string
	logger *zap.Logger
}

// NewRenderer returns a renderer with an empty table.
func NewRenderer(options ...Option) *Renderer {
	r := &Renderer{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.table = Build(nil, nil)
	r.markup = r.table.HTML()
	return r
}

// Render rebuilds the table from fields and rows and returns its markup.
func (r *Renderer) Render(fields []string, rows []map[string]any) string {
	table := Build(fields, rows)
	markup := table.HTML()

	r.mu.Lock()
	r.table = table
	r.markup = markup
	r.mu.Unlock()
	return markup
}

// RenderSet is Render over a decoded backend response.
func (r *Renderer) RenderSet(set backend.ResultSet) string {
	return r.Render(set.FieldNames(), set.Rows)
}

// Table returns the current table.
func (r *Renderer) Table() Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// HTML returns the current table markup.
func (r *Renderer) HTML() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.markup
}

// TSV serialises the currently rendered table.
func (r *Renderer) TSV() (string, error) {
	return TSVFromHTML(r.HTML())
}

// ExportToClipboard copies the TSV of the current table and acknowledges the
// outcome through notifier before returning.
func (r *Renderer) ExportToClipboard(cb Clipboard, notifier Notifier) error {
	err := r.copyTo(cb)
	if err != nil {
		r.logger.Error("copy to clipboard failed", zap.Error(err))
		if notifier != nil {
			notifier.Notify(false, MessageCopyFailed)
		}
		return err
	}
	if notifier != nil {
		notifier.Notify(true, MessageCopied)
	}
	return nil
}

func (r *Renderer) copyTo(cb Clipboard) error {
	if cb == nil {
		return fmt.Errorf("results: clipboard is nil")
	}
	text, err := r.TSV()
	if err != nil {
		return err
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("results: write clipboard: %w", err)
	}
	return nil
}

// WriteXLSX writes the current table as a workbook.
func (r *Renderer) WriteXLSX(w io.Writer) error {
	return r.Table().WriteXLSX(w)
}
