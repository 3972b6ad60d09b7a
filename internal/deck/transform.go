package deck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arcanaland/ankideck/internal/card"
	"github.com/arcanaland/ankideck/internal/model"
	"go.uber.org/zap"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeHTML escapes &, <, >, " and '
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// LeftAlign wraps s in a left-aligned container
func LeftAlign(s string) string {
	return `<div style="text-align:left;">` + s + `</div>`
}

func render(s string) string {
	return LeftAlign(EscapeHTML(s))
}

// Result is the outcome of transforming a record list
type Result struct {
	Notes   []Note
	Skipped []*card.UnknownTypeError
}

// Transformer maps card records to notes bound to the registry's models
type Transformer struct {
	models *model.Registry
	logger *zap.Logger
}

// NewTransformer creates a transformer. A nil logger discards diagnostics.
func NewTransformer(models *model.Registry, logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transformer{models: models, logger: logger}
}

// Transform converts records in order. Records of unknown type are logged
// and skipped; a known record missing a required key aborts the transform.
func (t *Transformer) Transform(records []card.Record) (*Result, error) {
	res := &Result{Notes: make([]Note, 0, len(records))}

	for _, r := range records {
		n, err := t.Note(r)
		if err != nil {
			var uerr *card.UnknownTypeError
			if errors.As(err, &uerr) {
				t.logger.Warn("Skipping card",
					zap.Int("index", uerr.Index),
					zap.Int("line", uerr.Line),
					zap.String("type", string(uerr.Type)),
					zap.Error(err))
				res.Skipped = append(res.Skipped, uerr)
				continue
			}
			return nil, err
		}
		res.Notes = append(res.Notes, n)
	}

	t.logger.Debug("Transformed cards",
		zap.Int("notes", len(res.Notes)),
		zap.Int("skipped", len(res.Skipped)))

	return res, nil
}

// Note converts a single record
func (t *Transformer) Note(r card.Record) (Note, error) {
	if !r.Type.Known() {
		return Note{}, &card.UnknownTypeError{Index: r.Index, Line: r.Line, Type: r.Type}
	}

	m, err := t.models.ForType(r.Type)
	if err != nil {
		return Note{}, fmt.Errorf("card %d: %w", r.Index+1, err)
	}

	values, err := r.Require(card.RequiredKeys(r.Type)...)
	if err != nil {
		return Note{}, err
	}

	n := Note{Model: m, Tags: r.Tags}
	switch r.Type {
	case card.TypeBasic:
		n.Fields = []string{render(values[0]), render(values[1])}
	case card.TypeTypeIn:
		// The back stays raw: {{type:Back}} compares the typed answer
		// against it verbatim.
		n.Fields = []string{render(values[0]), values[1]}
	case card.TypeCloze:
		text := render(values[0])
		n.Fields = []string{text}
		n.GUID = GUIDFor(text)
	}

	return n, nil
}
