package model

import (
	"fmt"

	"github.com/arcanaland/ankideck/internal/card"
)

// Kind selects how the consuming application generates cards from a model
type Kind int

const (
	KindStandard Kind = 0
	KindCloze    Kind = 1
)

// Fixed model identifiers. They must never change: re-importing a deck
// built with the same ids updates existing notes instead of duplicating them.
const (
	BasicID  int64 = 1607392319
	TypeInID int64 = 1234567890
	ClozeID  int64 = 99887766
)

// CSS is shared by all three models
const CSS = `.card {
    white-space: pre-wrap;
    font-family: arial;
    font-size: 20px;
    text-align: left;
    color: black;
    background-color: white;
}
`

// Template is a card template of a model
type Template struct {
	Name string
	QFmt string // Question format
	AFmt string // Answer format
}

// Model represents a note type: its fields, templates and styling
type Model struct {
	ID        int64
	Name      string
	Kind      Kind
	Fields    []string
	Templates []Template
	CSS       string
}

// IsCloze reports whether cards of this model are generated per cloze deletion
func (m *Model) IsCloze() bool {
	return m.Kind == KindCloze
}

// Registry holds the fixed set of models
type Registry struct {
	Basic  *Model
	TypeIn *Model
	Cloze  *Model
}

// NewRegistry returns the Basic, Type-in-the-Answer and Cloze models
func NewRegistry() *Registry {
	return &Registry{
		Basic: &Model{
			ID:     BasicID,
			Name:   "Basic Model",
			Kind:   KindStandard,
			Fields: []string{"Front", "Back"},
			Templates: []Template{{
				Name: "Card 1",
				QFmt: "{{Front}}",
				AFmt: "{{FrontSide}}\n\n<hr id=\"answer\">\n{{Back}}",
			}},
			CSS: CSS,
		},
		TypeIn: &Model{
			ID:     TypeInID,
			Name:   "Type-in-the-Answer Model",
			Kind:   KindStandard,
			Fields: []string{"Front", "Back"},
			Templates: []Template{{
				Name: "Type-in-the-Answer Card",
				QFmt: "{{Front}}<br><br>{{type:Back}}",
				AFmt: "{{FrontSide}}\n\n<hr id=\"answer\">\n{{Back}}",
			}},
			CSS: CSS,
		},
		Cloze: &Model{
			ID:     ClozeID,
			Name:   "Cloze Model",
			Kind:   KindCloze,
			Fields: []string{"Text"},
			Templates: []Template{{
				Name: "Cloze Card",
				QFmt: "{{cloze:Text}}",
				AFmt: "{{cloze:Text}}",
			}},
			CSS: CSS,
		},
	}
}

// All returns the models in registration order
func (r *Registry) All() []*Model {
	return []*Model{r.Basic, r.TypeIn, r.Cloze}
}

// ForType returns the model that cards of type t are bound to
func (r *Registry) ForType(t card.Type) (*Model, error) {
	switch t {
	case card.TypeBasic:
		return r.Basic, nil
	case card.TypeTypeIn:
		return r.TypeIn, nil
	case card.TypeCloze:
		return r.Cloze, nil
	}
	return nil, fmt.Errorf("no model for card type %q", t)
}
