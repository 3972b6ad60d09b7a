package validator

import (
	"fmt"
	"strings"

	"github.com/arcanaland/ankideck/internal/apkg"
	"github.com/arcanaland/ankideck/internal/card"
	"github.com/arcanaland/ankideck/internal/deck"
	"github.com/arcanaland/ankideck/internal/model"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
	Cards    int
}

type Validator struct {
	InputPath string
	Results   ValidationResults

	transformer *deck.Transformer
	seenCloze   map[string]int
}

func NewValidator(inputPath string) *Validator {
	return &Validator{
		InputPath:   inputPath,
		Results:     ValidationResults{},
		transformer: deck.NewTransformer(model.NewRegistry(), nil),
		seenCloze:   make(map[string]int),
	}
}

// Validate checks the card file without writing a package. Only an
// unreadable or unparseable file is returned as error; everything else is
// reported in the results.
func (v *Validator) Validate() (ValidationResults, error) {
	records, err := card.Load(v.InputPath)
	if err != nil {
		return v.Results, err
	}

	v.Results.Cards = len(records)
	if len(records) == 0 {
		v.Results.Warnings = append(v.Results.Warnings, "no cards found; the deck will be empty")
	}

	for _, r := range records {
		v.validateRecord(r)
	}

	return v.Results, nil
}

func (v *Validator) validateRecord(r card.Record) {
	if !r.Type.Known() {
		v.warn(r, "unknown card type %q, card will be skipped", string(r.Type))
		return
	}

	if !v.validateKeys(r) {
		return
	}

	v.validateTags(r)

	for _, key := range card.RequiredKeys(r.Type) {
		if value, _ := r.Field(key); strings.TrimSpace(value) == "" {
			v.warn(r, "%s is empty", key)
		}
	}

	switch r.Type {
	case card.TypeTypeIn:
		v.validateTypeIn(r)
	case card.TypeCloze:
		v.validateCloze(r)
	}
}

// validateKeys reports every missing required key
func (v *Validator) validateKeys(r card.Record) bool {
	ok := true
	for _, key := range card.RequiredKeys(r.Type) {
		if _, present := r.Field(key); !present {
			v.fail(r, "%s card is missing required key %q", r.Type, key)
			ok = false
		}
	}
	return ok
}

func (v *Validator) validateTags(r card.Record) {
	for _, tag := range r.Tags {
		if !apkg.ValidTag(tag) {
			v.fail(r, "invalid tag %q: tags must be non-empty and contain no whitespace", tag)
		}
	}
}

// validateTypeIn flags answers that will be compared verbatim but contain
// markup the user never types
func (v *Validator) validateTypeIn(r card.Record) {
	back, _ := r.Field("back")
	if apkg.PlainText(back) != strings.TrimSpace(back) {
		v.warn(r, "back contains HTML; the typed answer is compared against it verbatim")
	}
}

func (v *Validator) validateCloze(r card.Record) {
	text, _ := r.Field("text")
	if len(apkg.ClozeNumbers(text)) == 0 {
		v.warn(r, "cloze text has no {{c1::...}} deletions")
	}

	n, err := v.transformer.Note(r)
	if err != nil {
		v.fail(r, "%v", err)
		return
	}
	if first, dup := v.seenCloze[n.GUID]; dup {
		v.warn(r, "cloze text duplicates card %d; only one note will be kept on import", first+1)
		return
	}
	v.seenCloze[n.GUID] = r.Index
}

func (v *Validator) warn(r card.Record, format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, location(r)+fmt.Sprintf(format, args...))
}

func (v *Validator) fail(r card.Record, format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, location(r)+fmt.Sprintf(format, args...))
}

func location(r card.Record) string {
	return fmt.Sprintf("card %d (line %d): ", r.Index+1, r.Line)
}
