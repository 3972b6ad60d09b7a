// Package generator wires loading, transforming and packaging of a card
// list into a single Generate call.
package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/arcanaland/ankideck/internal/apkg"
	"github.com/arcanaland/ankideck/internal/card"
	"github.com/arcanaland/ankideck/internal/deck"
	"github.com/arcanaland/ankideck/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PackageBuilder receives models and notes and emits the package file
type PackageBuilder interface {
	RegisterModel(m *model.Model) error
	AddNote(n deck.Note) error
	WriteToFile(path string) error
}

// BuilderFactory creates the builder for a deck
type BuilderFactory func(d *deck.Deck, logger *zap.Logger) PackageBuilder

// NewPackage is the default BuilderFactory, writing .apkg files
func NewPackage(d *deck.Deck, logger *zap.Logger) PackageBuilder {
	return apkg.New(d, apkg.WithLogger(logger))
}

// Options configures a Generator. Zero values select defaults.
type Options struct {
	Models      *model.Registry
	Rand        *rand.Rand // Deck id source
	Logger      *zap.Logger
	Description string
	NewBuilder  BuilderFactory
}

// Result summarizes a successful run
type Result struct {
	RunID    string
	Output   string
	DeckName string
	DeckID   int64
	Notes    int
	Skipped  []*card.UnknownTypeError
}

// Generator turns card files into packages
type Generator struct {
	models      *model.Registry
	rng         *rand.Rand
	logger      *zap.Logger
	description string
	newBuilder  BuilderFactory
}

// New creates a Generator
func New(opts Options) *Generator {
	g := &Generator{
		models:      opts.Models,
		rng:         opts.Rand,
		logger:      opts.Logger,
		description: opts.Description,
		newBuilder:  opts.NewBuilder,
	}
	if g.models == nil {
		g.models = model.NewRegistry()
	}
	if g.rng == nil {
		g.rng = deck.NewRand(rand.Uint64())
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.newBuilder == nil {
		g.newBuilder = NewPackage
	}
	return g
}

// Generate reads the card list at input and writes a package containing
// one deck named deckName to output
func (g *Generator) Generate(input, output, deckName string) (*Result, error) {
	runID := uuid.NewString()
	logger := g.logger.With(zap.String("run_id", runID))

	records, err := card.Load(input)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded cards", zap.String("input", input), zap.Int("records", len(records)))

	transformed, err := deck.NewTransformer(g.models, logger).Transform(records)
	if err != nil {
		return nil, err
	}

	d := deck.New(deckName, g.rng)
	d.Description = g.description
	logger = logger.With(zap.Int64("deck_id", d.ID))

	b := g.newBuilder(d, logger)
	for _, m := range g.models.All() {
		if err := b.RegisterModel(m); err != nil {
			return nil, fmt.Errorf("error registering model %s: %w", m.Name, err)
		}
	}
	for i, n := range transformed.Notes {
		if err := b.AddNote(n); err != nil {
			return nil, fmt.Errorf("error adding note %d: %w", i+1, err)
		}
	}

	if err := b.WriteToFile(output); err != nil {
		return nil, err
	}

	logger.Info("Generated deck",
		zap.String("deck", deckName),
		zap.String("output", output),
		zap.Int("notes", len(transformed.Notes)),
		zap.Int("skipped", len(transformed.Skipped)))

	return &Result{
		RunID:    runID,
		Output:   output,
		DeckName: deckName,
		DeckID:   d.ID,
		Notes:    len(transformed.Notes),
		Skipped:  transformed.Skipped,
	}, nil
}
