package apkg

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arcanaland/ankideck/internal/deck"
	"github.com/arcanaland/ankideck/internal/model"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const (
	collectionEntry = "collection.anki2"
	mediaEntry      = "media"
)

// Package assembles models and notes for one deck and writes them as an
// .apkg file
type Package struct {
	deck   *deck.Deck
	models []*model.Model
	byID   map[int64]*model.Model
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Package
type Option func(*Package)

// WithClock sets the time source used for modification times and note ids
func WithClock(now func() time.Time) Option {
	return func(p *Package) { p.now = now }
}

// WithLogger sets the package logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Package) { p.logger = logger }
}

// New creates a package for d. Notes already in d are written too, but
// their models must be registered before WriteToFile.
func New(d *deck.Deck, opts ...Option) *Package {
	p := &Package{
		deck:   d,
		byID:   make(map[int64]*model.Model),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Deck returns the deck being assembled
func (p *Package) Deck() *deck.Deck {
	return p.deck
}

// RegisterModel adds m to the package. Registering the same model twice is
// a no-op; a different model under an existing id is an error.
func (p *Package) RegisterModel(m *model.Model) error {
	if existing, ok := p.byID[m.ID]; ok {
		if existing.Name != m.Name {
			return fmt.Errorf("model id %d already registered as %q", m.ID, existing.Name)
		}
		return nil
	}
	p.byID[m.ID] = m
	p.models = append(p.models, m)
	return nil
}

// AddNote appends n to the deck after checking it against its model
func (p *Package) AddNote(n deck.Note) error {
	if err := p.checkNote(n); err != nil {
		return err
	}
	p.deck.AddNote(n)
	return nil
}

func (p *Package) checkNote(n deck.Note) error {
	if n.Model == nil {
		return fmt.Errorf("note has no model")
	}
	if _, ok := p.byID[n.Model.ID]; !ok {
		return fmt.Errorf("model %q (%d) is not registered", n.Model.Name, n.Model.ID)
	}
	if len(n.Fields) != len(n.Model.Fields) {
		return fmt.Errorf("model %q expects %d fields, note has %d", n.Model.Name, len(n.Model.Fields), len(n.Fields))
	}
	for _, tag := range n.Tags {
		if !ValidTag(tag) {
			return fmt.Errorf("invalid tag %q: tags must be non-empty and contain no whitespace", tag)
		}
	}
	return nil
}

// WriteToFile writes the package to path. The file is assembled next to
// path and renamed into place, so a failed write leaves nothing behind.
func (p *Package) WriteToFile(path string) error {
	for _, n := range p.deck.Notes {
		if err := p.checkNote(n); err != nil {
			return err
		}
	}

	workDir, err := os.MkdirTemp("", "ankideck-")
	if err != nil {
		return &IOError{Op: "creating work directory for", Path: path, Err: err}
	}
	defer os.RemoveAll(workDir)

	dbPath := filepath.Join(workDir, collectionEntry)
	if err := p.writeCollection(dbPath); err != nil {
		return fmt.Errorf("error building collection: %w", err)
	}

	out, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "creating", Path: path, Err: err}
	}
	tmpPath := out.Name()
	committed := false
	defer func() {
		if !committed {
			out.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := writeArchive(out, dbPath); err != nil {
		return &IOError{Op: "writing", Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &IOError{Op: "writing", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &IOError{Op: "writing", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "renaming", Path: path, Err: err}
	}
	committed = true

	p.logger.Debug("Wrote package",
		zap.String("path", path),
		zap.Int64("deck_id", p.deck.ID),
		zap.Int("notes", len(p.deck.Notes)))

	return nil
}

func writeArchive(w io.Writer, dbPath string) error {
	zw := zip.NewWriter(w)

	db, err := os.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := zw.Create(collectionEntry)
	if err != nil {
		return err
	}
	if _, err := io.Copy(entry, db); err != nil {
		return err
	}

	// No media files are bundled
	media, err := zw.Create(mediaEntry)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(media, "{}"); err != nil {
		return err
	}

	return zw.Close()
}

func (p *Package) writeCollection(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(collectionSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	now := p.now()
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := p.insertCollection(tx, now); err != nil {
		return err
	}
	if err := p.insertNotes(tx, now); err != nil {
		return err
	}

	return tx.Commit()
}

func (p *Package) insertCollection(tx *sql.Tx, now time.Time) error {
	sec := now.Unix()

	curModel := ""
	if len(p.models) > 0 {
		curModel = strconv.FormatInt(p.models[0].ID, 10)
	}
	conf := collectionConf{
		ActiveDecks:  []int64{defaultDeckID},
		AddToCur:     true,
		CollapseTime: 1200,
		CurDeck:      defaultDeckID,
		CurModel:     curModel,
		DueCounts:    true,
		EstTimes:     true,
		NewBury:      true,
		NextPos:      1,
		SortType:     "noteFld",
	}

	models := make(map[string]modelJSON, len(p.models))
	for _, m := range p.models {
		models[strconv.FormatInt(m.ID, 10)] = modelToJSON(m, p.deck.ID, sec)
	}

	decks := map[string]deckJSON{
		strconv.FormatInt(defaultDeckID, 10): {
			Conf: 1, ExtendNew: 10, ExtendRev: 50, ID: defaultDeckID, Mod: sec, Name: "Default",
		},
		strconv.FormatInt(p.deck.ID, 10): {
			Conf: 1, Desc: p.deck.Description, ExtendRev: 50, ID: p.deck.ID, Mod: sec, Name: p.deck.Name, Usn: -1,
		},
	}

	dconf := map[string]deckConf{"1": defaultDeckConf()}

	blobs := make([]string, 0, 4)
	for _, v := range []any{conf, models, decks, dconf} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode collection: %w", err)
		}
		blobs = append(blobs, string(b))
	}

	_, err := tx.Exec(`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		sec, now.UnixMilli(), now.UnixMilli(), schemaVersion, blobs[0], blobs[1], blobs[2], blobs[3])
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	return nil
}

func (p *Package) insertNotes(tx *sql.Tx, now time.Time) error {
	noteStmt, err := tx.Prepare(`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`)
	if err != nil {
		return err
	}
	defer noteStmt.Close()

	cardStmt, err := tx.Prepare(`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		VALUES (?, ?, ?, ?, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`)
	if err != nil {
		return err
	}
	defer cardStmt.Close()

	sec := now.Unix()
	base := now.UnixMilli()
	cardID := base

	for i, n := range p.deck.Notes {
		noteID := base + int64(i)
		guid := n.GUID
		if guid == "" {
			guid = deck.GUIDFor(n.Fields...)
		}

		sortField := n.Fields[0]
		_, err := noteStmt.Exec(noteID, guid, n.Model.ID, sec, joinTags(n.Tags),
			strings.Join(n.Fields, fieldSeparator), PlainText(sortField), checksum(sortField))
		if err != nil {
			return fmt.Errorf("failed to insert note %d: %w", i+1, err)
		}

		for _, ord := range cardOrds(n) {
			if _, err := cardStmt.Exec(cardID, noteID, p.deck.ID, ord, sec, i+1); err != nil {
				return fmt.Errorf("failed to insert card for note %d: %w", i+1, err)
			}
			cardID++
		}
	}

	return nil
}

func modelToJSON(m *model.Model, deckID, mod int64) modelJSON {
	flds := make([]fieldJSON, len(m.Fields))
	for i, name := range m.Fields {
		flds[i] = fieldJSON{Name: name, Ord: i, Font: "Liberation Sans", Media: []string{}, Size: 20}
	}

	tmpls := make([]templateJSON, len(m.Templates))
	for i, t := range m.Templates {
		tmpls[i] = templateJSON{Name: t.Name, Ord: i, QFmt: t.QFmt, AFmt: t.AFmt}
	}

	return modelJSON{
		CSS:       m.CSS,
		DID:       deckID,
		Flds:      flds,
		ID:        strconv.FormatInt(m.ID, 10),
		LatexPost: latexPost,
		LatexPre:  latexPre,
		Mod:       mod,
		Name:      m.Name,
		Req:       requirements(m),
		Tags:      []string{},
		Tmpls:     tmpls,
		Type:      int(m.Kind),
		Usn:       -1,
		Vers:      []any{},
	}
}
