package apkg

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DeckInfo describes a deck stored in a package
type DeckInfo struct {
	ID          int64
	Name        string
	Description string
}

// ModelInfo describes a model stored in a package
type ModelInfo struct {
	ID     int64
	Name   string
	Cloze  bool
	Fields []string
	CSS    string
}

// CardInfo describes a generated card
type CardInfo struct {
	ID     int64
	DeckID int64
	Ord    int
}

// NoteInfo describes a note and its cards
type NoteInfo struct {
	ID      int64
	ModelID int64
	GUID    string
	Fields  []string
	Tags    []string
	Cards   []CardInfo
}

// Contents is what a package holds. The collection's built-in default
// deck is omitted from Decks.
type Contents struct {
	Decks  []DeckInfo
	Models []ModelInfo
	Notes  []NoteInfo
}

// Model returns the model with the given id
func (c *Contents) Model(id int64) (ModelInfo, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// Open reads the package at path
func Open(path string) (*Contents, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &IOError{Op: "opening", Path: path, Err: err}
	}
	defer zr.Close()

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == collectionEntry {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%s: no %s in package", path, collectionEntry)
	}

	workDir, err := os.MkdirTemp("", "ankideck-read-")
	if err != nil {
		return nil, &IOError{Op: "creating work directory for", Path: path, Err: err}
	}
	defer os.RemoveAll(workDir)

	dbPath := filepath.Join(workDir, collectionEntry)
	if err := extract(entry, dbPath); err != nil {
		return nil, &IOError{Op: "extracting", Path: path, Err: err}
	}

	return readCollection(dbPath)
}

func extract(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readCollection(dbPath string) (*Contents, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var modelsBlob, decksBlob string
	err = db.QueryRow(`SELECT models, decks FROM col LIMIT 1`).Scan(&modelsBlob, &decksBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection has no col row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	c := &Contents{}

	var models map[string]modelJSON
	if err := json.Unmarshal([]byte(modelsBlob), &models); err != nil {
		return nil, fmt.Errorf("failed to decode models: %w", err)
	}
	for _, m := range models {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid model id %q: %w", m.ID, err)
		}
		info := ModelInfo{ID: id, Name: m.Name, Cloze: m.Type == 1, CSS: m.CSS}
		for _, f := range m.Flds {
			info.Fields = append(info.Fields, f.Name)
		}
		c.Models = append(c.Models, info)
	}
	sort.Slice(c.Models, func(i, j int) bool { return c.Models[i].ID < c.Models[j].ID })

	var decks map[string]deckJSON
	if err := json.Unmarshal([]byte(decksBlob), &decks); err != nil {
		return nil, fmt.Errorf("failed to decode decks: %w", err)
	}
	for _, d := range decks {
		if d.ID == defaultDeckID {
			continue
		}
		c.Decks = append(c.Decks, DeckInfo{ID: d.ID, Name: d.Name, Description: d.Desc})
	}
	sort.Slice(c.Decks, func(i, j int) bool { return c.Decks[i].ID < c.Decks[j].ID })

	notes, err := readNotes(db)
	if err != nil {
		return nil, err
	}
	c.Notes = notes

	return c, nil
}

func readNotes(db *sql.DB) ([]NoteInfo, error) {
	rows, err := db.Query(`SELECT id, mid, guid, tags, flds FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []NoteInfo
	index := make(map[int64]int)
	for rows.Next() {
		var n NoteInfo
		var tags, flds string
		if err := rows.Scan(&n.ID, &n.ModelID, &n.GUID, &tags, &flds); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.Tags = splitTags(tags)
		n.Fields = strings.Split(flds, fieldSeparator)
		index[n.ID] = len(notes)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cards, err := db.Query(`SELECT id, nid, did, ord FROM cards ORDER BY nid, ord`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer cards.Close()

	for cards.Next() {
		var ci CardInfo
		var nid int64
		if err := cards.Scan(&ci.ID, &nid, &ci.DeckID, &ci.Ord); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if i, ok := index[nid]; ok {
			notes[i].Cards = append(notes[i].Cards, ci)
		}
	}
	return notes, cards.Err()
}
