package deck

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strings"

	"github.com/arcanaland/ankideck/internal/model"
)

// Deck ids are drawn from [MinID, MaxID). Ids below MinID collide with
// the consuming application's own low-valued ids (the default deck is 1).
const (
	MinID int64 = 1 << 30
	MaxID int64 = 1 << 31
)

// Note is a card instance: a model bound to field values
type Note struct {
	Model  *model.Model
	Fields []string
	GUID   string // Empty means derived from Fields when written
	Tags   []string
}

// Deck represents a named deck of notes
type Deck struct {
	ID          int64
	Name        string
	Description string
	Notes       []Note
}

// New creates an empty deck with an id drawn from rng
func New(name string, rng *rand.Rand) *Deck {
	return &Deck{
		ID:   NewID(rng),
		Name: name,
	}
}

// NewID draws a deck id from rng
func NewID(rng *rand.Rand) int64 {
	return MinID + rng.Int64N(MaxID-MinID)
}

// NewRand returns a PCG source seeded with seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AddNote appends n to the deck
func (d *Deck) AddNote(n Note) {
	d.Notes = append(d.Notes, n)
}

const base91Table = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&()*+,-./:;<=>?@[]^_`{|}~"

// GUIDFor derives a note GUID from content. Identical values always
// produce the same GUID, so regenerating a deck updates notes in place.
func GUIDFor(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "__")))
	return base91(binary.BigEndian.Uint64(sum[:8]))
}

func base91(n uint64) string {
	if n == 0 {
		return ""
	}
	var buf []byte
	for n > 0 {
		buf = append(buf, base91Table[n%91])
		n /= 91
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
