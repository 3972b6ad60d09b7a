package card

// Type is the card type discriminator of an input record
type Type string

const (
	TypeBasic  Type = "basic"
	TypeTypeIn Type = "type-in-the-answer"
	TypeCloze  Type = "cloze"
)

// Known reports whether t is one of the supported card types
func (t Type) Known() bool {
	switch t {
	case TypeBasic, TypeTypeIn, TypeCloze:
		return true
	}
	return false
}

// Record represents one flashcard definition read from the input document
type Record struct {
	Type  Type     `yaml:"type"`  // basic, type-in-the-answer or cloze
	Front *string  `yaml:"front"` // For basic and type-in-the-answer
	Back  *string  `yaml:"back"`  // For basic and type-in-the-answer
	Text  *string  `yaml:"text"`  // For cloze
	Tags  []string `yaml:"tags"`  // Optional note tags

	Index int `yaml:"-"` // Position in the input sequence (0-based)
	Line  int `yaml:"-"` // Source line of the mapping (1-based)
}

// RequiredKeys returns the keys a record of type t must carry
func RequiredKeys(t Type) []string {
	switch t {
	case TypeBasic, TypeTypeIn:
		return []string{"front", "back"}
	case TypeCloze:
		return []string{"text"}
	}
	return nil
}

// Field returns the value of a text key and whether it was present
func (r *Record) Field(key string) (string, bool) {
	var v *string
	switch key {
	case "front":
		v = r.Front
	case "back":
		v = r.Back
	case "text":
		v = r.Text
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// Require returns the values of keys in order, or a KeyMissingError for
// the first key that is absent
func (r *Record) Require(keys ...string) ([]string, error) {
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		v, ok := r.Field(key)
		if !ok {
			return nil, &KeyMissingError{Index: r.Index, Line: r.Line, Type: r.Type, Key: key}
		}
		values = append(values, v)
	}
	return values, nil
}
