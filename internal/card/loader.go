package card

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses the card list at path
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading card file %s: %w", path, err)
	}

	records, err := Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return records, nil
}

// Parse parses a YAML sequence of card mappings. An empty document yields
// no records. Input holding more than one document is rejected.
func Parse(data []byte) ([]Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, &ParseError{Err: err}
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		return nil, &ParseError{Line: extra.Line, Err: errors.New("input holds more than one YAML document")}
	}

	// A comment-only stream decodes to a document with no content
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return []Record{}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return []Record{}, nil
	}
	if root.Kind != yaml.SequenceNode {
		return nil, &ParseError{Line: root.Line, Err: errors.New("document is not a sequence of cards")}
	}

	records := make([]Record, 0, len(root.Content))
	for i, item := range root.Content {
		line := item.Line
		if item.Kind == yaml.AliasNode && item.Alias != nil {
			item = item.Alias
		}
		if item.Kind != yaml.MappingNode {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("card %d is not a mapping", i+1)}
		}

		var r Record
		if err := item.Decode(&r); err != nil {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("card %d: %w", i+1, err)}
		}
		r.Index = i
		r.Line = line
		records = append(records, r)
	}

	return records, nil
}
