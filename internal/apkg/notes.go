package apkg

import (
	"crypto/sha1"
	"encoding/binary"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/arcanaland/ankideck/internal/deck"
	"github.com/arcanaland/ankideck/internal/model"
)

var (
	htmlTagRe     = regexp.MustCompile(`(?s)<.*?>`)
	clozeRe       = regexp.MustCompile(`(?s)\{\{c(\d+)::.+?\}\}`)
	templateRefRe = regexp.MustCompile(`\{\{([^}#/^]+?)\}\}`)
)

// PlainText returns the plain text of a field, as used for sorting and checksums
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagRe.ReplaceAllString(s, "")))
}

// checksum is the first 32 bits of the SHA-1 of the stripped first field
func checksum(field string) int64 {
	sum := sha1.Sum([]byte(PlainText(field)))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// ClozeNumbers returns the distinct cloze deletion numbers in text, ascending
func ClozeNumbers(text string) []int {
	seen := make(map[int]bool)
	var nums []int
	for _, m := range clozeRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// cardOrds returns the template ordinals a note generates cards for
func cardOrds(n deck.Note) []int {
	if !n.Model.IsCloze() {
		ords := make([]int, len(n.Model.Templates))
		for i := range ords {
			ords[i] = i
		}
		return ords
	}

	seen := make(map[int]bool)
	var ords []int
	for _, f := range n.Fields {
		for _, num := range ClozeNumbers(f) {
			if !seen[num] {
				seen[num] = true
				ords = append(ords, num-1)
			}
		}
	}
	sort.Ints(ords)
	// A cloze note without deletions still gets a card so it stays reachable
	if len(ords) == 0 {
		ords = []int{0}
	}
	return ords
}

// requirements lists, per template, the fields the question side cannot
// render without
func requirements(m *model.Model) [][]any {
	req := make([][]any, 0, len(m.Templates))
	if m.IsCloze() {
		return req
	}

	index := make(map[string]int, len(m.Fields))
	for i, f := range m.Fields {
		index[f] = i
	}

	for ord, t := range m.Templates {
		fields := []int{}
		for _, ref := range templateRefRe.FindAllStringSubmatch(t.QFmt, -1) {
			// Only bare references render field content on their own
			if i, ok := index[strings.TrimSpace(ref[1])]; ok {
				fields = append(fields, i)
			}
		}
		req = append(req, []any{ord, "all", fields})
	}
	return req
}

// ValidTag reports whether tag can be stored on a note
func ValidTag(tag string) bool {
	return tag != "" && !strings.ContainsAny(tag, " \t\r\n")
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}

func splitTags(s string) []string {
	return strings.Fields(s)
}
