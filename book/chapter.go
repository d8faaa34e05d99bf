// Package book exposes the read-only lookup surface the tutor needs from a
// book: hierarchical chapter identifiers, chapter content, and per-chapter
// teaching plans. The content model itself (parsing, tree structure) lives
// outside this module.
package book

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// ChapterNumber is a hierarchical chapter identifier such as "1.2.3.".
// A leading -1 marks a suffix chapter (appendix); suffix chapters order
// after all regular chapters.
type ChapterNumber []int

// ParseChapterNumber parses identifiers of the form "1.2.3." (a trailing dot
// is optional; an empty string is the root/prefix chapter).
func ParseChapterNumber(s string) (ChapterNumber, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChapterNumber{}, nil
	}
	parts := strings.Split(strings.TrimSuffix(s, "."), ".")
	n := make(ChapterNumber, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid chapter number %q: %w", s, err)
		}
		n = append(n, v)
	}
	return n, nil
}

// String renders the canonical "1.2.3." form.
func (n ChapterNumber) String() string {
	var b strings.Builder
	for _, v := range n {
		fmt.Fprintf(&b, "%d.", v)
	}
	return b.String()
}

// Less orders chapter numbers lexicographically, with suffix chapters
// (leading -1) after everything else.
func (n ChapterNumber) Less(other ChapterNumber) bool {
	nSuffix := len(n) > 0 && n[0] == -1
	oSuffix := len(other) > 0 && other[0] == -1
	if nSuffix != oSuffix {
		return oSuffix
	}
	for i := 0; i < len(n) && i < len(other); i++ {
		if n[i] != other[i] {
			return n[i] < other[i]
		}
	}
	return len(n) < len(other)
}

// Equal reports element-wise equality.
func (n ChapterNumber) Equal(other ChapterNumber) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if n[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the canonical string form.
func (n ChapterNumber) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(n.String())), nil
}

// UnmarshalJSON accepts the canonical string form.
func (n *ChapterNumber) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("chapter number must be a string: %w", err)
	}
	parsed, err := ParseChapterNumber(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// JSONSchema declares the wire shape for tool inputs: a dotted string like
// "1.2.3." rather than the underlying int slice.
func (ChapterNumber) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^(-?\d+\.)+$`,
		Description: "A chapter number in the format '1.2.3.' giving the hierarchical position in the book",
	}
}

// ChapterPlan is provider-generated teaching material for one chapter.
type ChapterPlan struct {
	Plan    string `json:"plan"`
	Summary string `json:"summary"`
}

// Chapter is the unit of content handed to the tutor.
type Chapter struct {
	Number  ChapterNumber `json:"number"`
	Name    string        `json:"name"`
	Content string        `json:"content"`
	Plan    ChapterPlan   `json:"plan"`
}
