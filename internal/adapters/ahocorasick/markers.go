// Package ahocorasick finds task markers (TODO, FIXME and friends) in comment
// text with a single Aho-Corasick pass over the input, using the
// petar-dambovaliev/aho-corasick library.
package ahocorasick

import (
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// MarkerMatch is one marker occurrence with byte offsets into the scanned text.
type MarkerMatch struct {
	Marker string
	Start  int // inclusive
	End    int // exclusive
}

// MarkerScanner matches a fixed marker set case-insensitively.
type MarkerScanner struct {
	automaton aho.AhoCorasick
	markers   []string
}

// NewMarkerScanner compiles the automaton. Markers are upper-cased.
func NewMarkerScanner(markers []string) *MarkerScanner {
	m := make([]string, len(markers))
	for i, k := range markers {
		m[i] = strings.ToUpper(k)
	}
	s := &MarkerScanner{markers: m}
	if len(m) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			DFA: true,
		})
		s.automaton = builder.Build(m)
	}
	return s
}

// Scan returns every marker in text in order of appearance. A hit only
// counts when it is not glued to surrounding letters, so "TODOS" or
// "autodoc" do not match "TODO".
func (s *MarkerScanner) Scan(text string) []MarkerMatch {
	if len(s.markers) == 0 {
		return nil
	}
	upper := strings.ToUpper(text)
	matches := s.automaton.FindAll(upper)
	var out []MarkerMatch
	for _, m := range matches {
		if !standalone(upper, m.Start(), m.End()) {
			continue
		}
		out = append(out, MarkerMatch{
			Marker: s.markers[m.Pattern()],
			Start:  m.Start(),
			End:    m.End(),
		})
	}
	return out
}

// First returns the earliest marker in text.
func (s *MarkerScanner) First(text string) (string, bool) {
	found := s.Scan(text)
	if len(found) == 0 {
		return "", false
	}
	return found[0].Marker, true
}

// Markers returns the compiled marker set.
func (s *MarkerScanner) Markers() []string {
	return s.markers
}

func standalone(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
