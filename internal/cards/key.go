// Package cards defines the canonical card identity model shared by the
// collection and decklist loaders, the reference database, and the
// reconciliation engine.
package cards

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FaceSeparator divides the face names of multi-faced cards
// (split, transform, adventure, modal double-faced).
const FaceSeparator = " // "

// Key is the canonical identity for a card name. Two Keys are equal iff
// their normalized names and face indices match. Face is 0 for the whole
// card; a positive Face identifies a single face of a multi-faced card
// (1-based, in printed order).
type Key struct {
	Name string
	Face int
}

// String returns the normalized name.
func (k Key) String() string {
	return k.Name
}

// IsMultiFace reports whether the key names more than one card face.
func (k Key) IsMultiFace() bool {
	return strings.Contains(k.Name, FaceSeparator)
}

// Faces returns the normalized face names of the key. Single-faced cards
// return a one-element slice containing the full name.
func (k Key) Faces() []string {
	return strings.Split(k.Name, FaceSeparator)
}

// FaceKey returns the Key for the i-th face (1-based) of a multi-faced
// card. Calling it on a single-faced key returns the key unchanged.
func (k Key) FaceKey(i int) Key {
	faces := k.Faces()
	if len(faces) == 1 {
		return k
	}
	if i < 1 || i > len(faces) {
		return k
	}
	return Key{Name: faces[i-1], Face: i}
}

// stripMarks removes combining diacritical marks after canonical
// decomposition, so "Lórien" and "Lorien" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// apostrophes maps typographic apostrophe variants to the plain ASCII form.
var apostrophes = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"ʼ", "'", // modifier letter apostrophe
	"´", "'", // acute accent
	"`", "'",
)

// Normalize canonicalizes a raw card name into a Key. It is deterministic
// and total: input that cannot be fully normalized degrades to a
// best-effort lowercased string instead of failing. All name equality in
// this module goes through Normalize.
//
// Rules applied, in order: face splitting on "//", whitespace trimming and
// collapsing, diacritic stripping, apostrophe canonicalization, comma and
// period removal, case folding.
func Normalize(raw string) Key {
	faces := splitRawFaces(raw)
	for i, f := range faces {
		faces[i] = normalizeFace(f)
	}
	return Key{Name: strings.Join(faces, FaceSeparator)}
}

// splitRawFaces splits a raw name on the face divider, tolerating missing
// surrounding spaces ("Fire//Ice").
func splitRawFaces(raw string) []string {
	if !strings.Contains(raw, "//") {
		return []string{raw}
	}
	parts := strings.Split(raw, "//")
	faces := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			faces = append(faces, p)
		}
	}
	if len(faces) == 0 {
		return []string{strings.TrimSpace(raw)}
	}
	return faces
}

func normalizeFace(face string) string {
	s := strings.TrimSpace(face)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = apostrophes.Replace(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.':
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}
