package ingest

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Canonical field tags.
const (
	TagRoute       = "route"
	TagPrice       = "price"
	TagOrigin      = "origin"
	TagDestination = "destination"
	TagDiscounted  = "discounted"
	TagKm          = "km"
	TagUnit        = "unit"
)

// IsCanonical reports whether key is one of the canonical field tags.
func IsCanonical(key string) bool {
	switch key {
	case TagRoute, TagPrice, TagOrigin, TagDestination, TagDiscounted, TagKm, TagUnit:
		return true
	}
	return false
}

// SynonymRule binds a canonical tag to the header substrings that select it.
type SynonymRule struct {
	Tag      string   `yaml:"tag"`
	Synonyms []string `yaml:"synonyms"`
}

// SynonymTable is evaluated in order; the first rule with a matching synonym wins.
type SynonymTable []SynonymRule

// DefaultSynonyms is the built-in header table. Order matters: a header containing both
// "fiyat" and "kalkış" is a price column.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		{Tag: TagRoute, Synonyms: []string{"route", "güzergah", "guzergah", "kalkış-varış", "kalkis-varis", "kalkış - varış"}},
		{Tag: TagPrice, Synonyms: []string{"price", "fiyat", "tarife"}},
		{Tag: TagOrigin, Synonyms: []string{"origin", "kalkış", "kalkis", "kalk", "from"}},
		{Tag: TagDestination, Synonyms: []string{"destination", "varış", "varis", "to"}},
		{Tag: TagDiscounted, Synonyms: []string{"discount", "indirim"}},
		{Tag: TagKm, Synonyms: []string{"km"}},
		{Tag: TagUnit, Synonyms: []string{"unit", "birim"}},
	}
}

type synonymFile struct {
	Tags SynonymTable `yaml:"tags"`
}

// LoadSynonyms reads a YAML synonym table of the form
//
//	tags:
//	  - tag: price
//	    synonyms: [price, fiyat]
//
// Rules keep file order. Tags outside the canonical set are rejected.
func LoadSynonyms(path string) (SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}
	var f synonymFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode synonyms: %w", err)
	}
	if len(f.Tags) == 0 {
		return nil, fmt.Errorf("synonyms file %s declares no tags", path)
	}
	for _, r := range f.Tags {
		if !IsCanonical(r.Tag) {
			return nil, fmt.Errorf("synonyms file %s: unknown tag %q", path, r.Tag)
		}
	}
	return f.Tags, nil
}

// HeaderMapper classifies raw header cells into canonical tags.
type HeaderMapper struct {
	rules []foldedRule
}

type foldedRule struct {
	tag      string
	synonyms []string
}

// NewHeaderMapper prepares table for matching. A nil table uses DefaultSynonyms.
func NewHeaderMapper(table SynonymTable) *HeaderMapper {
	if table == nil {
		table = DefaultSynonyms()
	}
	rules := make([]foldedRule, 0, len(table))
	for _, r := range table {
		fr := foldedRule{tag: r.Tag}
		for _, s := range r.Synonyms {
			if f := fold(s); f != "" {
				fr.synonyms = append(fr.synonyms, f)
			}
		}
		rules = append(rules, fr)
	}
	return &HeaderMapper{rules: rules}
}

// Map returns one tag per header cell. Headers matching no rule keep their trimmed,
// lower-cased text; blank cells map to "".
func (m *HeaderMapper) Map(headers []any) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = m.MapOne(CellString(h))
	}
	return out
}

// MapOne classifies a single header.
func (m *HeaderMapper) MapOne(header string) string {
	raw := strings.ToLower(strings.TrimSpace(header))
	if raw == "" {
		return ""
	}
	folded := fold(raw)
	for _, r := range m.rules {
		for _, s := range r.synonyms {
			if strings.Contains(folded, s) {
				return r.tag
			}
		}
	}
	return raw
}

// fold lower-cases s and reduces Turkish letters to their ASCII base so that
// "FİYAT", "fiyat" and "KALKIŞ"/"kalkis" compare equal.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// Transformers carry state, so the chain is built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.Map(func(r rune) rune {
		if r == 'ı' {
			return 'i'
		}
		return r
	}, s)
}
