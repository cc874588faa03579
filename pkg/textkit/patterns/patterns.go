package patterns

import (
	"encoding/json"
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// EntityType classifies a recognized entity
type EntityType int

const (
	Person EntityType = iota
	Location
	Organization
	Date
	Time
	Number
	Other // never produced by matching
)

var entityTypeNames = [...]string{
	Person:       "Person",
	Location:     "Location",
	Organization: "Organization",
	Date:         "Date",
	Time:         "Time",
	Number:       "Number",
	Other:        "Other",
}

// String returns the display name of the entity type.
func (t EntityType) String() string {
	if int(t) >= 0 && int(t) < len(entityTypeNames) {
		return entityTypeNames[t]
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// ParseEntityType maps a display name back to its EntityType.
func ParseEntityType(name string) (EntityType, bool) {
	for i, n := range entityTypeNames {
		if n == name {
			return EntityType(i), true
		}
	}
	return Other, false
}

// MarshalJSON encodes the entity type as its display name.
func (t EntityType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a display name into an EntityType.
func (t *EntityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	et, ok := ParseEntityType(s)
	if !ok {
		return fmt.Errorf("unknown entity type: %q", s)
	}
	*t = et
	return nil
}

// Source patterns. Go's regexp is RE2, so every matcher runs in time linear
// in the input.
const (
	wordPattern     = `[\p{L}\p{M}\p{Nd}\p{Pc}]+`
	numberPattern   = `\b\d+\.?\d*\b`
	sentencePattern = `[.!?]+`

	personPattern       = `\b[A-Z][a-z]+\s[A-Z][a-z]+\b`
	locationPattern     = `\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\b`
	organizationPattern = `\b[A-Z][A-Za-z\s]+(?:Inc|LLC|Ltd|Corp|Company|University|Institute)\b`
	datePattern         = `\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`
	timePattern         = `\b\d{1,2}:\d{2}\s?(?:AM|PM|am|pm)?\b`
)

// entityOrder fixes the category iteration order.
var entityOrder = []EntityType{Person, Location, Organization, Date, Time, Number}

// Registry holds the compiled matchers. It is read-only after NewRegistry
// and safe to share between goroutines.
type Registry struct {
	words     *regexp.Regexp
	numbers   *regexp.Regexp
	sentences *regexp.Regexp
	entities  map[EntityType]matcher
}

// matcher pairs an entity pattern with its whole-string form, used to retry
// a shorter end when a match stops inside a word.
type matcher struct {
	re   *regexp.Regexp
	full *regexp.Regexp
}

func newMatcher(pattern string) matcher {
	return matcher{
		re:   regexp.MustCompile(pattern),
		full: regexp.MustCompile(`^(?:` + pattern + `)$`),
	}
}

// Match is a byte span [Start, End) in the scanned text.
type Match struct {
	Text  string
	Start int
	End   int
}

// NewRegistry compiles every pattern. It panics if a pattern does not
// compile; all patterns are constants so that is a programming error.
func NewRegistry() *Registry {
	numbers := newMatcher(numberPattern)
	return &Registry{
		words:     regexp.MustCompile(wordPattern),
		numbers:   numbers.re,
		sentences: regexp.MustCompile(sentencePattern),
		entities: map[EntityType]matcher{
			Person:       newMatcher(personPattern),
			Location:     newMatcher(locationPattern),
			Organization: newMatcher(organizationPattern),
			Date:         newMatcher(datePattern),
			Time:         newMatcher(timePattern),
			Number:       numbers,
		},
	}
}

// Words returns the word-run matcher.
func (r *Registry) Words() *regexp.Regexp { return r.words }

// Numbers returns the numeric-literal matcher. It is the Number entity
// matcher.
func (r *Registry) Numbers() *regexp.Regexp { return r.numbers }

// Sentences returns the sentence-terminator matcher.
func (r *Registry) Sentences() *regexp.Regexp { return r.sentences }

// Types returns the entity categories in evaluation order.
func (r *Registry) Types() []EntityType {
	out := make([]EntityType, len(entityOrder))
	copy(out, entityOrder)
	return out
}

// Matcher returns the matcher for an entity category.
func (r *Registry) Matcher(t EntityType) (*regexp.Regexp, bool) {
	m, ok := r.entities[t]
	return m.re, ok
}

// FindAll returns all non-overlapping matches of category t, left to right.
// Matches start and end on word boundaries in the Unicode sense, the same
// word characters the tokenizer uses, so "Renée" never yields "Ren".
func (r *Registry) FindAll(t EntityType, text string) []Match {
	m, ok := r.entities[t]
	if !ok {
		return nil
	}
	return m.findAll(text)
}

// CountSentences counts runs of sentence terminators in text.
func (r *Registry) CountSentences(text string) int {
	return len(r.sentences.FindAllStringIndex(text, -1))
}

// findAll scans left to right. Go's \b only knows ASCII word characters,
// so each candidate is checked against Unicode boundaries. A candidate that
// ends inside a word is retried with the longest shorter end from the same
// start; failing that, the scan resumes one rune later.
func (m matcher) findAll(text string) []Match {
	var out []Match
	pos := 0
	for pos < len(text) {
		loc := m.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		if isBoundary(text, start) {
			if !isBoundary(text, end) {
				end = m.shorterEnd(text, start, end)
			}
			if end > start {
				out = append(out, Match{Text: text[start:end], Start: start, End: end})
				pos = end
				continue
			}
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}

// shorterEnd returns the longest end in (start, end) that sits on a boundary
// and lets the pattern match text[start:end] whole, or start if none does.
func (m matcher) shorterEnd(text string, start, end int) int {
	for k := end - 1; k > start; k-- {
		if !utf8.RuneStart(text[k]) || !isBoundary(text, k) {
			continue
		}
		if m.full.MatchString(text[start:k]) {
			return k
		}
	}
	return start
}

// isBoundary reports whether byte offset i separates a word rune from a
// non-word rune. The ends of text count as non-word.
func isBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

// isWordRune matches the tokenizer's word class.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || unicode.Is(unicode.Pc, r)
}
