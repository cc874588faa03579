package tokenize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/textkit/pkg/textkit/patterns"
)

// TokenType classifies a token
type TokenType int

const (
	Word TokenType = iota
	Number
	Punctuation
	Whitespace
)

var tokenTypeNames = [...]string{
	Word:        "Word",
	Number:      "Number",
	Punctuation: "Punctuation",
	Whitespace:  "Whitespace",
}

// String returns the display name of the token type.
func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// MarshalJSON encodes the token type as its display name.
func (t TokenType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a display name into a TokenType.
func (t *TokenType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range tokenTypeNames {
		if name == s {
			*t = TokenType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown token type: %q", s)
}

// Token is a span of the source text. Position is a byte offset.
type Token struct {
	Text     string    `json:"text"`
	Position int       `json:"position"`
	Type     TokenType `json:"type"`
}

// Tokenizer splits text into word tokens and the spans between them
type Tokenizer struct {
	words *regexp.Regexp
}

// NewTokenizer creates a tokenizer backed by the registry's word matcher
func NewTokenizer(reg *patterns.Registry) *Tokenizer {
	return &Tokenizer{words: reg.Words()}
}

// Tokenize scans text left to right. Each word run becomes a Word token,
// whatever sits between two words becomes one Whitespace token (it may hold
// punctuation), and a trailing remainder becomes one Punctuation token.
// Concatenating the token texts always yields text.
func (t *Tokenizer) Tokenize(text string) []Token {
	if text == "" {
		return []Token{}
	}

	locs := t.words.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, 2*len(locs)+1)
	pos := 0

	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if pos < start {
			tokens = append(tokens, Token{
				Text:     text[pos:start],
				Position: pos,
				Type:     Whitespace,
			})
		}

		tokens = append(tokens, Token{
			Text:     text[start:end],
			Position: start,
			Type:     Word,
		})
		pos = end
	}

	// Don't forget the remainder
	if pos < len(text) {
		tokens = append(tokens, Token{
			Text:     text[pos:],
			Position: pos,
			Type:     Punctuation,
		})
	}

	return tokens
}

// CountWords returns the number of Word tokens.
func CountWords(tokens []Token) int {
	n := 0
	for _, tok := range tokens {
		if tok.Type == Word {
			n++
		}
	}
	return n
}

// Reconstruct concatenates token texts in order.
func Reconstruct(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}
