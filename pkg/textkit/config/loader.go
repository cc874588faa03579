package config

import (
	"fmt"

	"github.com/cognicore/textkit/pkg/textkit"
	"github.com/cognicore/textkit/pkg/textkit/intent"
	"github.com/cognicore/textkit/pkg/textkit/sentiment"
)

// Loader loads the table files and constructs analyzer options
type Loader struct {
	LexiconPath string
	IntentsPath string
}

// Components holds the loaded tables
type Components struct {
	Lexicon sentiment.Lexicon
	Intents []intent.Rule
}

// Load reads all configured files. Empty paths fall back to the built-in
// tables.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{
		Lexicon: sentiment.DefaultLexicon(),
		Intents: intent.DefaultRules(),
	}

	if l.LexiconPath != "" {
		lex, err := LoadLexicon(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = sentiment.Lexicon{
			Positive: lex.Positive,
			Negative: lex.Negative,
		}
	}

	if l.IntentsPath != "" {
		in, err := LoadIntents(l.IntentsPath)
		if err != nil {
			return nil, fmt.Errorf("load intents: %w", err)
		}
		rules, err := in.ToRules()
		if err != nil {
			return nil, fmt.Errorf("load intents: %w", err)
		}
		comp.Intents = rules
	}

	return comp, nil
}

// Paths returns the configured, non-empty file paths.
func (l *Loader) Paths() []string {
	var paths []string
	for _, p := range []string{l.LexiconPath, l.IntentsPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Options converts the components into analyzer options.
func (c *Components) Options() textkit.Options {
	lex := c.Lexicon
	return textkit.Options{
		Lexicon: &lex,
		Intents: c.Intents,
	}
}

// NewAnalyzer loads the tables and builds an analyzer from them.
func (l *Loader) NewAnalyzer() (*textkit.Analyzer, error) {
	comp, err := l.Load()
	if err != nil {
		return nil, err
	}
	return textkit.New(comp.Options()), nil
}
