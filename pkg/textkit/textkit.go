// Package textkit extracts lightweight features from a text: tokens, word
// and sentence counts, pattern-based entities, a coarse sentiment label and
// an optional intent.
//
// An Analyzer compiles its patterns once in New and is read-only afterwards,
// so a single instance can serve concurrent Analyze calls. Every call returns
// a fresh Result owned by the caller.
package textkit

import (
	"fmt"

	"github.com/cognicore/textkit/pkg/textkit/entities"
	"github.com/cognicore/textkit/pkg/textkit/intent"
	"github.com/cognicore/textkit/pkg/textkit/patterns"
	"github.com/cognicore/textkit/pkg/textkit/sentiment"
	"github.com/cognicore/textkit/pkg/textkit/tokenize"
)

// Analyzer is the analysis facade
type Analyzer struct {
	registry  *patterns.Registry
	tokenizer *tokenize.Tokenizer
	extractor *entities.Extractor
	scorer    *sentiment.Scorer
	intents   *intent.Classifier
}

// Options configures an Analyzer. Zero values select the built-in tables.
type Options struct {
	Lexicon *sentiment.Lexicon
	Intents []intent.Rule
}

// Result is the outcome of one analysis
type Result struct {
	Tokens        []tokenize.Token    `json:"tokens"`
	WordCount     int                 `json:"word_count"`
	SentenceCount int                 `json:"sentence_count"`
	Entities      []entities.Entity   `json:"entities"`
	Sentiment     sentiment.Sentiment `json:"sentiment"`
	Intent        intent.Intent       `json:"intent"`
}

// New creates an Analyzer, compiling the pattern registry once
func New(opts Options) *Analyzer {
	lex := sentiment.DefaultLexicon()
	if opts.Lexicon != nil {
		lex = *opts.Lexicon
	}
	rules := intent.DefaultRules()
	if opts.Intents != nil {
		rules = opts.Intents
	}

	reg := patterns.NewRegistry()
	return &Analyzer{
		registry:  reg,
		tokenizer: tokenize.NewTokenizer(reg),
		extractor: entities.NewExtractor(reg),
		scorer:    sentiment.NewScorer(lex),
		intents:   intent.NewClassifier(rules),
	}
}

// Analyze runs every analysis over the original text. None of the steps
// depends on another's output.
func (a *Analyzer) Analyze(text string) Result {
	tokens := a.tokenizer.Tokenize(text)

	return Result{
		Tokens:        tokens,
		WordCount:     tokenize.CountWords(tokens),
		SentenceCount: a.registry.CountSentences(text),
		Entities:      a.extractor.Extract(text),
		Sentiment:     a.scorer.Classify(text),
		Intent:        a.intents.Classify(text),
	}
}

// Summary renders the one-line summary of a result.
func (a *Analyzer) Summary(res Result) string {
	return summarize(res)
}

// Summarize analyzes text with a throwaway Analyzer and returns its summary.
func Summarize(text string) string {
	return summarize(New(Options{}).Analyze(text))
}

func summarize(res Result) string {
	return fmt.Sprintf(
		"Processed text with %d tokens, %d words, %d sentences, %d entities. Sentiment: %s",
		len(res.Tokens),
		res.WordCount,
		res.SentenceCount,
		len(res.Entities),
		res.Sentiment,
	)
}
