package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cognicore/textkit/internal/messages"
	"github.com/cognicore/textkit/pkg/textkit/config"
	"github.com/cognicore/textkit/pkg/textkit/store"
	"github.com/cognicore/textkit/pkg/textkit/store/sqlite"
	"github.com/cognicore/textkit/pkg/textkit/textinput"
	"github.com/cognicore/textkit/pkg/textkit/tokenize"
)

func main() {
	var (
		dbPath      = flag.String("db", "", "Database path (required)")
		input       = flag.String("input", "", "Glob of files to analyze, e.g. 'notes/**/*.txt'; .jsonl files are chat exports (required)")
		exclude     = flag.String("exclude", "", "Comma-separated globs to skip (optional)")
		lexiconPath = flag.String("lexicon", "", "Sentiment lexicon file (optional)")
		intentsPath = flag.String("intents", "", "Intent rules file (optional)")
		nfc         = flag.Bool("nfc", false, "Normalize input to Unicode NFC before analysis")
		jsonOut     = flag.Bool("json", false, "Print stats as JSON")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *input == "" {
		log.Fatal("--input required")
	}

	ctx := context.Background()

	files, err := collectFiles(*input, splitList(*exclude))
	if err != nil {
		log.Fatal("Failed to expand input:", err)
	}
	if len(files) == 0 {
		log.Fatalf("No files match %s", *input)
	}

	// Load configuration components
	loader := config.Loader{
		LexiconPath: *lexiconPath,
		IntentsPath: *intentsPath,
	}
	analyzer, err := loader.NewAnalyzer()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Open database
	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer st.Close()

	rec := store.NewRecorder(analyzer, st)

	log.Printf("Analyzing %d files...", len(files))
	n, err := analyzeFiles(ctx, rec, files, *nfc)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Archived %d analyses", n)

	stats, err := st.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to read stats:", err)
	}
	if err := printStats(os.Stdout, stats.Report(), *jsonOut); err != nil {
		log.Fatal(err)
	}
}

// collectFiles expands pattern and drops directories and excluded paths.
// The result is sorted so repeated runs archive in the same order.
func collectFiles(pattern string, exclude []string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, path := range matches {
		if excluded(path, exclude) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func excluded(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	for _, p := range patterns {
		if match, _ := doublestar.Match(p, slashed); match {
			return true
		}
	}
	return false
}

// readDocument returns the text of a file. HTML files contribute only their
// visible text.
func readDocument(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return textinput.FromHTML(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type document struct {
	source string
	text   string
}

// readDocuments splits chat exports into one document per message. Any
// other file is a single document.
func readDocuments(path string) ([]document, error) {
	if strings.ToLower(filepath.Ext(path)) == ".jsonl" {
		lines, err := messages.LoadJSONL(path)
		if err != nil {
			return nil, err
		}
		docs := make([]document, 0, len(lines))
		for _, l := range lines {
			docs = append(docs, document{source: l.Message.Source(path, l.Number), text: l.Message.Text})
		}
		return docs, nil
	}

	text, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return []document{{source: path, text: text}}, nil
}

func analyzeFiles(ctx context.Context, rec *store.Recorder, files []string, nfc bool) (int, error) {
	count := 0
	for _, path := range files {
		docs, err := readDocuments(path)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			continue
		}

		for _, doc := range docs {
			text := textinput.Sanitize(doc.text)
			if nfc {
				text = textinput.Normalize(text)
			}

			r, err := rec.Record(ctx, doc.source, text)
			if err != nil {
				return count, fmt.Errorf("archive %s: %w", doc.source, err)
			}
			if tokenize.Reconstruct(r.Result.Tokens) != text {
				return count, fmt.Errorf("%s: tokens do not cover the text", doc.source)
			}
			count++
			if count%100 == 0 {
				log.Printf("Analyzed %d documents", count)
			}
		}
	}
	return count, nil
}

func printStats(w io.Writer, r store.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "Analyses:  %d\n", r.Analyses)
	fmt.Fprintf(w, "Words:     %d\n", r.Words)
	fmt.Fprintf(w, "Sentences: %d\n", r.Sentences)
	printCounts(w, "Sentiment", r.Sentiments)
	printCounts(w, "Intent", r.Intents)
	printCounts(w, "Entities", r.Entities)
	return nil
}

func printCounts(w io.Writer, title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-14s %d\n", k, counts[k])
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
