package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/textkit/pkg/textkit"
	"github.com/cognicore/textkit/pkg/textkit/config"
	"github.com/cognicore/textkit/pkg/textkit/entities"
	"github.com/cognicore/textkit/pkg/textkit/patterns"
	"github.com/cognicore/textkit/pkg/textkit/store"
	"github.com/cognicore/textkit/pkg/textkit/store/sqlite"
	"github.com/cognicore/textkit/pkg/textkit/textinput"
)

func main() {
	var (
		text        = flag.String("text", "", "One-shot text (non-interactive mode)")
		htmlPath    = flag.String("html", "", "Analyze the visible text of an HTML file")
		jsonOut     = flag.Bool("json", false, "Print the full result as JSON")
		nfc         = flag.Bool("nfc", false, "Normalize input to Unicode NFC before analysis")
		lexiconPath = flag.String("lexicon", "", "Sentiment lexicon file (optional)")
		intentsPath = flag.String("intents", "", "Intent rules file (optional)")
		dbPath      = flag.String("db", "", "Archive every analysis to this database (optional)")
	)
	flag.Parse()

	ctx := context.Background()

	sess, cleanup, err := buildSession(ctx, *dbPath, *lexiconPath, *intentsPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()
	sess.json = *jsonOut
	sess.nfc = *nfc

	if *htmlPath != "" {
		f, err := os.Open(*htmlPath)
		if err != nil {
			log.Fatal(err)
		}
		body, err := textinput.FromHTML(f)
		f.Close()
		if err != nil {
			log.Fatalf("parse %s: %v", *htmlPath, err)
		}
		if err := sess.run(ctx, os.Stdout, *htmlPath, body); err != nil {
			log.Fatal(err)
		}
		return
	}

	// One-shot mode
	if *text != "" {
		if err := sess.run(ctx, os.Stdout, "cli", *text); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  textkit")
	fmt.Println("  Tokens, entities, sentiment, intent")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type a line of text (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := sess.run(ctx, os.Stdout, "stdin", line); err != nil {
			fmt.Println("Error:", err)
		}
	}

	fmt.Println("\nGoodbye!")
}

type session struct {
	analyzer *textkit.Analyzer
	recorder *store.Recorder // nil without --db
	json     bool
	nfc      bool
}

func buildSession(ctx context.Context, dbPath, lexiconPath, intentsPath string) (*session, func(), error) {
	loader := config.Loader{
		LexiconPath: lexiconPath,
		IntentsPath: intentsPath,
	}

	analyzer, err := loader.NewAnalyzer()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	sess := &session{analyzer: analyzer}
	if dbPath == "" {
		return sess, func() {}, nil
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	sess.recorder = store.NewRecorder(analyzer, st)

	cleanup := func() {
		st.Close()
	}
	return sess, cleanup, nil
}

func (s *session) run(ctx context.Context, w io.Writer, source, text string) error {
	text = textinput.Sanitize(text)
	if s.nfc {
		text = textinput.Normalize(text)
	}

	var (
		res textkit.Result
		id  string
	)
	if s.recorder != nil {
		rec, err := s.recorder.Record(ctx, source, text)
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		res, id = rec.Result, rec.ID
	} else {
		res = s.analyzer.Analyze(text)
	}

	if s.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(w, s.analyzer, res, id)
	return nil
}

func printResult(w io.Writer, a *textkit.Analyzer, res textkit.Result, id string) {
	fmt.Fprintln(w, a.Summary(res))

	if res.Intent.Present() {
		fmt.Fprintf(w, "Intent: %s\n", res.Intent)
	}

	if len(res.Entities) > 0 {
		fmt.Fprintln(w, "Entities:")
		counts := entities.CountByType(res.Entities)
		for _, e := range res.Entities {
			fmt.Fprintf(w, "  - %-12s %q (%.2f)\n", e.Type, e.Text, e.Confidence)
		}
		fmt.Fprint(w, "By type:")
		for t := patterns.Person; t < patterns.Other; t++ {
			if n := counts[t]; n > 0 {
				fmt.Fprintf(w, " %s=%d", t, n)
			}
		}
		fmt.Fprintln(w)
	}

	if id != "" {
		fmt.Fprintf(w, "Archived as %s\n", id)
	}
	fmt.Fprintln(w)
}
