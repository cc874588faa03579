package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/textkit/pkg/textkit"
	"github.com/cognicore/textkit/pkg/textkit/store"
	"github.com/cognicore/textkit/pkg/textkit/store/sqlite"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixtureTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "Hello, my name is John Smith.")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "I love it, it is amazing!")
	writeFile(t, filepath.Join(dir, "sub", "deep", "c.txt"), "That was terrible. I hate it.")
	writeFile(t, filepath.Join(dir, "sub", "skip.md"), "not matched")
	writeFile(t, filepath.Join(dir, "drafts", "d.txt"), "draft")
	writeFile(t, filepath.Join(dir, "sub", "chat.jsonl"),
		`{"id":"1","conversation":"support","text":"can you help me"}`+"\n"+
			`{"id":"2","conversation":"support","text":"bye now"}`+"\n")
	writeFile(t, filepath.Join(dir, "page.html"), "<html><body><script>var x=1</script><p>Thank you!</p></body></html>")
	return dir
}

func TestCollectFiles(t *testing.T) {
	dir := fixtureTree(t)

	files, err := collectFiles(filepath.Join(dir, "**", "*.txt"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("Expected 4 files, got %d: %v", len(files), files)
	}

	drafts := filepath.ToSlash(filepath.Join(dir, "drafts")) + "/**"
	files, err = collectFiles(filepath.Join(dir, "**", "*.txt"), []string{drafts})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Errorf("Exclude not applied: %v", files)
	}
	for _, f := range files {
		if strings.Contains(f, "drafts") {
			t.Errorf("Excluded file returned: %s", f)
		}
	}
}

func TestReadDocumentHTML(t *testing.T) {
	dir := fixtureTree(t)

	text, err := readDocument(filepath.Join(dir, "page.html"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "Thank you!" {
		t.Errorf("Expected visible text only, got %q", text)
	}
}

func TestAnalyzeFiles(t *testing.T) {
	ctx := context.Background()
	dir := fixtureTree(t)

	st, err := sqlite.OpenSQLite(ctx, filepath.Join(t.TempDir(), "batch.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	drafts := filepath.ToSlash(filepath.Join(dir, "drafts")) + "/**"
	files, err := collectFiles(filepath.Join(dir, "**", "*.{txt,html,jsonl}"), []string{drafts})
	if err != nil {
		t.Fatal(err)
	}

	n, err := analyzeFiles(ctx, store.NewRecorder(textkit.New(textkit.Options{}), st), files, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("Expected 6 analyses, got %d", n)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	report := stats.Report()
	if report.Sentiments["Positive"] != 1 || report.Sentiments["Negative"] != 1 {
		t.Errorf("Unexpected sentiments %v", report.Sentiments)
	}
	if report.Intents["gratitude"] != 1 || report.Intents["greeting"] != 1 ||
		report.Intents["request_help"] != 1 || report.Intents["farewell"] != 1 {
		t.Errorf("Unexpected intents %v", report.Intents)
	}

	recs, err := st.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	sources := make(map[string]bool)
	for _, r := range recs {
		sources[r.Source] = true
	}
	if !sources[filepath.Join(dir, "a.txt")] || !sources["support/2"] {
		t.Errorf("Records should carry the file path as source: %v", sources)
	}
}

func TestPrintStats(t *testing.T) {
	stats := store.NewStats()
	stats.Add(textkit.New(textkit.Options{}).Analyze("Hello John Smith, I love it."))

	var buf bytes.Buffer
	if err := printStats(&buf, stats.Report(), false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Analyses:  1", "Sentiment:", "Positive", "greeting", "Person"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := printStats(&buf, stats.Report(), true); err != nil {
		t.Fatal(err)
	}
	var decoded store.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Analyses != 1 {
		t.Errorf("Unexpected JSON report %+v", decoded)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a/**, ,b ")
	if len(got) != 2 || got[0] != "a/**" || got[1] != "b" {
		t.Errorf("Unexpected split %v", got)
	}
	if splitList("") != nil {
		t.Error("Empty input should yield nil")
	}
}
