// Package messages reads chat exports: one JSON message per line.
package messages

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cognicore/textkit/pkg/textkit/internalerr"
)

// Message is one line of a chat export
type Message struct {
	ID           string    `json:"id"`
	Conversation string    `json:"conversation"`
	Author       string    `json:"author"`
	SentAt       time.Time `json:"sent_at"`
	Text         string    `json:"text"`
}

// Source names the message for the archive: conversation and id when
// present, otherwise the file and line.
func (m Message) Source(file string, line int) string {
	switch {
	case m.Conversation != "" && m.ID != "":
		return m.Conversation + "/" + m.ID
	case m.ID != "":
		return file + "#" + m.ID
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Line pairs a message with its 1-based line number
type Line struct {
	Number  int
	Message Message
}

// maxLine bounds a single message line.
const maxLine = 4 << 20

// Read decodes messages from r. Blank lines are skipped, malformed lines are
// logged and skipped.
func Read(r io.Reader, name string) ([]Line, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var out []Line
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", n, name, err)
			continue
		}
		out = append(out, Line{Number: n, Message: m})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return out, nil
}

// LoadJSONL reads a chat export file. A file with no valid message is an
// error.
func LoadJSONL(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := Read(f, path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no valid messages in %s: %w", path, internalerr.ErrInvalidInput)
	}
	return lines, nil
}
