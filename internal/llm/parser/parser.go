// Package parser reduces raw model output to a file array. Models
// routinely wrap their JSON in prose, markdown fences, line comments and
// trailing commas; tolerating that noise belongs here, not in callers.
package parser

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync/atomic"

	"codeloom/internal/models"
)

// ParseError is returned when no stage of the tolerant pipeline could
// recover a file array from the model text.
type ParseError struct {
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed: %v (text: %q)", e.Err, e.Preview)
}

func (e *ParseError) Unwrap() error { return e.Err }

const previewLen = 200

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	fenceMarkerRe   = regexp.MustCompile("```[a-zA-Z]*")
	lineCommentRe   = regexp.MustCompile(`(?m)^\s*//[^\n]*$|([,{\[\]}\s])//[^\n]*$`)
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

	// droppedEntries counts patch entries rejected by shape validation.
	droppedEntries atomic.Int64
)

// DroppedEntryCount reports how many malformed entries were silently
// dropped since process start.
func DroppedEntryCount() int64 { return droppedEntries.Load() }

// Files extracts a []FileRecord from raw model text. Candidates are tried
// in order and the first successful parse wins:
//  1. body of a fenced ```json block, otherwise the text with all
//     triple-fence markers stripped
//  2. the same with // line comments removed
//  3. the substring between the first '[' and the last ']'
//  4. trailing-comma repair of the above
//
// A strict parse accepts either a bare array or a {"files": [...]}
// envelope. Entries without a string path and string content are dropped.
func Files(raw string) ([]models.FileRecord, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &ParseError{Preview: "", Err: fmt.Errorf("empty model output")}
	}

	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	} else {
		text = strings.TrimSpace(fenceMarkerRe.ReplaceAllString(text, ""))
	}

	for _, candidate := range candidates(text) {
		if files, ok := tryParse(candidate); ok {
			return files, nil
		}
	}

	return nil, &ParseError{Preview: preview(raw), Err: fmt.Errorf("no JSON file array found")}
}

// candidates expands the fence-stripped text into progressively more
// repaired variants. Comment stripping runs after the verbatim attempt so
// that legitimate "//" sequences inside JSON strings survive the common
// case of already-valid output.
func candidates(text string) []string {
	out := []string{text}

	uncommented := stripLineComments(text)
	if uncommented != text {
		out = append(out, uncommented)
	}

	start := strings.Index(uncommented, "[")
	end := strings.LastIndex(uncommented, "]")
	if start >= 0 && end > start {
		slice := uncommented[start : end+1]
		out = append(out, slice, trailingCommaRe.ReplaceAllString(slice, "$1"))
	}

	out = append(out, trailingCommaRe.ReplaceAllString(uncommented, "$1"))
	return out
}

// tryParse attempts a strict parse of text as either a bare array or a
// {"files": [...]} envelope, then validates entry shapes.
func tryParse(text string) ([]models.FileRecord, bool) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		var envelope struct {
			Files []json.RawMessage `json:"files"`
		}
		if err := json.Unmarshal([]byte(text), &envelope); err != nil || envelope.Files == nil {
			return nil, false
		}
		entries = envelope.Files
	}

	files := make([]models.FileRecord, 0, len(entries))
	for _, e := range entries {
		var rec struct {
			Path    *string `json:"path"`
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(e, &rec); err != nil || rec.Path == nil || rec.Content == nil || *rec.Path == "" {
			droppedEntries.Add(1)
			log.Printf("parser: dropped malformed entry (total %d)", droppedEntries.Load())
			continue
		}
		files = append(files, models.FileRecord{Path: *rec.Path, Content: *rec.Content})
	}
	return files, true
}

// stripLineComments removes // comments that start a line or follow a
// structural character. Comments embedded after string values are left
// alone; the trailing-comma repair pass usually renders them harmless.
func stripLineComments(text string) string {
	return lineCommentRe.ReplaceAllStringFunc(text, func(m string) string {
		idx := strings.Index(m, "//")
		return strings.TrimRight(m[:idx], " \t")
	})
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > previewLen {
		return text[:previewLen]
	}
	return text
}
