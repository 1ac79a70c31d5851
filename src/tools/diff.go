package tools

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SpanOp classifies one span of a line-level diff.
type SpanOp string

const (
	SpanAdded     SpanOp = "added"
	SpanRemoved   SpanOp = "removed"
	SpanUnchanged SpanOp = "unchanged"
)

// Span is a run of consecutive lines with the same disposition.
type Span struct {
	Op    SpanOp   `json:"op"`
	Lines []string `json:"lines"`
}

// LineDiff computes an ordered line-level diff between two texts.
// Identical inputs yield spans with no added or removed entries.
func LineDiff(oldText, newText string) []Span {
	dmp := diffmatchpatch.New()
	oldRunes, newRunes, lines := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	spans := make([]Span, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		spans = append(spans, Span{
			Op:    opFor(d.Type),
			Lines: splitLines(d.Text),
		})
	}
	return spans
}

// Changed reports whether the diff contains any added or removed span.
func Changed(spans []Span) bool {
	for _, s := range spans {
		if s.Op != SpanUnchanged {
			return true
		}
	}
	return false
}

func opFor(t diffmatchpatch.Operation) SpanOp {
	switch t {
	case diffmatchpatch.DiffInsert:
		return SpanAdded
	case diffmatchpatch.DiffDelete:
		return SpanRemoved
	default:
		return SpanUnchanged
	}
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
