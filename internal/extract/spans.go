package extract

import (
	"sort"

	"github.com/JamesPrial/text2graph/internal/parser"
)

// SpanIndex answers which entity span encloses a token position.
// Spans are kept sorted by start; maxEnd[i] is the largest End among
// spans[0..i], which bounds the backward scan.
type SpanIndex struct {
	spans  []parser.Span
	maxEnd []int
}

// NewSpanIndex builds an index over spans without modifying the input.
func NewSpanIndex(spans []parser.Span) *SpanIndex {
	sorted := make([]parser.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	maxEnd := make([]int, len(sorted))
	for i, span := range sorted {
		maxEnd[i] = span.End
		if i > 0 && maxEnd[i-1] > span.End {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &SpanIndex{spans: sorted, maxEnd: maxEnd}
}

// Lookup returns the span with start <= pos < end. When several spans
// contain pos, the one starting latest wins, and among equal starts the
// one listed last.
func (idx *SpanIndex) Lookup(pos int) (parser.Span, bool) {
	// first span starting after pos
	i := sort.Search(len(idx.spans), func(i int) bool {
		return idx.spans[i].Start > pos
	})

	for j := i - 1; j >= 0; j-- {
		if idx.maxEnd[j] <= pos {
			break
		}
		if pos < idx.spans[j].End {
			return idx.spans[j], true
		}
	}

	return parser.Span{}, false
}

// Len returns the number of indexed spans.
func (idx *SpanIndex) Len() int {
	return len(idx.spans)
}
