// Package extract turns text into a provisional graph schema: typed entity
// summaries plus subject-verb-object relationships between entity spans.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

// Pipeline validates input, runs the selected extractor and summarizes.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	logger    *slog.Logger
}

func NewPipeline(extractor Extractor) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		logger:    logging.GetGlobalLogger("extract"),
	}
}

// Method returns the extraction method of the underlying extractor.
func (p *Pipeline) Method() string {
	return p.extractor.Method()
}

// Run extracts a schema from text. Blank text yields EXTRACTION_EMPTY_INPUT;
// a parser error or a panic during extraction yields EXTRACTION_FAILURE.
func (p *Pipeline) Run(ctx context.Context, text string) (result *schema.ExtractionResult, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeEmptyInput, "Empty text provided")
	}

	timer := logging.StartTimer(ctx, p.logger, "extract")
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			p.logger.ErrorContext(ctx, "Extraction panicked",
				slog.Any("panic", r),
				slog.String("stack_trace", string(buf[:n])),
			)
			result = nil
			err = errors.Wrap(fmt.Errorf("panic: %v", r), errors.ErrCodeExtractionFailure,
				fmt.Sprintf("Analysis failed: %v", r))
		}
		timer.EndWithError(err)
	}()

	entities, relationships, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExtractionFailure,
			"Analysis failed: "+errors.GetMessage(err))
	}

	result = Summarize(text, entities, relationships, p.extractor.Method())

	p.logger.DebugContext(ctx, "Extraction completed",
		slog.Int("total_entities", result.Summary.TotalEntities),
		slog.Int("total_relationships", result.Summary.TotalRelationships),
		slog.String("extraction_method", result.Summary.ExtractionMethod),
	)

	return result, nil
}
