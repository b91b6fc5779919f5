package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/JamesPrial/text2graph/pkg/config"
	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
)

// maxResponseBytes bounds how much of an annotation response is read.
const maxResponseBytes = 32 << 20

// HTTPClient is the subset of *http.Client used by HTTPParser.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPParser calls an annotation service that accepts {"text": ...} and
// answers with spaCy-style token and entity JSON.
type HTTPParser struct {
	endpoint   string
	parsePath  string
	healthPath string
	httpClient HTTPClient
	logger     *slog.Logger
}

type parseRequest struct {
	Text string `json:"text"`
}

// NewHTTPParser creates a parser for the configured service. When client is
// nil a client with the configured timeout is used.
func NewHTTPParser(settings config.ParserSettings, client HTTPClient) *HTTPParser {
	if client == nil {
		client = &http.Client{Timeout: settings.Timeout}
	}
	return &HTTPParser{
		endpoint:   settings.Endpoint,
		parsePath:  settings.ParsePath,
		healthPath: settings.HealthPath,
		httpClient: client,
		logger:     logging.GetGlobalLogger("parser"),
	}
}

// Parse sends text to the service and returns the validated document.
// A transport failure is reported as PARSER_REQUEST, anything wrong with the
// answer as PARSER_RESPONSE. Requests are not retried.
func (p *HTTPParser) Parse(ctx context.Context, text string) (doc *Document, err error) {
	timer := logging.StartTimer(ctx, p.logger, "parse")
	defer func() { timer.EndWithError(err) }()

	if p.endpoint == "" {
		return nil, errors.New(errors.ErrCodeParserUnavailable, "no parser endpoint configured")
	}

	body, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeParserRequest, "failed to encode parse request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+p.parsePath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeParserRequest, "failed to build parse request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeParserRequest, "parser request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf(errors.ErrCodeParserResponse,
			"parser returned status %d", resp.StatusCode).
			WithDetails(map[string]interface{}{"body": string(snippet)})
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeParserResponse, "failed to read parser response")
	}

	doc = &Document{}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeParserResponse, "parser response is not valid JSON")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	p.logger.DebugContext(ctx, "Document parsed",
		slog.Int("tokens", len(doc.Tokens)),
		slog.Int("entities", len(doc.Ents)),
	)

	return doc, nil
}

// Explain implements Parser using the built-in label glossary.
func (p *HTTPParser) Explain(label string) string {
	return ExplainLabel(label)
}

// Available probes the health endpoint once.
func (p *HTTPParser) Available(ctx context.Context) bool {
	if p.endpoint == "" {
		p.logger.InfoContext(ctx, "No parser endpoint configured")
		return false
	}

	url := p.endpoint + p.healthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.logger.WarnContext(ctx, "Parser health request could not be built",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.WarnContext(ctx, "Parser health check failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		p.logger.WarnContext(ctx, "Parser health check returned non-OK status",
			slog.String("url", url),
			slog.Int("status_code", resp.StatusCode),
		)
		return false
	}

	p.logger.InfoContext(ctx, "Parser available", slog.String("endpoint", p.endpoint))
	return true
}
