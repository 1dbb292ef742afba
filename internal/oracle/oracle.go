// Package oracle asks a chat model to rank options, make go/no-go decisions,
// extract structured records and summarize text. Every call is independent;
// the Oracle keeps no state between calls.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// Oracle implements the decision capabilities on top of a Completer.
type Oracle struct {
	completer Completer
	logger    *slog.Logger
}

// New creates an Oracle. A nil logger discards output.
func New(completer Completer, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Oracle{completer: completer, logger: logger}
}

// RankRequest asks for the best of several options.
type RankRequest struct {
	Context  string
	Options  []string
	Criteria []string
}

// Ranking is the oracle's choice. Index is 0-based and is not bounds-checked:
// callers validate it against their option list.
type Ranking struct {
	Index     int
	Rationale string
	Raw       string
}

// DecisionRequest asks whether an action should go ahead.
type DecisionRequest struct {
	Context  string
	Action   string
	Input    string
	Criteria []string
}

// Decision is the oracle's go/no-go answer.
type Decision struct {
	CanProceed bool
	FollowUp   *string
}

// ExtractRequest asks for a record matching Schema, built from Input.
type ExtractRequest struct {
	Context string
	Input   string
	Schema  *jsonschema.Schema
}

// SummarizeRequest asks for a summary of at most WordLimit words.
type SummarizeRequest struct {
	Context   string
	WordLimit int
	Input     string
}

type rankResponse struct {
	BestOption json.RawMessage `json:"best_option"`
	Rationale  string          `json:"rationale"`
}

type decisionResponse struct {
	CanProceed *bool   `json:"can_proceed"`
	FollowUp   *string `json:"follow_up"`
}

// Rank returns the best option according to the ordered criteria. The model
// answers with a 1-based option number which is converted to a 0-based index.
func (o *Oracle) Rank(ctx context.Context, req RankRequest) (Ranking, error) {
	if len(req.Options) == 0 {
		return Ranking{}, fmt.Errorf("%w: no options to rank", ErrInvalidRequest)
	}

	raw, err := o.complete(ctx, "rank", CompletionRequest{
		System: rankInstruction(req.Context, req.Criteria),
		User:   "Options:\n" + numbered(req.Options),
		JSON:   true,
	})
	if err != nil {
		return Ranking{}, err
	}

	var resp rankResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return Ranking{}, &ResponseError{Op: "rank", Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	choice, err := parseOptionNumber(resp.BestOption)
	if err != nil {
		return Ranking{}, &ResponseError{Op: "rank", Raw: raw, Err: err}
	}

	return Ranking{Index: choice - 1, Rationale: strings.TrimSpace(resp.Rationale), Raw: raw}, nil
}

// Decide returns whether the action should proceed and an optional follow-up
// question when the input is not enough to decide.
func (o *Oracle) Decide(ctx context.Context, req DecisionRequest) (Decision, error) {
	if strings.TrimSpace(req.Action) == "" {
		return Decision{}, fmt.Errorf("%w: action is required", ErrInvalidRequest)
	}

	raw, err := o.complete(ctx, "decide", CompletionRequest{
		System: decideInstruction(req.Context, req.Action, req.Criteria),
		User:   "Input:\n" + req.Input,
		JSON:   true,
	})
	if err != nil {
		return Decision{}, err
	}

	var resp decisionResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return Decision{}, &ResponseError{Op: "decide", Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if resp.CanProceed == nil {
		return Decision{}, &ResponseError{Op: "decide", Raw: raw, Err: fmt.Errorf("%w: missing can_proceed", ErrMalformedResponse)}
	}

	decision := Decision{CanProceed: *resp.CanProceed}
	if resp.FollowUp != nil && strings.TrimSpace(*resp.FollowUp) != "" {
		followUp := strings.TrimSpace(*resp.FollowUp)
		decision.FollowUp = &followUp
	}
	return decision, nil
}

// Extract fills out from the model's answer after validating it against
// req.Schema. out must be a pointer.
func (o *Oracle) Extract(ctx context.Context, req ExtractRequest, out any) error {
	if req.Schema == nil {
		return fmt.Errorf("%w: schema is required", ErrInvalidRequest)
	}
	resolved, err := req.Schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("%w: resolving schema: %v", ErrInvalidRequest, err)
	}
	schemaJSON, err := json.MarshalIndent(req.Schema, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding schema: %v", ErrInvalidRequest, err)
	}

	raw, err := o.complete(ctx, "extract", CompletionRequest{
		System: extractInstruction(req.Context, string(schemaJSON)),
		User:   "Input:\n" + req.Input,
		JSON:   true,
	})
	if err != nil {
		return err
	}

	body := stripFences(raw)
	var instance map[string]any
	if err := json.Unmarshal([]byte(body), &instance); err != nil {
		return &ResponseError{Op: "extract", Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if err := resolved.Validate(instance); err != nil {
		return &ResponseError{Op: "extract", Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return &ResponseError{Op: "extract", Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}

// Summarize rewrites the input in at most req.WordLimit words.
func (o *Oracle) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	if req.WordLimit <= 0 {
		return "", fmt.Errorf("%w: word limit must be positive", ErrInvalidRequest)
	}

	raw, err := o.complete(ctx, "summarize", CompletionRequest{
		System: summarizeInstruction(req.Context, req.WordLimit),
		User:   req.Input,
	})
	if err != nil {
		return "", err
	}
	return truncateWords(strings.TrimSpace(raw), req.WordLimit), nil
}

func (o *Oracle) complete(ctx context.Context, op string, req CompletionRequest) (string, error) {
	start := time.Now()
	raw, err := o.completer.Complete(ctx, req)
	if err != nil {
		o.logger.Debug("oracle call failed", "op", op, "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("oracle %s: %w", op, err)
	}
	o.logger.Debug("oracle call", "op", op, "duration", time.Since(start), "response_len", len(raw))
	if strings.TrimSpace(raw) == "" {
		return "", &ResponseError{Op: op, Raw: raw, Err: ErrEmptyResponse}
	}
	return raw, nil
}

func parseOptionNumber(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: missing best_option", ErrMalformedResponse)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	// Some models quote the number.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: best_option %s is not an integer", ErrMalformedResponse, string(raw))
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ")
}

// IsMalformed reports whether err is an oracle contract violation.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrEmptyResponse)
}
