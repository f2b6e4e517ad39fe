package setlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bandsetlist/shared/go/models"
)

const (
	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 150
	// DefaultTemperature is the sampling temperature for song selection.
	DefaultTemperature float32 = 0.7
)

// Completer is the external text-completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// FailureReason classifies why the model-assisted path produced no setlist.
type FailureReason string

const (
	ReasonNone         FailureReason = ""
	ReasonNoCandidates FailureReason = "no_candidates"
	ReasonUnavailable  FailureReason = "unavailable"
	ReasonServiceError FailureReason = "service_error"
	ReasonTimeout      FailureReason = "timeout"
	ReasonMalformed    FailureReason = "malformed_response"
	ReasonEmpty        FailureReason = "empty_response"
	ReasonOutOfRange   FailureReason = "index_out_of_range"
)

// ServiceError wraps a failure of the completion service itself.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return "completion service: " + e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }

// ModelResponseError reports a completion that could not be used as an ordering.
type ModelResponseError struct {
	Reason   FailureReason
	Response string
	Detail   string
}

func (e *ModelResponseError) Error() string {
	return fmt.Sprintf("model response %s: %s", e.Reason, e.Detail)
}

// Outcome is the result of one model-assisted selection. Exactly one of
// Songs (on success) or Err (on failure) is meaningful; Reason is ReasonNone
// on success.
type Outcome struct {
	Songs  []models.SelectedSong
	Reason FailureReason
	Err    error
}

// OK reports whether the selection succeeded.
func (o Outcome) OK() bool { return o.Reason == ReasonNone }

func failed(reason FailureReason, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}

// ModelSelector delegates song choice and order to a Completer.
type ModelSelector struct {
	completer   Completer
	maxTokens   int
	temperature float32
}

// NewModelSelector builds a selector around completer. Non-positive
// maxTokens and a nil or negative temperature fall back to the package
// defaults. A temperature of zero is kept.
func NewModelSelector(completer Completer, maxTokens int, temperature *float32) *ModelSelector {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temp := DefaultTemperature
	if temperature != nil && *temperature >= 0 {
		temp = *temperature
	}
	return &ModelSelector{completer: completer, maxTokens: maxTokens, temperature: temp}
}

// Select asks the completion service for a play order over candidates.
// It never retries; every failure is reported through the Outcome.
func (m *ModelSelector) Select(ctx context.Context, candidates []Candidate, targetMinutes int, eventType, notes string) Outcome {
	if len(candidates) == 0 {
		return failed(ReasonNoCandidates, ErrNoCandidates)
	}
	if m == nil || m.completer == nil {
		return failed(ReasonUnavailable, &ServiceError{Err: errors.New("not configured")})
	}

	prompt := BuildPrompt(candidates, targetMinutes, eventType, notes)
	reply, err := m.completer.Complete(ctx, prompt, m.maxTokens, m.temperature)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failed(ReasonTimeout, &ServiceError{Err: err})
		}
		return failed(ReasonServiceError, &ServiceError{Err: err})
	}

	indices, perr := ParseOrder(reply, len(candidates))
	if perr != nil {
		return failed(perr.Reason, perr)
	}

	songs := make([]models.SelectedSong, 0, len(indices))
	for _, idx := range indices {
		songs = append(songs, models.SelectedSong{Song: candidates[idx-1].Song, Order: len(songs) + 1})
	}
	return Outcome{Songs: songs}
}

// BuildPrompt renders the curator instructions for candidates.
func BuildPrompt(candidates []Candidate, targetMinutes int, eventType, notes string) string {
	if strings.TrimSpace(eventType) == "" {
		eventType = "general"
	}
	if strings.TrimSpace(notes) == "" {
		notes = "No specific preferences provided"
	}

	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = fmt.Sprintf("%d. \"%s\" by %s [%s] - %s", i+1, c.Song.Title, c.Song.Artist, c.Song.Genre, c.Song.Duration)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional setlist curator. Create a setlist for a %s event that should last approximately %d minutes.\n\n", eventType, targetMinutes)
	fmt.Fprintf(&b, "User notes/preferences: %s\n\n", notes)
	b.WriteString("Available songs:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nPlease select songs that:\n")
	b.WriteString("1. Flow well together musically\n")
	b.WriteString("2. Match the event type and user preferences\n")
	fmt.Fprintf(&b, "3. Stay within the %d-minute duration limit\n", targetMinutes)
	b.WriteString("4. Create good energy progression\n\n")
	b.WriteString("Respond with ONLY a JSON array of song numbers in the order they should be played. For example: [1, 5, 3, 8, 2]\n")
	b.WriteString("Do not include any other text in your response.")
	return b.String()
}

// ParseOrder decodes reply as a JSON array of 1-based indices into a list of
// n candidates. Repeated indices keep their first position only.
func ParseOrder(reply string, n int) ([]int, *ModelResponseError) {
	trimmed := strings.TrimSpace(reply)

	var raw []int
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, &ModelResponseError{Reason: ReasonMalformed, Response: reply, Detail: err.Error()}
	}
	if len(raw) == 0 {
		return nil, &ModelResponseError{Reason: ReasonEmpty, Response: reply, Detail: "no indices"}
	}

	seen := make(map[int]struct{}, len(raw))
	indices := make([]int, 0, len(raw))
	for _, idx := range raw {
		if idx < 1 || idx > n {
			return nil, &ModelResponseError{
				Reason:   ReasonOutOfRange,
				Response: reply,
				Detail:   fmt.Sprintf("index %d not in [1, %d]", idx, n),
			}
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	return indices, nil
}
