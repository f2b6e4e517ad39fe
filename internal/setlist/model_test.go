package setlist

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCompleter struct {
	reply string
	err   error

	calls           int
	lastPrompt      string
	lastMaxTokens   int
	lastTemperature float32
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastMaxTokens = maxTokens
	s.lastTemperature = temperature
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func twoCandidates() []Candidate {
	return []Candidate{candidate("first", "3:00"), candidate("second", "4:00")}
}

func TestModelSelectorOrdersByReply(t *testing.T) {
	stub := &stubCompleter{reply: "[2, 1]"}
	m := NewModelSelector(stub, 0, nil)

	out := m.Select(context.Background(), twoCandidates(), 45, "Wedding", "")
	if !out.OK() {
		t.Fatalf("expected success, got %s: %v", out.Reason, out.Err)
	}
	if len(out.Songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(out.Songs))
	}
	if out.Songs[0].ID != "second" || out.Songs[0].Order != 1 {
		t.Fatalf("unexpected first song: %+v", out.Songs[0])
	}
	if out.Songs[1].ID != "first" || out.Songs[1].Order != 2 {
		t.Fatalf("unexpected second song: %+v", out.Songs[1])
	}
	if stub.lastMaxTokens != DefaultMaxTokens || stub.lastTemperature != DefaultTemperature {
		t.Fatalf("expected default sampling, got maxTokens=%d temperature=%v", stub.lastMaxTokens, stub.lastTemperature)
	}
}

func TestModelSelectorSamplingSettings(t *testing.T) {
	zero, negative, low := float32(0), float32(-1), float32(0.2)
	tests := []struct {
		name        string
		maxTokens   int
		temperature *float32
		wantTokens  int
		wantTemp    float32
	}{
		{"defaults", 0, nil, DefaultMaxTokens, DefaultTemperature},
		{"zero temperature kept", 80, &zero, 80, 0},
		{"negative temperature unset", -5, &negative, DefaultMaxTokens, DefaultTemperature},
		{"explicit", 200, &low, 200, 0.2},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubCompleter{reply: "[1]"}
			NewModelSelector(stub, tc.maxTokens, tc.temperature).Select(context.Background(), twoCandidates(), 45, "", "")
			if stub.lastMaxTokens != tc.wantTokens || stub.lastTemperature != tc.wantTemp {
				t.Fatalf("expected maxTokens=%d temperature=%v, got %d %v", tc.wantTokens, tc.wantTemp, stub.lastMaxTokens, stub.lastTemperature)
			}
		})
	}
}

func TestModelSelectorFailures(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		err        error
		wantReason FailureReason
	}{
		{name: "not json", reply: "not json", wantReason: ReasonMalformed},
		{name: "prose around array", reply: "Here you go: [1, 2]", wantReason: ReasonMalformed},
		{name: "strings", reply: `["1", "2"]`, wantReason: ReasonMalformed},
		{name: "empty array", reply: "[]", wantReason: ReasonEmpty},
		{name: "null", reply: "null", wantReason: ReasonEmpty},
		{name: "index too high", reply: "[1, 3]", wantReason: ReasonOutOfRange},
		{name: "index zero", reply: "[0]", wantReason: ReasonOutOfRange},
		{name: "service error", err: errors.New("503 from upstream"), wantReason: ReasonServiceError},
		{name: "timeout", err: context.DeadlineExceeded, wantReason: ReasonTimeout},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m := NewModelSelector(&stubCompleter{reply: tc.reply, err: tc.err}, 0, nil)
			out := m.Select(context.Background(), twoCandidates(), 45, "", "")
			if out.OK() {
				t.Fatalf("expected failure, got %d songs", len(out.Songs))
			}
			if out.Reason != tc.wantReason {
				t.Fatalf("expected reason %q, got %q", tc.wantReason, out.Reason)
			}

			var respErr *ModelResponseError
			var svcErr *ServiceError
			switch {
			case tc.err != nil && !errors.As(out.Err, &svcErr):
				t.Fatalf("expected *ServiceError, got %T", out.Err)
			case tc.err == nil && !errors.As(out.Err, &respErr):
				t.Fatalf("expected *ModelResponseError, got %T", out.Err)
			}
		})
	}
}

func TestModelSelectorDeduplicatesIndices(t *testing.T) {
	m := NewModelSelector(&stubCompleter{reply: "[1, 1, 2, 1]"}, 0, nil)
	out := m.Select(context.Background(), twoCandidates(), 45, "", "")
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if len(out.Songs) != 2 || out.Songs[0].ID != "first" || out.Songs[1].ID != "second" {
		t.Fatalf("expected [first second], got %+v", out.Songs)
	}
	if out.Songs[1].Order != 2 {
		t.Fatalf("expected contiguous order, got %d", out.Songs[1].Order)
	}
}

func TestModelSelectorRejectsEmptyCandidates(t *testing.T) {
	stub := &stubCompleter{reply: "[1]"}
	out := NewModelSelector(stub, 0, nil).Select(context.Background(), nil, 45, "", "")
	if out.Reason != ReasonNoCandidates || !errors.Is(out.Err, ErrNoCandidates) {
		t.Fatalf("expected no-candidates failure, got %q %v", out.Reason, out.Err)
	}
	if stub.calls != 0 {
		t.Fatalf("completion service should not be called, got %d calls", stub.calls)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(twoCandidates(), 45, "", "")

	for _, want := range []string{
		"Create a setlist for a general event that should last approximately 45 minutes.",
		"User notes/preferences: No specific preferences provided",
		"1. \"Song first\" by Band [Rock] - 3:00\n2. \"Song second\" by Band [Rock] - 4:00",
		"3. Stay within the 45-minute duration limit",
		"Respond with ONLY a JSON array of song numbers",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	custom := BuildPrompt(twoCandidates(), 90, "Bar Gig", "keep it loud")
	if !strings.Contains(custom, "for a Bar Gig event") || !strings.Contains(custom, "User notes/preferences: keep it loud") {
		t.Fatalf("prompt did not embed event and notes:\n%s", custom)
	}
}
