package extract

import (
	"errors"
	"strings"
)

// Kind enumerates the declared failure kinds.
type Kind string

const (
	KindInvalidTier               Kind = "invalid_tier"
	KindInvalidReference          Kind = "invalid_reference"
	KindInvalidConfig             Kind = "invalid_config"
	KindCaptionsUnavailable       Kind = "captions_unavailable"
	KindTranscriptionFailed       Kind = "transcription_failed"
	KindVisualAnalysisUnavailable Kind = "visual_analysis_unavailable"
	KindUnexpected                Kind = "unexpected_backend_error"
)

// Severity decides whether a failure may trigger escalation.
type Severity int

const (
	Hard Severity = iota
	Soft
)

func (s Severity) String() string {
	if s == Soft {
		return "soft"
	}
	return "hard"
}

// Error is the tagged failure every backend and the orchestrator return.
type Error struct {
	Kind     Kind
	Severity Severity
	// Tier is set for soft failures; zero for hard ones.
	Tier   Tier
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so callers can test with
// errors.Is(err, &extract.Error{Kind: extract.KindCaptionsUnavailable}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewSoft builds a recoverable, tier-scoped failure.
func NewSoft(kind Kind, tier Tier, detail string, err error) *Error {
	return &Error{Kind: kind, Severity: Soft, Tier: tier, Detail: detail, Err: err}
}

// NewHard builds a failure that always aborts the analysis.
func NewHard(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Severity: Hard, Detail: detail, Err: err}
}

// SoftKindFor returns the soft kind a backend for tier may raise.
func SoftKindFor(tier Tier) Kind {
	switch tier {
	case TierCaptions:
		return KindCaptionsUnavailable
	case TierAudio:
		return KindTranscriptionFailed
	case TierVisual:
		return KindVisualAnalysisUnavailable
	default:
		return ""
	}
}

// KindOf returns the Kind carried by err, or KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Verdict is the orchestrator's reading of a backend result.
type Verdict int

const (
	VerdictSuccess Verdict = iota
	VerdictSoft
	VerdictHard
)

// Classify tags a backend error for the given tier attempt. Only a soft
// failure whose kind is in accepted is escalation-eligible. Every other
// error, including errors outside the declared taxonomy, is hard and must be
// surfaced unchanged.
func Classify(err error, accepted ...Kind) Verdict {
	if err == nil {
		return VerdictSuccess
	}
	var e *Error
	if !errors.As(err, &e) || e.Severity != Soft {
		return VerdictHard
	}
	for _, kind := range accepted {
		if e.Kind == kind {
			return VerdictSoft
		}
	}
	return VerdictHard
}
