package sift

import (
	"fmt"

	"sift-api/internal/domain"
)

// Status is the discriminant of a stage outcome
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusSkipped
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusSkipped:
		return "skipped"
	case StatusFatal:
		return "fatal"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Stage names, used in logs and metrics
const (
	StageMetadata  = "metadata"
	StageScrape    = "scrape"
	StageRehost    = "rehost"
	StageGate      = "content_gate"
	StageSummarize = "summarize"
	StagePersist   = "persist"
)

// Outcome records how one stage ended
type Outcome struct {
	Stage  string
	Status Status
	Reason string
}

func succeeded(stage string) Outcome { return Outcome{Stage: stage, Status: StatusOK} }

func skipped(stage, reason string) Outcome {
	return Outcome{Stage: stage, Status: StatusSkipped, Reason: reason}
}

func degraded(stage string, err error) Outcome {
	return Outcome{Stage: stage, Status: StatusDegraded, Reason: err.Error()}
}

func fatal(stage string, err error) Outcome {
	return Outcome{Stage: stage, Status: StatusFatal, Reason: err.Error()}
}

// Mode says how the persisted page got its title and summary
type Mode string

const (
	// ModeSummarized pages carry model output
	ModeSummarized Mode = "ai"
	// ModeDefaults pages had content but the model call failed
	ModeDefaults Mode = "defaults"
	// ModeBookmark pages had nothing to summarize
	ModeBookmark Mode = "bookmark"
)

// Result is what one ingestion produced
type Result struct {
	Page     *domain.Page
	Mode     Mode
	Outcomes []Outcome
}

// Outcome returns the recorded outcome for stage, if any
func (r *Result) Outcome(stage string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Stage == stage {
			return o, true
		}
	}
	return Outcome{}, false
}
