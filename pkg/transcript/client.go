package transcript

import (
	"context"
	"fmt"
)

type Kind int

const (
	// Absent means the provider answered but has no transcript for the period.
	Absent Kind = iota
	Found
	// Failed means the provider could not be queried or rejected the request.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Result struct {
	Kind Kind
	Text string
	Err  error
}

func FoundResult(text string) Result {
	return Result{Kind: Found, Text: text}
}

func AbsentResult() Result {
	return Result{Kind: Absent}
}

func FailedResult(err error) Result {
	return Result{Kind: Failed, Err: err}
}

// Provider fetches earnings-call transcripts. Fetch never returns a Go error:
// every failure is reported as a Failed result so callers handle all three
// outcomes explicitly.
type Provider interface {
	Fetch(ctx context.Context, ticker string, year, quarter int) Result
	Name() string
}
