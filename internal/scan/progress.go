package scan

import "fmt"

// ProgressStatus describes where a package sits in the scan lifecycle.
type ProgressStatus int

const (
	ProgressPending ProgressStatus = iota
	ProgressWorking
	ProgressSkipped
	ProgressComplete
	ProgressFailed
)

// ProgressEvent reports the scan status of a single package.
type ProgressEvent struct {
	Package string
	Status  ProgressStatus
	Message string
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Package)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Package)
	case ProgressSkipped:
		return fmt.Sprintf("  - %s (skipped: %s)", event.Package, event.Message)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Package)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Package, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Package)
	}
}
