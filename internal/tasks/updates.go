package tasks

import (
	"fmt"

	"github.com/desertthunder/wtx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	QueueEntries Phase = iota
	UpdateEntries
)

func (p Phase) String() string {
	switch p {
	case QueueEntries:
		return "queue_entries"
	case UpdateEntries:
		return "update_entries"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func queuedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueueEntries,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Updating %d entries...", total),
	}
}

func entryUpdatedUpdate(step, total int, e models.Entry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateEntries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, e.Title()),
		Data:    e,
	}
}

func entryFailedUpdate(step, total int, id uint, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateEntries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %d: %v", step, total, id, err),
	}
}
