package store

import (
	"time"

	"github.com/poiesic/gnosis/core"
)

// Purpose classifies why a result set was stored.
type Purpose int

const (
	// PurposeIntermediate marks working sets produced mid-conversation,
	// typically inputs to a later scope or combine.
	PurposeIntermediate Purpose = iota + 1
	// PurposeFinal marks sets returned to the user surface.
	PurposeFinal
)

// String returns the wire name of the purpose.
func (p Purpose) String() string {
	switch p {
	case PurposeIntermediate:
		return "intermediate"
	case PurposeFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of a stored entry.
type Status int

const (
	StatusActive Status = iota + 1
	StatusStale
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Entry is one stored result set. Entries are immutable once written
// except for the Status transition to stale; a changed result set is
// stored as a new entry under a new id.
type Entry struct {
	ResultID       string
	ConversationID string
	ToolName       string
	Purpose        Purpose
	Status         Status
	// Turn is the conversation turn that produced the entry, used for
	// turn-level invalidation.
	Turn      int
	Timestamp time.Time
	// Truncated records that Data is a capped subset of the true result
	// set.
	Truncated bool
	Data      []*core.ResultItem
}
