package models

// Status is the resolution status assigned to a thread.
type Status string

const (
	StatusResolved    Status = "Resolved"    // answered by staff/admin
	StatusEndorsed    Status = "Endorsed"    // student answer with endorsement
	StatusUnconfirmed Status = "Unconfirmed" // student answer only
	StatusPending     Status = "Pending"     // no answers
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusResolved, StatusEndorsed, StatusUnconfirmed, StatusPending}
}

// EffectivelyAnswered reports whether a thread with this status counts as
// answered. Unconfirmed threads count only when countUnconfirmed is set.
func (s Status) EffectivelyAnswered(countUnconfirmed bool) bool {
	switch s {
	case StatusResolved, StatusEndorsed:
		return true
	case StatusUnconfirmed:
		return countUnconfirmed
	default:
		return false
	}
}

// Short returns the one-letter abbreviation used in compact breakdowns.
func (s Status) Short() string {
	if s == "" {
		return "?"
	}
	return string(s[0])
}

// Classification pairs a status with the answer that triggered it.
// Answer is nil for Pending.
type Classification struct {
	Status Status  `json:"status"`
	Answer *Answer `json:"answer,omitempty"`
}

// TimedThread is a thread together with its classification and the time
// it took to reach effective resolution.
type TimedThread struct {
	Thread         Thread
	Classification Classification

	// ElapsedHours is nil when the thread has no resolving answer.
	ElapsedHours *float64

	// Anomalous is set when the resolving answer predates the question and
	// the elapsed time was clamped to zero.
	Anomalous bool
}

// EffectivelyAnswered reports whether the thread counts as answered.
func (t TimedThread) EffectivelyAnswered(countUnconfirmed bool) bool {
	return t.Classification.Status.EffectivelyAnswered(countUnconfirmed)
}
