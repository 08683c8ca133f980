package models

// ProgressStatus is the learning state of a tracked kazanim. Statuses only
// move forward: tracked → in_progress → understood.
type ProgressStatus string

const (
	StatusTracked    ProgressStatus = "tracked"
	StatusInProgress ProgressStatus = "in_progress"
	StatusUnderstood ProgressStatus = "understood"
)

// Rank orders statuses; unknown statuses rank below tracked.
func (s ProgressStatus) Rank() int {
	switch s {
	case StatusTracked:
		return 0
	case StatusInProgress:
		return 1
	case StatusUnderstood:
		return 2
	}
	return -1
}

// Valid reports whether s is a known status.
func (s ProgressStatus) Valid() bool {
	return s.Rank() >= 0
}

// ProgressEntry is one curriculum learning outcome tracked for the user.
// KazanimCode is the unique key.
type ProgressEntry struct {
	KazanimCode string         `json:"kazanim_code"`
	Description string         `json:"kazanim_description"`
	Status      ProgressStatus `json:"status"`
	Confidence  float64        `json:"understanding_confidence"`
	Grade       *int           `json:"grade,omitempty"`
	Subject     string         `json:"subject,omitempty"`
}

// ProgressStats is the server-computed progress summary, cached as received.
type ProgressStats struct {
	InProgressCount    int `json:"in_progress_count"`
	ThisWeekUnderstood int `json:"this_week_understood"`
	StreakDays         int `json:"streak_days"`
}

// Recommendation is a kazanim the backend suggests working on next.
type Recommendation struct {
	KazanimCode string  `json:"kazanim_code"`
	Description string  `json:"kazanim_description"`
	Subject     string  `json:"subject,omitempty"`
	Grade       *int    `json:"grade,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Priority    float64 `json:"priority,omitempty"`
}

// Understanding is the body of PUT users/me/progress/{code}/understood.
type Understanding struct {
	Confidence float64  `json:"understanding_confidence"`
	Signals    []string `json:"understanding_signals"`
}
