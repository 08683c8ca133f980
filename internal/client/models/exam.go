package models

import "time"

// Defaults substituted by the client for omitted exam request fields.
const (
	DefaultExamTitle     = "Calisma Sinavi"
	DefaultQuestionCount = 10
)

// DefaultDistribution is the difficulty mix used when a request has none.
var DefaultDistribution = DifficultyDistribution{Kolay: 0.3, Orta: 0.5, Zor: 0.2}

// DifficultyDistribution holds the easy/medium/hard proportions of an exam.
// The proportions are expected to sum to 1.0.
type DifficultyDistribution struct {
	Kolay float64 `json:"kolay"`
	Orta  float64 `json:"orta"`
	Zor   float64 `json:"zor"`
}

// IsZero reports whether no proportion has been set.
func (d DifficultyDistribution) IsZero() bool {
	return d.Kolay == 0 && d.Orta == 0 && d.Zor == 0
}

// ExamRequest is the payload of POST exams/generate.
type ExamRequest struct {
	Title                  string                 `json:"title"`
	QuestionCount          int                    `json:"question_count"`
	DifficultyDistribution DifficultyDistribution `json:"difficulty_distribution"`
	KazanimCodes           []string               `json:"kazanim_codes,omitempty"`
}

// WithDefaults returns a copy of r with omitted fields filled in. No other
// validation happens on the client; the backend is authoritative.
func (r ExamRequest) WithDefaults() ExamRequest {
	if r.Title == "" {
		r.Title = DefaultExamTitle
	}
	if r.QuestionCount == 0 {
		r.QuestionCount = DefaultQuestionCount
	}
	if r.DifficultyDistribution.IsZero() {
		r.DifficultyDistribution = DefaultDistribution
	}
	return r
}

// ExamRecord is the result of a successful exam generation.
type ExamRecord struct {
	ExamID          string   `json:"exam_id"`
	Title           string   `json:"title,omitempty"`
	QuestionCount   int      `json:"question_count"`
	Warning         string   `json:"warning,omitempty"`
	SkippedKazanims []string `json:"skipped_kazanims,omitempty"`
}

// ExamListItem is the lighter summary returned by GET exams/.
type ExamListItem struct {
	ExamID        string    `json:"exam_id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExamAvailability is the server-computed payload of exams/stats/available.
// Its fields are owned by the backend; the client caches it as received.
type ExamAvailability map[string]any

// ExamDownload is a fetched exam document.
type ExamDownload struct {
	ExamID      string
	FileName    string
	ContentType string
	Data        []byte
}
