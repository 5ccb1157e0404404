package cases

import "time"

const (
	StatusActive  = "active"
	StatusClosed  = "closed"
	StatusPending = "pending"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Note is a free-form annotation on a case folder.
type Note struct {
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImportantDate is a dated entry on the case calendar. Type distinguishes
// manually added dates from deadlines lifted out of extracted documents.
type ImportantDate struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Type        string    `json:"type,omitempty"`
}

// CaseFolder groups a lawyer, a client and the documents of one matter.
type CaseFolder struct {
	ID              string          `json:"id"`
	LawyerID        string          `json:"lawyerId"`
	ClientID        string          `json:"clientId"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	CaseNumber      string          `json:"caseNumber,omitempty"`
	Status          string          `json:"status"`
	Priority        string          `json:"priority"`
	CourtName       string          `json:"courtName,omitempty"`
	JudgeName       string          `json:"judgeName,omitempty"`
	NextHearingDate *time.Time      `json:"nextHearingDate,omitempty"`
	Notes           []Note          `json:"notes"`
	ImportantDates  []ImportantDate `json:"importantDates"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// AccessibleBy reports whether the given user may read this case.
func (cf CaseFolder) AccessibleBy(userID string) bool {
	return cf.LawyerID == userID || cf.ClientID == userID
}

func validStatus(s string) bool {
	return s == StatusActive || s == StatusClosed || s == StatusPending
}

func validPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
