package metadata

import "time"

// Parties names the opposing sides of a matter.
type Parties struct {
	Petitioner string `json:"petitioner,omitempty"`
	Respondent string `json:"respondent,omitempty"`
}

// Fields is the structured result of one extraction run. Every field is
// optional; the model answers null for anything it cannot find. Dates stay
// as ISO strings because the model's formatting is not guaranteed.
type Fields struct {
	DocumentType    string   `json:"documentType,omitempty"`
	PetitionType    string   `json:"petitionType,omitempty"`
	CourtName       string   `json:"courtName,omitempty"`
	Bench           []string `json:"bench,omitempty"`
	CaseTitle       string   `json:"caseTitle,omitempty"`
	CaseNumber      string   `json:"caseNumber,omitempty"`
	FiledDate       string   `json:"filedDate,omitempty"`
	DateOfJudgment  string   `json:"dateOfJudgment,omitempty"`
	CaseStatus      string   `json:"caseStatus,omitempty"`
	PartiesInvolved Parties  `json:"partiesInvolved,omitempty"`
	Advocates       []string `json:"advocates,omitempty"`
	LegalIssues     []string `json:"legalIssues,omitempty"`
	Citations       []string `json:"citations,omitempty"`
	Statutes        []string `json:"statutes,omitempty"`
	RelevantRules   []string `json:"relevantRules,omitempty"`
	ReliefSought    string   `json:"reliefSought,omitempty"`
	Verdict         string   `json:"verdict,omitempty"`
	DamagesAwarded  string   `json:"damagesAwarded,omitempty"`
	Deadlines       []string `json:"deadlines,omitempty"`
	NextHearingDate string   `json:"nextHearingDate,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	RelatedCases    []string `json:"relatedCases,omitempty"`
	CaseSummary     string   `json:"caseSummary,omitempty"`
}

// Record is a persisted extraction result linked to its file entry.
type Record struct {
	ID        string    `json:"id"`
	FileID    string    `json:"fileId"`
	CaseID    string    `json:"caseId"`
	Fields    Fields    `json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
}
