package cases

import "time"

type createRequest struct {
	ClientID        string     `json:"clientId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CaseNumber      string     `json:"caseNumber"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	CourtName       string     `json:"courtName"`
	JudgeName       string     `json:"judgeName"`
	NextHearingDate *time.Time `json:"nextHearingDate"`
}

type updateRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	CaseNumber      *string    `json:"caseNumber"`
	Status          *string    `json:"status"`
	Priority        *string    `json:"priority"`
	CourtName       *string    `json:"courtName"`
	JudgeName       *string    `json:"judgeName"`
	NextHearingDate *time.Time `json:"nextHearingDate"`
}

type noteRequest struct {
	Text string `json:"text"`
}

type listResponse struct {
	Cases []CaseFolder `json:"cases"`
}
