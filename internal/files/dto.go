package files

type uploadResponse struct {
	File            FileEntry `json:"file"`
	ExtractionJobID string    `json:"extractionJobId,omitempty"`
}

type listResponse struct {
	Files []FileEntry `json:"files"`
}

type recentResponse struct {
	Files []RecentFile `json:"files"`
}

type shareRequest struct {
	Shared bool `json:"shared"`
}

type commentRequest struct {
	Text string `json:"text"`
}
