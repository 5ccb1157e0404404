package files

import "time"

// Comment is a short remark attached to a file by a case participant.
type Comment struct {
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileEntry is the record for one uploaded document. StorageKey points at
// the blob in the object store; MetadataID is set once extraction lands.
type FileEntry struct {
	ID                 string    `json:"id"`
	CaseID             string    `json:"caseId"`
	UploadedBy         string    `json:"uploadedBy"`
	StorageKey         string    `json:"storageKey"`
	OriginalName       string    `json:"originalName"`
	ContentType        string    `json:"contentType"`
	SizeBytes          int64     `json:"sizeBytes"`
	PageCount          int       `json:"pageCount,omitempty"`
	MetadataID         string    `json:"metadataId,omitempty"`
	IsSharedWithClient bool      `json:"isSharedWithClient"`
	Comments           []Comment `json:"comments"`
	UploadDate         time.Time `json:"uploadDate"`
}
