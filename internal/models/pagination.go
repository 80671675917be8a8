package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// QuestionFilter narrows the question listing. Search matches title or body.
type QuestionFilter struct {
	Status    *QuestionStatus
	CompanyID string
	Search    string
	Page      int
	PageSize  int
}

// ResponseFilter pages through one mentor's responses.
type ResponseFilter struct {
	MentorID string
	Page     int
	PageSize int
}
