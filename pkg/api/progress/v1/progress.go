// Package progressv1 holds the request and response messages of the progress
// service. Messages travel as JSON with lowerCamelCase field names.
package progressv1

import "time"

type PaginationRequest struct {
	PageNo   int32 `json:"pageNo,omitempty"`
	PageSize int32 `json:"pageSize,omitempty"`
}

func (p *PaginationRequest) GetPageNo() int32 {
	if p == nil {
		return 0
	}
	return p.PageNo
}

func (p *PaginationRequest) GetPageSize() int32 {
	if p == nil {
		return 0
	}
	return p.PageSize
}

type PaginationResponse struct {
	Total  int32 `json:"total"`
	PageNo int32 `json:"pageNo,omitempty"`
}

// Progress is the scheduling state of one word for one user.
type Progress struct {
	Ease         float64    `json:"ease"`
	Interval     int32      `json:"interval"`
	ReviewCount  int32      `json:"reviewCount"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
	NextReview   *time.Time `json:"nextReview,omitempty"`
}

// VocabularyProgress is a catalog item merged with the user's progress on it.
type VocabularyProgress struct {
	Id          string    `json:"id"`
	Term        string    `json:"term"`
	Translation string    `json:"translation"`
	Group       string    `json:"group,omitempty"`
	Examples    []string  `json:"examples,omitempty"`
	Media       string    `json:"media,omitempty"`
	Progress    *Progress `json:"progress"`
	Tier        string    `json:"tier"`
	Due         bool      `json:"due"`
}

type GetProgressListRequest struct {
	UserId     string             `json:"userId"`
	Filter     string             `json:"filter,omitempty"`
	OrderBy    string             `json:"orderBy,omitempty"`
	Pagination *PaginationRequest `json:"pagination,omitempty"`
	Now        *time.Time         `json:"now,omitempty"`
}

func (r *GetProgressListRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *GetProgressListRequest) GetFilter() string {
	if r == nil {
		return ""
	}
	return r.Filter
}

func (r *GetProgressListRequest) GetOrderBy() string {
	if r == nil {
		return ""
	}
	return r.OrderBy
}

func (r *GetProgressListRequest) GetPagination() *PaginationRequest {
	if r == nil {
		return nil
	}
	return r.Pagination
}

func (r *GetProgressListRequest) GetNow() *time.Time {
	if r == nil {
		return nil
	}
	return r.Now
}

type GetProgressListResponse struct {
	Items      []*VocabularyProgress `json:"items"`
	Pagination *PaginationResponse   `json:"pagination,omitempty"`
}

type ReviewWordRequest struct {
	UserId  string `json:"userId"`
	WordId  string `json:"wordId"`
	Outcome string `json:"outcome"`
}

func (r *ReviewWordRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *ReviewWordRequest) GetWordId() string {
	if r == nil {
		return ""
	}
	return r.WordId
}

func (r *ReviewWordRequest) GetOutcome() string {
	if r == nil {
		return ""
	}
	return r.Outcome
}

type ReviewWordResponse struct {
	Progress *Progress `json:"progress"`
	Tier     string    `json:"tier"`
}

type GetDueListRequest struct {
	UserId  string     `json:"userId"`
	Filter  string     `json:"filter,omitempty"`
	OrderBy string     `json:"orderBy,omitempty"`
	Now     *time.Time `json:"now,omitempty"`
}

func (r *GetDueListRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *GetDueListRequest) GetFilter() string {
	if r == nil {
		return ""
	}
	return r.Filter
}

func (r *GetDueListRequest) GetOrderBy() string {
	if r == nil {
		return ""
	}
	return r.OrderBy
}

func (r *GetDueListRequest) GetNow() *time.Time {
	if r == nil {
		return nil
	}
	return r.Now
}

type GetDueListResponse struct {
	Items []*VocabularyProgress `json:"items"`
}

type GetProgressSummaryRequest struct {
	UserId string     `json:"userId"`
	Now    *time.Time `json:"now,omitempty"`
}

func (r *GetProgressSummaryRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *GetProgressSummaryRequest) GetNow() *time.Time {
	if r == nil {
		return nil
	}
	return r.Now
}

type ProgressSummary struct {
	Total       int32 `json:"total"`
	New         int32 `json:"new"`
	Learning    int32 `json:"learning"`
	NeedsReview int32 `json:"needsReview"`
	Mastered    int32 `json:"mastered"`
	Due         int32 `json:"due"`
}

type PurgeWordRequest struct {
	WordId string `json:"wordId"`
}

func (r *PurgeWordRequest) GetWordId() string {
	if r == nil {
		return ""
	}
	return r.WordId
}

type PurgeWordResponse struct {
	AffectedUsers int32 `json:"affectedUsers"`
}
