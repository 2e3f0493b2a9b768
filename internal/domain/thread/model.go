package thread

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no thread matches.
var ErrNotFound = errors.New("thread not found")

// Thread is one conversation's serialized history plus derived listing
// metadata. The state blob is produced and consumed only by the agent run;
// everything else here is derived from it.
type Thread struct {
	ID           uint            `json:"-"`
	ThreadID     string          `json:"id"`
	State        json.RawMessage `json:"-"`
	Title        *string         `json:"title,omitempty"`
	Preview      *string         `json:"preview,omitempty"`
	MessageCount int             `json:"message_count"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SortField selects the listing sort column.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// SortOrder selects the listing direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilter narrows a listing query.
type ListFilter struct {
	IsActive *bool
}

// ListOptions carries sort and pagination parameters.
type ListOptions struct {
	Sort     SortField
	Order    SortOrder
	Page     int
	PageSize int
}

// Page is one page of listed threads.
type Page struct {
	Items      []*Thread `json:"items"`
	TotalCount int64     `json:"total_count"`
	HasMore    bool      `json:"has_more"`
}
