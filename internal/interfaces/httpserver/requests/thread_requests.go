package requests

// ListThreadsRequest binds the thread listing query parameters.
type ListThreadsRequest struct {
	IsActive *bool  `form:"isActive"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
