package model

// Envelope 通用成功响应结构
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Error   string      `json:"error"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// SinglePage 为没有分页信息的列表生成单页默认值
func SinglePage(items int) Pagination {
	return Pagination{
		CurrentPage:  1,
		TotalPages:   1,
		TotalItems:   items,
		ItemsPerPage: items,
	}
}

// BulkDeleteRequest 批量删除请求
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}
