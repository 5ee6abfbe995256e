package domain

// Paginated describes the position of a page within a larger result set.
type Paginated struct {
	Count      int64 `json:"count"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
	Current    int   `json:"current"`
}

func NewPaginated(count int64, page, limit int) Paginated {
	totalPages := int(count) / limit
	if int(count)%limit != 0 {
		totalPages++
	}
	return Paginated{
		Count:      count,
		PageSize:   limit,
		TotalPages: totalPages,
		Current:    page,
	}
}

func PageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
