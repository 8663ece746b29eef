package service

// MaxPageSize is the largest page a list query may request.
const MaxPageSize = 100

// ValidatePagination reports whether pageNumber > 0 and 0 < pageSize <= MaxPageSize.
// Invalid values are rejected, never clamped.
func ValidatePagination(pageNumber, pageSize int) bool {
	return pageNumber > 0 && pageSize > 0 && pageSize <= MaxPageSize
}
