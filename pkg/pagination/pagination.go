package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/udhago/udhago-backend/pkg/common"
)

const (
	// DefaultLimit is the default number of items per page
	DefaultLimit = 10
	// MaxLimit is the maximum number of items per page
	MaxLimit = 50
	// DefaultPage is the first page
	DefaultPage = 1
)

// Params represents page-based pagination parameters
type Params struct {
	Page  int
	Limit int
}

// Offset converts the page number to a row offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseParams extracts and sanitizes pagination parameters from the request
func ParseParams(c *gin.Context) Params {
	params := Params{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit))); err == nil && limit > 0 {
		params.Limit = limit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}

	return params
}

// BuildMeta creates pagination metadata for responses
func BuildMeta(params Params, total int64) *common.Meta {
	meta := &common.Meta{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}

	if params.Limit > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	return meta
}
