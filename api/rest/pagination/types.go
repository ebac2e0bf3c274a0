package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// limit/offset window of a listing request
type Params struct {
	Limit  int
	Offset int
}

// pagination block returned next to a listing
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// clamps limit to (0, maxLimit] falling back to defaultLimit, and offset to >= 0
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// reads ?limit= and ?offset=; unparsable values fall back to the defaults
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil {
		offset = 0
	}

	return DefaultParams(limit, offset, defaultLimit, maxLimit)
}
