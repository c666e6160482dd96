package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Bounds describes the default and maximum page size of an endpoint.
type Bounds struct {
	Default int
	Max     int
}

var (
	// Registry lists (doctors, patients, menus).
	Registry = Bounds{Default: 100, Max: 500}
	// Records lists (procedures).
	Records = Bounds{Default: 50, Max: 200}
)

// FromContext extracts skip/limit query parameters from the gin context.
// Missing or invalid values fall back to defaults; limit is capped at b.Max.
func FromContext(c *gin.Context, b Bounds) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = b.Default
	}
	if limit > b.Max {
		limit = b.Max
	}

	skip, err := strconv.Atoi(c.Query("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}

	return Params{Skip: skip, Limit: limit}
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int64) bool {
	return int64(p.Skip+p.Limit) < total
}
