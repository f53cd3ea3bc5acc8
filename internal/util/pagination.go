package util

import (
	"strconv"

	"github.com/SeakMengs/EventHub/internal/constant"
	"github.com/gin-gonic/gin"
)

type Pagination struct {
	Page     uint `json:"page"`
	PageSize uint `json:"pageSize"`
}

func (p Pagination) Offset() int {
	return int((p.Page - 1) * p.PageSize)
}

func CalculateTotalPage(totalItems int64, pageSize uint) int {
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}
	if totalItems == 0 {
		return 1
	}
	totalPage := int(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) != 0 {
		totalPage++
	}
	return totalPage
}

// Reads ?page= and ?pageSize= from the query. Invalid values fall back to defaults.
func ParsePagination(ctx *gin.Context) Pagination {
	p := Pagination{Page: 1, PageSize: constant.DefaultPageSize}

	if page, err := strconv.ParseUint(ctx.Query("page"), 10, 32); err == nil && page > 0 {
		p.Page = uint(page)
	}
	if size, err := strconv.ParseUint(ctx.Query("pageSize"), 10, 32); err == nil && size > 0 {
		p.PageSize = min(uint(size), constant.MaxPageSize)
	}

	return p
}
