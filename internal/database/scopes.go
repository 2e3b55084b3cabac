package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/teamtasks-api/internal/utils"
)

// Paginate limits a query to one page. A zero limit leaves the query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// Window pages by a 1-based page number and page size.
func Window(page, size int) func(db *gorm.DB) *gorm.DB {
	if page < 1 || size < 1 {
		return Paginate(utils.PaginationParams{})
	}
	return Paginate(utils.PaginationParams{Page: page, Limit: size, Offset: (page - 1) * size})
}
