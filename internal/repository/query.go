package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ListQuery filters and pages a list of records.
// PerPage <= 0 disables pagination.
type ListQuery struct {
	Search     string
	Department string
	Page       int
	PerPage    int
	Sort       string
	Dir        string
}

// Offset returns the row offset for the requested page
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.PerPage <= 0 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// applyFilters adds search and department conditions. Search matches any of
// the given columns with a case-insensitive substring match.
func applyFilters(db *gorm.DB, q ListQuery, searchColumns []string) *gorm.DB {
	if dept := strings.TrimSpace(q.Department); dept != "" {
		db = db.Where("department = ?", dept)
	}
	if term := strings.TrimSpace(q.Search); term != "" && len(searchColumns) > 0 {
		like := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, 0, len(searchColumns))
		args := make([]interface{}, 0, len(searchColumns))
		for _, col := range searchColumns {
			clauses = append(clauses, "LOWER("+col+") LIKE ?")
			args = append(args, like)
		}
		db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return db
}

// applyOrder sorts by a whitelisted column, falling back to def
func applyOrder(db *gorm.DB, q ListQuery, allowed map[string]string, def string) *gorm.DB {
	col, ok := allowed[strings.ToLower(q.Sort)]
	if !ok {
		col = def
	}
	dir := "ASC"
	if strings.EqualFold(q.Dir, "desc") {
		dir = "DESC"
	}
	return db.Order(col + " " + dir)
}

func applyPage(db *gorm.DB, q ListQuery) *gorm.DB {
	if q.PerPage <= 0 {
		return db
	}
	return db.Offset(q.Offset()).Limit(q.PerPage)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
