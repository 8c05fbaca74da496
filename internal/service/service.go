package service

import (
	"fmt"
	"time"

	"hospital-equipment-tracker/internal/maintenance"
	"hospital-equipment-tracker/internal/repository"

	"go.uber.org/zap"
)

// Page is one page of a list response
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func newPage[T any](items []T, total int64, q repository.ListQuery) *Page[T] {
	if items == nil {
		items = []T{}
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return &Page[T]{Items: items, Total: total, Page: page, PerPage: q.PerPage}
}

// paginate slices an already filtered list in memory
func paginate[T any](items []T, q repository.ListQuery) []T {
	if q.PerPage <= 0 {
		return items
	}
	start := q.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + q.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// clock supplies the current time; tests replace now
type clock struct {
	now func() time.Time
}

func (c clock) current() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c clock) today() time.Time {
	return maintenance.Today(c.current())
}

// auditor writes audit entries. Failures are logged and never fail the caller.
type auditor struct {
	repo *repository.AuditRepository
	log  *zap.Logger
}

func (a auditor) record(userID uint, action, format string, args ...interface{}) {
	if a.repo == nil {
		return
	}
	var userIDPtr *uint
	if userID != 0 {
		userIDPtr = &userID
	}
	details := fmt.Sprintf(format, args...)
	if err := a.repo.CreateAuditLog(userIDPtr, action, details); err != nil {
		a.log.Warn("Failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}
