package service

import (
	"math"
	"sort"
	"time"

	"hospital-equipment-tracker/internal/maintenance"
)

// UpcomingItem is one maintenance task falling inside the reminder window
type UpcomingItem struct {
	Type       string `json:"type"`
	Department string `json:"department"`
	Serial     string `json:"serial"`
	Name       string `json:"name"`
	Task       string `json:"task"`
	DueDate    string `json:"due_date"`
	Engineer   string `json:"engineer"`
	DaysUntil  int    `json:"days_until"`

	due time.Time
}

// collectUpcoming gathers PPM quarters and OCM next-maintenance dates that
// fall between today and today+days, soonest first
func collectUpcoming(ppm []PPMView, ocm []OCMView, today time.Time, days int) []UpcomingItem {
	var items []UpcomingItem

	for _, e := range ppm {
		for _, q := range e.Quarters {
			due, ok := maintenance.ParseDate(q.Date)
			if !ok || !maintenance.DueWithin(due, today, days) {
				continue
			}
			items = append(items, UpcomingItem{
				Type:       "PPM",
				Department: e.Department,
				Serial:     e.Serial,
				Name:       e.Name,
				Task:       "Quarter " + q.Label,
				DueDate:    q.Date,
				Engineer:   q.Engineer,
				due:        due,
			})
		}
	}

	for _, e := range ocm {
		due, ok := maintenance.ParseDate(e.NextMaintenance)
		if !ok || !maintenance.DueWithin(due, today, days) {
			continue
		}
		items = append(items, UpcomingItem{
			Type:       "OCM",
			Department: e.Department,
			Serial:     e.Serial,
			Name:       e.Name,
			Task:       "Next Maintenance",
			DueDate:    e.NextMaintenance,
			Engineer:   e.Engineer,
			due:        due,
		})
	}

	for i := range items {
		items[i].DaysUntil = int(math.Round(items[i].due.Sub(today).Hours() / 24))
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].due.Equal(items[j].due) {
			return items[i].due.Before(items[j].due)
		}
		return items[i].Serial < items[j].Serial
	})
	return items
}
