package maintenance

import (
	"strings"
	"time"
)

// Status is the derived maintenance state of a quarter or a piece of equipment
type Status string

const (
	StatusOverdue    Status = "Overdue"
	StatusUpcoming   Status = "Upcoming"
	StatusMaintained Status = "Maintained"
)

// Statuses lists every valid Status in display order
var Statuses = []Status{StatusOverdue, StatusUpcoming, StatusMaintained}

// ParseStatus matches s case-insensitively against the known statuses
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// Quarter is one maintenance checkpoint. A nil Date means the quarter has no
// usable target date and takes no part in classification.
type Quarter struct {
	Date     *time.Time
	Engineer string
}

// NewQuarter builds a Quarter from a DD/MM/YYYY date and an engineer name
func NewQuarter(date, engineer string) Quarter {
	return Quarter{Date: ParseDatePtr(date), Engineer: engineer}
}

// Fulfilled reports whether an engineer has been recorded for the quarter
func (q Quarter) Fulfilled() bool {
	return strings.TrimSpace(q.Engineer) != ""
}

// ComputeStatus derives the overall status of a set of quarters.
//
// A quarter whose date is before today is past, otherwise it is future (a date
// equal to today is not yet due). Any past quarter without an engineer makes the
// result Overdue. Otherwise any future quarter makes it Upcoming, and a history
// made only of fulfilled past quarters is Maintained. With nothing to classify
// the result is Upcoming.
func ComputeStatus(quarters []Quarter, today time.Time) Status {
	day := civil(today)
	var past, future int
	for _, q := range quarters {
		if q.Date == nil {
			continue
		}
		if civil(*q.Date).Before(day) {
			if !q.Fulfilled() {
				return StatusOverdue
			}
			past++
		} else {
			future++
		}
	}

	switch {
	case future > 0:
		return StatusUpcoming
	case past > 0:
		return StatusMaintained
	default:
		return StatusUpcoming
	}
}

// QuarterStatus applies ComputeStatus to a single quarter
func QuarterStatus(q Quarter, today time.Time) Status {
	return ComputeStatus([]Quarter{q}, today)
}

// ComputeOCMStatus derives the status of a corrective maintenance record.
// A service on or after the next maintenance date counts as Maintained.
func ComputeOCMStatus(serviceDate, nextMaintenance *time.Time, today time.Time) Status {
	if nextMaintenance == nil {
		return StatusUpcoming
	}
	next := civil(*nextMaintenance)
	if serviceDate != nil && !civil(*serviceDate).Before(next) {
		return StatusMaintained
	}
	if next.Before(civil(today)) {
		return StatusOverdue
	}
	return StatusUpcoming
}
