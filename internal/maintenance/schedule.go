package maintenance

import "time"

// QuarterCount is the number of quarters in a PPM cycle
const QuarterCount = 4

// QuarterLabels are the display names used for quarters in exports and reminders
var QuarterLabels = [QuarterCount]string{"Q1", "Q2", "Q3", "Q4"}

// ChainQuarters derives the four quarter dates from the Q1 date.
// Every quarter is anchored on Q1 so that month-end dates do not drift:
// 31/01/2024 gives 30/04/2024, 31/07/2024 and 31/10/2024.
// An absent Q1 leaves all four quarters empty.
func ChainQuarters(q1 string) [QuarterCount]string {
	var dates [QuarterCount]string
	start, ok := ParseDate(q1)
	if !ok {
		return dates
	}
	for i := range dates {
		dates[i] = FormatDate(AddMonths(start, 3*i))
	}
	return dates
}

// QuarterEvaluation is a quarter with its derived status
type QuarterEvaluation struct {
	Label    string `json:"label"`
	Date     string `json:"date"`
	Engineer string `json:"engineer"`
	Status   Status `json:"status"`
}

// Evaluation is the computed schedule of a PPM record
type Evaluation struct {
	Quarters [QuarterCount]QuarterEvaluation `json:"quarters"`
	Status   Status                          `json:"status"`
}

// Evaluate computes per-quarter and overall status for already-scheduled quarters
func Evaluate(dates, engineers [QuarterCount]string, today time.Time) Evaluation {
	var ev Evaluation
	quarters := make([]Quarter, 0, QuarterCount)
	for i := 0; i < QuarterCount; i++ {
		q := NewQuarter(dates[i], engineers[i])
		quarters = append(quarters, q)
		ev.Quarters[i] = QuarterEvaluation{
			Label:    QuarterLabels[i],
			Date:     FormatDatePtr(q.Date),
			Engineer: engineers[i],
			Status:   QuarterStatus(q, today),
		}
	}
	ev.Status = ComputeStatus(quarters, today)
	return ev
}

// Schedule chains the quarters from q1 and evaluates them. It backs the
// create/edit form preview and every server-side write.
func Schedule(q1 string, engineers [QuarterCount]string, today time.Time) Evaluation {
	return Evaluate(ChainQuarters(q1), engineers, today)
}
