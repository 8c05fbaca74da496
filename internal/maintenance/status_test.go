package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var june15 = date(2024, time.June, 15)

func q(d, engineer string) Quarter {
	return NewQuarter(d, engineer)
}

func TestComputeStatusScenarios(t *testing.T) {
	tests := []struct {
		name     string
		quarters []Quarter
		want     Status
	}{
		{
			name: "past quarter without engineer is overdue",
			quarters: []Quarter{
				q("01/01/2024", "Alice"),
				q("01/04/2024", ""),
				q("01/07/2024", ""),
				q("01/10/2024", ""),
			},
			want: StatusOverdue,
		},
		{
			name: "fulfilled history with future work is upcoming",
			quarters: []Quarter{
				q("01/01/2024", "Alice"),
				q("01/04/2024", "Bob"),
				q("01/07/2024", ""),
				q("", ""),
			},
			want: StatusUpcoming,
		},
		{
			name: "all past and fulfilled is maintained",
			quarters: []Quarter{
				q("01/06/2023", "Alice"),
				q("01/09/2023", "Bob"),
				q("01/12/2023", "Carol"),
				q("01/03/2024", "Dan"),
			},
			want: StatusMaintained,
		},
		{
			name:     "invalid q1 leaves nothing to classify",
			quarters: quartersFromChain("31/02/2024", [QuarterCount]string{}),
			want:     StatusUpcoming,
		},
		{
			name:     "no quarters at all",
			quarters: nil,
			want:     StatusUpcoming,
		},
		{
			name: "whitespace engineer is unfulfilled",
			quarters: []Quarter{
				q("01/01/2024", "   "),
				q("01/12/2024", ""),
			},
			want: StatusOverdue,
		},
		{
			name: "date equal to today is future",
			quarters: []Quarter{
				q("15/06/2024", ""),
			},
			want: StatusUpcoming,
		},
		{
			name: "unparseable dates are ignored",
			quarters: []Quarter{
				q("2024-01-01", ""),
				q("01/01/2024", "Alice"),
			},
			want: StatusMaintained,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.quarters, june15))
		})
	}
}

func TestOverdueDominates(t *testing.T) {
	// one unfulfilled past quarter mixed with every other kind of quarter
	others := [][]Quarter{
		{q("01/12/2024", "")},
		{q("01/01/2024", "Alice")},
		{q("01/12/2024", "Bob"), q("01/02/2024", "Alice")},
		{q("bad", "")},
	}
	for _, rest := range others {
		quarters := append([]Quarter{q("01/05/2024", "")}, rest...)
		assert.Equal(t, StatusOverdue, ComputeStatus(quarters, june15))
		// order must not matter
		reversed := append(append([]Quarter{}, rest...), q("01/05/2024", ""))
		assert.Equal(t, StatusOverdue, ComputeStatus(reversed, june15))
	}
}

func TestUpcomingWhenFutureAndNothingOverdue(t *testing.T) {
	sets := [][]Quarter{
		{q("16/06/2024", "")},
		{q("01/01/2024", "Alice"), q("01/01/2025", "")},
		{q("01/01/2024", "Alice"), q("01/01/2025", "Bob"), q("", "")},
	}
	for _, set := range sets {
		assert.Equal(t, StatusUpcoming, ComputeStatus(set, june15))
	}
}

func TestMaintainedWhenAllPastFulfilled(t *testing.T) {
	sets := [][]Quarter{
		{q("14/06/2024", "Alice")},
		{q("01/01/2024", "Alice"), q("01/02/2024", "Bob"), q("", "")},
	}
	for _, set := range sets {
		assert.Equal(t, StatusMaintained, ComputeStatus(set, june15))
	}
}

func TestComputeStatusIsIdempotent(t *testing.T) {
	quarters := []Quarter{
		q("01/01/2024", "Alice"),
		q("01/04/2024", ""),
		q("01/07/2024", "Bob"),
	}
	first := ComputeStatus(quarters, june15)
	second := ComputeStatus(quarters, june15)
	assert.Equal(t, first, second)
	assert.Equal(t, "", quarters[1].Engineer)
}

func TestComputeStatusIgnoresClockTime(t *testing.T) {
	lateToday := time.Date(2024, time.June, 15, 23, 59, 0, 0, time.Local)
	assert.Equal(t, StatusUpcoming, ComputeStatus([]Quarter{q("15/06/2024", "")}, lateToday))
}

func TestQuarterStatus(t *testing.T) {
	assert.Equal(t, StatusMaintained, QuarterStatus(q("01/01/2024", "Alice"), june15))
	assert.Equal(t, StatusOverdue, QuarterStatus(q("01/04/2024", ""), june15))
	assert.Equal(t, StatusUpcoming, QuarterStatus(q("01/07/2024", ""), june15))
	assert.Equal(t, StatusUpcoming, QuarterStatus(q("", ""), june15))
}

func TestComputeOCMStatus(t *testing.T) {
	past := date(2024, time.May, 1)
	future := date(2024, time.August, 1)
	later := date(2024, time.September, 1)

	assert.Equal(t, StatusUpcoming, ComputeOCMStatus(nil, nil, june15))
	assert.Equal(t, StatusOverdue, ComputeOCMStatus(nil, &past, june15))
	assert.Equal(t, StatusUpcoming, ComputeOCMStatus(nil, &future, june15))
	assert.Equal(t, StatusMaintained, ComputeOCMStatus(&later, &future, june15))
	assert.Equal(t, StatusMaintained, ComputeOCMStatus(&past, &past, june15))
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" overdue ")
	assert.True(t, ok)
	assert.Equal(t, StatusOverdue, st)

	_, ok = ParseStatus("Due Soon")
	assert.False(t, ok)
}

func quartersFromChain(q1 string, engineers [QuarterCount]string) []Quarter {
	dates := ChainQuarters(q1)
	out := make([]Quarter, 0, QuarterCount)
	for i := range dates {
		out = append(out, NewQuarter(dates[i], engineers[i]))
	}
	return out
}
