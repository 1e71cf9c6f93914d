package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/styrkr/styrkr/internal/calendar"
)

func TestNextOccurrence(t *testing.T) {
	monday := calendar.NewDate(2026, time.March, 2)
	tests := []struct {
		name    string
		from    calendar.Date
		weekday time.Weekday
		want    string
	}{
		{name: "same weekday advances a full week", from: monday, weekday: time.Monday, want: "2026-03-09"},
		{name: "later in week", from: monday, weekday: time.Thursday, want: "2026-03-05"},
		{name: "wraps into next week", from: monday.AddDays(5), weekday: time.Monday, want: "2026-03-09"},
		{name: "sunday from saturday", from: monday.AddDays(5), weekday: time.Sunday, want: "2026-03-08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.NextOccurrence(tt.weekday).String(); got != tt.want {
				t.Errorf("NextOccurrence() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSameWeek(t *testing.T) {
	monday := calendar.NewDate(2026, time.March, 2)
	sunday := monday.AddDays(6)
	nextMonday := monday.AddDays(7)

	if !monday.SameWeek(sunday, time.Monday) {
		t.Error("Monday and Sunday should share a Monday-start week")
	}
	if monday.SameWeek(nextMonday, time.Monday) {
		t.Error("consecutive Mondays should not share a week")
	}
	if monday.SameWeek(sunday, time.Sunday) {
		t.Error("Monday and the following Sunday should not share a Sunday-start week")
	}
	if got := sunday.StartOfWeek(time.Monday); got != monday {
		t.Errorf("StartOfWeek() = %s, want %s", got, monday)
	}
}

func TestJSON(t *testing.T) {
	in := map[calendar.Date]string{calendar.NewDate(2026, time.March, 2): "SQUAT_DAY"}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"2026-03-02":"SQUAT_DAY"}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
	var out map[calendar.Date]string
	if err = json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out[calendar.NewDate(2026, time.March, 2)] != "SQUAT_DAY" {
		t.Errorf("Unmarshal() = %v", out)
	}
	if _, err = calendar.Parse("2026-13-01"); err == nil {
		t.Error("Parse() accepted month 13")
	}
}

func TestDaysUntil(t *testing.T) {
	a := calendar.NewDate(2026, time.March, 28)
	b := calendar.NewDate(2026, time.April, 4)
	if got := a.DaysUntil(b); got != 7 {
		t.Errorf("DaysUntil() = %d, want 7", got)
	}
	if got := b.DaysUntil(a); got != -7 {
		t.Errorf("DaysUntil() = %d, want -7", got)
	}
}
