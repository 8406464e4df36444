package schedule

import (
	"reflect"
	"testing"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return v
}

func times(t *testing.T, ss ...string) []TimeOfDay {
	t.Helper()
	out := make([]TimeOfDay, len(ss))
	for i, s := range ss {
		out[i] = mustTime(t, s)
	}
	return out
}

func TestSlots(t *testing.T) {
	workday := EffectiveSchedule{
		Open:   true,
		Start:  mustTime(t, "09:00"),
		End:    mustTime(t, "17:00"),
		Breaks: []Range{{Start: mustTime(t, "12:00"), End: mustTime(t, "13:00")}},
	}

	tests := []struct {
		name     string
		sched    EffectiveSchedule
		duration int
		interval int
		want     []TimeOfDay
	}{
		{
			// A 60 minute service on a 09:00-17:00 day with a lunch break:
			// every candidate whose hour would touch 12:00-13:00 drops out,
			// and 16:30 does not fit before close.
			name:     "workday with lunch break",
			sched:    workday,
			duration: 60,
			interval: 30,
			want: times(t,
				"09:00", "09:30", "10:00", "10:30", "11:00",
				"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00"),
		},
		{
			name:     "thirty minute service fills up to the break edge",
			sched:    workday,
			duration: 30,
			interval: 60,
			want:     times(t, "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"),
		},
		{
			name:     "last slot ends exactly at close",
			sched:    EffectiveSchedule{Open: true, Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")},
			duration: 60,
			interval: 30,
			want:     times(t, "09:00"),
		},
		{
			name:     "service longer than the day",
			sched:    EffectiveSchedule{Open: true, Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")},
			duration: 90,
			interval: 30,
			want:     nil,
		},
		{
			name:     "closed day",
			sched:    Closed(),
			duration: 60,
			interval: 30,
			want:     nil,
		},
		{
			name:     "zero duration",
			sched:    workday,
			duration: 0,
			interval: 30,
			want:     nil,
		},
		{
			name:     "zero interval",
			sched:    workday,
			duration: 60,
			interval: 0,
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slots(tt.sched, tt.duration, tt.interval)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Slots() = %v, want %v", got, tt.want)
			}
		})
	}
}
