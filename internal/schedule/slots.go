package schedule

// EffectiveSchedule is the single resolved working window for one provider on
// one date, after the weekly template and any date exception have been merged.
// Open is false for a closed day (day off, or no template for that weekday);
// a closed schedule has no meaningful Start/End/Breaks.
type EffectiveSchedule struct {
	Open   bool      `json:"open"`
	Start  TimeOfDay `json:"start"`
	End    TimeOfDay `json:"end"`
	Breaks []Range   `json:"breaks"`
}

// Closed is the schedule of a day with no working hours.
func Closed() EffectiveSchedule { return EffectiveSchedule{} }

// Slots enumerates candidate appointment start times within the schedule.
// Candidates step by intervalMinutes from Start while the full service
// interval still fits before End; a candidate is dropped when its interval
// intersects any break. The result is ascending and nil when the schedule is
// closed, the inputs are non-positive, or nothing fits.
func Slots(s EffectiveSchedule, durationMinutes, intervalMinutes int) []TimeOfDay {
	if !s.Open || durationMinutes <= 0 || intervalMinutes <= 0 {
		return nil
	}
	var out []TimeOfDay
	for t := s.Start; t.Add(durationMinutes) <= s.End; t = t.Add(intervalMinutes) {
		if overlapsBreak(t, t.Add(durationMinutes), s.Breaks) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func overlapsBreak(start, end TimeOfDay, breaks []Range) bool {
	for _, b := range breaks {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
