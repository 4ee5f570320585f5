package dialog

import "time"

// TimeContext is the wall clock a turn is validated against. It replaces any
// process-wide timezone so validation stays a pure function of its inputs.
type TimeContext struct {
	Now      time.Time
	Location *time.Location
}

func NewTimeContext(now time.Time, loc *time.Location) TimeContext {
	if loc == nil {
		loc = time.UTC
	}
	return TimeContext{Now: now.In(loc), Location: loc}
}

// Today is midnight of the current day in the context's location
func (tc TimeContext) Today() time.Time {
	y, m, d := tc.Now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tc.location())
}

func (tc TimeContext) location() *time.Location {
	if tc.Location == nil {
		return time.UTC
	}
	return tc.Location
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
