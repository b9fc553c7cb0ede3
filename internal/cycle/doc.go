// Package cycle computes drop cycle windows for sound circles.
//
// The resolver turns a circle's recurrence rule (daily/weekly/biweekly,
// anchor weekdays, time-of-day) and a reference instant into the next and two
// most recent drop instants. The classifier buckets submissions into
// current/previous/stale cycles against a resolved window. Both are pure;
// data access belongs to the caller.
package cycle
