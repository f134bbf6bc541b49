// Package scheduler holds the time-signal alarm list and decides, once per
// tick, whether an alarm fires.
//
// A single fire guard records the "H:M" key of the last fired alarm of any
// kind. It suppresses re-firing for the rest of that minute and is cleared at
// the zero second of a later minute. Because the guard is shared, the built-in
// daily chime and a user alarm set for the same minute cannot both fire.
package scheduler
