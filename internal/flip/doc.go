// Package flip implements the digit flip engine of the clock face.
//
// Six slots (hour tens/ones, minute tens/ones, second tens/ones) each run a
// two-state machine: a changed digit is staged on the back face, the slot is
// marked as flipping, and after FlipDelay the staged digit is committed to the
// front face. Commits run on timers, so every slot can be mid-flip at once.
package flip
