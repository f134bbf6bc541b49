package voice

import "fmt"

// Phrase builds the announcement for hour:minute on a 12-hour clock,
// e.g. "午後、8時50分を、お知らせするのだ". Hour 0 and 12 are read as 12.
func Phrase(hour, minute int) string {
	period := "午後"
	if hour < 12 {
		period = "午前"
	}

	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}

	return fmt.Sprintf("%s、%d時%d分を、お知らせするのだ", period, h12, minute)
}
