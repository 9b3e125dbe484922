package pedigree

import (
	"fmt"
	"time"
)

// AgeSpan is an age in whole years and months.
type AgeSpan struct {
	Years  int    `json:"years"`
	Months int    `json:"months"`
	Text   string `json:"text"`
}

// Age measures from dob to now by calendar date in UTC. A month only counts
// once its day of month has been reached. Nil is returned for an unknown
// date of birth or one after now.
func Age(dob *time.Time, now time.Time) *AgeSpan {
	if dob == nil {
		return nil
	}
	by, bm, bd := dob.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	months := (ny-by)*12 + int(nm) - int(bm)
	if nd < bd {
		months--
	}
	if months < 0 {
		return nil
	}
	span := &AgeSpan{Years: months / 12, Months: months % 12}
	span.Text = formatAge(span.Years, span.Months)
	return span
}

func formatAge(years, months int) string {
	switch {
	case years == 0:
		return plural(months, "month")
	case months == 0:
		return plural(years, "year")
	default:
		return plural(years, "year") + ", " + plural(months, "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
