package variant

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// partialDateRegex matches a YYYY-MM-DD (or YYYY:MM:DD) literal with an
// optional, increasingly specific HH:MM:SS suffix. Grounded verbatim on
// util::mod's DATE_REGEX.
var partialDateRegex = regexp.MustCompile(`(\d{4})(-|:)(\d{1,2})(-|:)(\d{1,2}) ?(\d{1,2})?:?(\d{1,2})?:?(\d{1,2})?`)

// parsePartialDate matches s against partialDateRegex and, on success,
// widens whichever of hour/minute/second was not given to the full range
// of that field (so "2021-05-01" ranges over the whole day, "2021-05-01
// 14" ranges over that hour, and so on).
//
// The second's "finish" end intentionally reuses minStart rather than
// secStart when a second is given, and the missing-component widened end
// is always 23 regardless of which field is missing — both quirks are
// carried over unchanged from util::parse_datetime, which this function
// mirrors field for field.
func parsePartialDate(s string, loc *time.Location) (time.Time, time.Time, bool) {
	m := partialDateRegex.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	month, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	day, err := strconv.Atoi(m[5])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	var hourStart, hourFinish, minStart, minFinish, secStart, secFinish int

	if m[6] != "" {
		hourStart, _ = strconv.Atoi(m[6])
		hourFinish = hourStart
	} else {
		hourStart, hourFinish = 0, 23
	}

	if m[7] != "" {
		minStart, _ = strconv.Atoi(m[7])
		minFinish = minStart
	} else {
		minStart, minFinish = 0, 23
	}

	if m[8] != "" {
		secStart, _ = strconv.Atoi(m[8])
		secFinish = minStart
	} else {
		secStart, secFinish = 0, 23
	}

	start := time.Date(year, time.Month(month), day, hourStart, minStart, secStart, 0, loc)
	finish := time.Date(year, time.Month(month), day, hourFinish, minFinish, secFinish, 0, loc)
	return start, finish, true
}

// parseNaturalDate falls back to a free-form natural-language parse (e.g.
// "may 1 2021", "2 days ago") when s does not match the strict partial
// date form. Grounded on util::parse_datetime's fallback to the dtparse
// crate; github.com/araddon/dateparse is the closest Go ecosystem
// equivalent (no pack example imports a date-parsing library, so this is
// an out-of-pack ecosystem pick, named here per the grounding ledger
// rather than sourced from the pack).
func parseNaturalDate(s string, _ time.Time) (time.Time, error) {
	return dateparse.ParseLocal(s)
}
