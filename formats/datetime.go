package formats

import (
	"regexp"
	"strconv"
	"time"
)

const (
	fullDate    = `(?P<year>\d{4})-(?P<month>\d{2})-(?P<day>\d{2})`
	partialTime = `(?P<hour>\d{2}):(?P<minute>\d{2}):(?P<second>\d{2})(\.(?P<frac>\d+))?`
	timeOffset  = `(Z|(?P<tzsign>[+\-])(?P<tzhour>\d{2}):(?P<tzminute>\d{2}))`
	fullTime    = partialTime + timeOffset
)

var (
	dateTimeRE = regexp.MustCompile(`^` + fullDate + `T` + fullTime + `$`)
	dateRE     = regexp.MustCompile(`^` + fullDate + `$`)
	timeRE     = regexp.MustCompile(`^` + fullTime + `$`)
)

// RFC 3339 date-time, full-date and full-time.
func DateTime() Format { return Strings("date-time", parsedWith(dateTimeRE, validDate, validTime)) }
func Date() Format     { return Strings("date", parsedWith(dateRE, validDate)) }
func Time() Format     { return Strings("time", parsedWith(timeRE, validTime)) }

type fields map[string]string

func (f fields) int(name string) int {
	n, err := strconv.Atoi(f[name])
	if err != nil {
		return -1
	}
	return n
}

func parsedWith(re *regexp.Regexp, tests ...func(fields) bool) func(string) bool {
	return func(s string) bool {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return false
		}
		f := make(fields)
		for i, name := range re.SubexpNames() {
			if name != "" {
				f[name] = m[i]
			}
		}
		for _, t := range tests {
			if !t(f) {
				return false
			}
		}
		return true
	}
}

func validDate(f fields) bool {
	year, month, day := f.int("year"), f.int("month"), f.int("day")
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	// day 0 of the next month is the last day of this one
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day <= last
}

func validTime(f fields) bool {
	if f.int("hour") > 23 || f.int("minute") > 59 || f.int("second") > 59 {
		return false
	}
	if frac := f["frac"]; frac != "" {
		n, err := strconv.Atoi(frac)
		if err != nil || n > 999999 {
			return false
		}
	}
	if f["tzhour"] != "" && (f.int("tzhour") > 23 || f.int("tzminute") > 59) {
		return false
	}
	return true
}
