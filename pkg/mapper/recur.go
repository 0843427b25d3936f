package mapper

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupportedRecurrence means a Todoist recurrence string has no
// Taskwarrior recur equivalent this parser understands.
var ErrUnsupportedRecurrence = errors.New("unsupported recurrence")

// Pattern atoms shared by the recurrence forms below.
const (
	reEvery  = `ev(ery)?`
	rePeriod = `(?P<period>hour|day|week|month|year)s?`
	reCycles = `((?P<cycles>\d+)(st|nd|rd|th)?)`
	reOther  = `(?P<other>other)`
	reSimple = `(?P<simple>daily|weekly|monthly|yearly)`
	reDOW    = `((?P<dayofweek>(` +
		`mo(n(day)?)?` +
		`|tu(e(s(day)?)?)?` +
		`|we(d(s|(nes(day)?)?)?)?` +
		`|th(u(rs(day)?)?)?` +
		`|fr(i(day)?)?` +
		`|sa(t(urday)?)?` +
		`|su(n(day)?)?` +
		`)))`
	// Trailing time-of-day qualifiers carry no recurrence information.
	reIgnored = `(\sat (\d{1,2}:\d{1,2})|(\d{1,2}(am|pm)))?`
)

var (
	// daily | every day | every 1 day
	reSingleCycle = regexp.MustCompile(
		fmt.Sprintf(`^((%s\s(1\s)?%s)|%s)%s$`, reEvery, rePeriod, reSimple, reIgnored))

	// every N <period>s | every other <period>
	reMultiCycle = regexp.MustCompile(
		fmt.Sprintf(`^%s\s(%s|other)\s%s%s$`, reEvery, reCycles, rePeriod, reIgnored))

	// every monday | every 2nd tuesday | every other friday
	reEveryDOW = regexp.MustCompile(
		fmt.Sprintf(`^%s\s((%s|%s)\s)?%s%s$`, reEvery, reCycles, reOther, reDOW, reIgnored))

	// every 15th
	reEveryDOM = regexp.MustCompile(
		fmt.Sprintf(`^%s\s%s%s$`, reEvery, reCycles, reIgnored))

	// every morning | every workday | every last day
	reSpecial = regexp.MustCompile(
		fmt.Sprintf(`^%s\s(?P<label>morning|evening|weekday|workday|last\sday)$`, reEvery))
)

var periodToSimple = map[string]string{
	"hour":  "hourly",
	"day":   "daily",
	"week":  "weekly",
	"month": "monthly",
	"year":  "yearly",
}

// ParseRecur translates a Todoist natural-language recurrence string into a
// Taskwarrior recur value. Note that Todoist setting a due string does not
// imply recurrence; callers should check the due object's is_recurring flag
// first.
func ParseRecur(dueString string) (string, error) {
	if dueString == "" {
		return "", nil
	}
	// Normalize: lowercase, trim, collapse internal whitespace.
	normalized := strings.Join(strings.Fields(strings.ToLower(dueString)), " ")

	for _, parse := range []func(string) string{
		recurSingleCycle,
		recurMultiCycle,
		recurDayOfWeek,
		recurDayOfMonth,
		recurSpecial,
	} {
		if result := parse(normalized); result != "" {
			return result, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedRecurrence, dueString)
}

func namedGroups(re *regexp.Regexp, s string) map[string]string {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && match[i] != "" {
			groups[name] = match[i]
		}
	}
	return groups
}

func recurSingleCycle(s string) string {
	groups := namedGroups(reSingleCycle, s)
	if groups == nil {
		return ""
	}
	if simple := groups["simple"]; simple != "" {
		return simple
	}
	return periodToSimple[groups["period"]]
}

func recurMultiCycle(s string) string {
	groups := namedGroups(reMultiCycle, s)
	if groups == nil {
		return ""
	}
	cycles := groups["cycles"]
	if cycles == "" {
		cycles = "2" // "other" matched
	}
	return fmt.Sprintf("%s %ss", cycles, groups["period"])
}

func recurDayOfWeek(s string) string {
	groups := namedGroups(reEveryDOW, s)
	if groups == nil {
		return ""
	}
	cycles := "1"
	if groups["cycles"] != "" {
		cycles = groups["cycles"]
	} else if groups["other"] != "" {
		cycles = "2"
	}
	if cycles == "1" {
		return "weekly"
	}
	return fmt.Sprintf("%s weeks", cycles)
}

func recurDayOfMonth(s string) string {
	if namedGroups(reEveryDOM, s) == nil {
		return ""
	}
	return "monthly"
}

func recurSpecial(s string) string {
	groups := namedGroups(reSpecial, s)
	if groups == nil {
		return ""
	}
	switch groups["label"] {
	case "morning", "evening":
		return "daily"
	case "weekday", "workday":
		return "weekdays"
	case "last day":
		return "monthly"
	}
	return ""
}
