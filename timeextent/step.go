// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package timeextent

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// MinFixed is the shortest fixed step; positions have second precision.
const MinFixed = time.Second

// Step is the distance between two time positions. Calendar parts keep the
// start's day of month, clamped to the last day of shorter months.
type Step struct {
	Years  int
	Months int
	Days   int
	Fixed  time.Duration
}

// Valid returns whether the step moves time forward
func (s Step) Valid() bool {
	if s.Years < 0 || s.Months < 0 || s.Days < 0 || s.Fixed < 0 {
		return false
	}
	if s.Fixed > 0 && s.Fixed < MinFixed {
		return false
	}
	return s.Years > 0 || s.Months > 0 || s.Days > 0 || s.Fixed > 0
}

// IsFixed returns whether the step has no calendar parts
func (s Step) IsFixed() bool {
	return s.Years == 0 && s.Months == 0 && s.Days == 0 && s.Fixed > 0
}

// At returns the i-th position after start. Positions are computed from start
// rather than from each other so month-end clamping does not accumulate.
func (s Step) At(start time.Time, i int) time.Time {
	t := start
	if months := i * (12*s.Years + s.Months); months != 0 {
		t = addMonths(start, months)
	}
	return t.AddDate(0, 0, i*s.Days).Add(time.Duration(i) * s.Fixed)
}

// addMonths moves t by n months, clamping the day so that Jan 31 + 1 month is
// Feb 28 (or 29) rather than early March.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// ParseStep never fails. It tries, in order: an ISO-8601 duration made of
// fixed-length parts ("P1D", "PT10M"), a fixed frequency token ("1D", "6H",
// "30min"), a calendar alias ("1MS", "3M", "1YS"), and then the step with its
// leading "P" stripped as a calendar token ("1Y6M", "1MT12H"). Anything else,
// including a fixed step under MinFixed, is the zero Step, which callers treat
// as a single position.
func ParseStep(step string) Step {
	step = strings.TrimSpace(step)
	if fixed, ok := fixedStep(step); ok {
		if fixed < MinFixed {
			return Step{}
		}
		return Step{Fixed: fixed}
	}
	if s, ok := calendarToken(step); ok {
		return s
	}
	if s, ok := calendarStep(strings.TrimPrefix(strings.ToUpper(step), "P")); ok {
		return s
	}
	return Step{}
}

func fixedStep(step string) (time.Duration, bool) {
	if strings.HasPrefix(strings.ToUpper(step), "P") {
		d, err := duration.Parse(strings.ToUpper(step))
		if err != nil || d.Negative || d.Years != 0 || d.Months != 0 {
			return 0, false
		}
		fixed := d.ToTimeDuration()
		return fixed, fixed > 0
	}
	return frequencyToken(step)
}

var frequencyPattern = regexp.MustCompile(`^(\d*)\s*([A-Za-z]+)$`)

// Aliases are case sensitive: "MS" is month start, not milliseconds.
// Sub-second aliases ("L", "ms", "us", "N") are not listed; they always
// degrade to a single position.
var frequencyUnits = map[string]time.Duration{
	"W":   7 * 24 * time.Hour,
	"D":   24 * time.Hour,
	"H":   time.Hour,
	"h":   time.Hour,
	"T":   time.Minute,
	"min": time.Minute,
	"S":   time.Second,
	"s":   time.Second,
}

var calendarUnits = map[string]Step{
	"M":  {Months: 1},
	"MS": {Months: 1},
	"ME": {Months: 1},
	"Q":  {Months: 3},
	"QS": {Months: 3},
	"A":  {Years: 1},
	"AS": {Years: 1},
	"Y":  {Years: 1},
	"YS": {Years: 1},
}

// frequencyToken understands the short fixed-frequency aliases
// ("1D", "6H", "30min") that some catalogs advertise without a "P".
func frequencyToken(token string) (time.Duration, bool) {
	n, unit, ok := splitToken(token)
	if !ok {
		return 0, false
	}
	d, ok := frequencyUnits[unit]
	if !ok {
		return 0, false
	}
	return time.Duration(n) * d, true
}

// calendarToken understands month, quarter and year aliases ("1MS", "3M", "1YS")
func calendarToken(token string) (Step, bool) {
	n, unit, ok := splitToken(token)
	if !ok {
		return Step{}, false
	}
	s, ok := calendarUnits[unit]
	if !ok {
		return Step{}, false
	}
	return Step{Years: n * s.Years, Months: n * s.Months}, true
}

func splitToken(token string) (int, string, bool) {
	m := frequencyPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, "", false
	}
	n := 1
	if m[1] != "" {
		var err error
		if n, err = strconv.Atoi(m[1]); err != nil || n <= 0 || n > maxTokenCount {
			return 0, "", false
		}
	}
	return n, m[2], true
}

const maxTokenCount = 1 << 20

var (
	datePartPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)([YMWD])`)
	timePartPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)([HMS])`)
)

func calendarStep(token string) (Step, bool) {
	if token == "" {
		return Step{}, false
	}
	datePart, timePart := token, ""
	if i := strings.Index(token, "T"); i >= 0 {
		datePart, timePart = token[:i], token[i+1:]
		if timePart == "" {
			return Step{}, false
		}
	}

	var s Step
	if !eachComponent(datePartPattern, datePart, func(v float64, unit string) bool {
		if v != math.Trunc(v) {
			return false
		}
		switch unit {
		case "Y":
			s.Years += int(v)
		case "M":
			s.Months += int(v)
		case "W":
			s.Days += 7 * int(v)
		case "D":
			s.Days += int(v)
		}
		return true
	}) {
		return Step{}, false
	}
	if !eachComponent(timePartPattern, timePart, func(v float64, unit string) bool {
		switch unit {
		case "H":
			s.Fixed += time.Duration(v * float64(time.Hour))
		case "M":
			s.Fixed += time.Duration(v * float64(time.Minute))
		case "S":
			s.Fixed += time.Duration(v * float64(time.Second))
		}
		return true
	}) {
		return Step{}, false
	}
	return s, s.Valid()
}

// eachComponent calls fn for every number/unit pair in part and fails unless
// the pairs cover part completely.
func eachComponent(pattern *regexp.Regexp, part string, fn func(float64, string) bool) bool {
	covered := 0
	for _, m := range pattern.FindAllStringSubmatchIndex(part, -1) {
		if m[0] != covered {
			return false
		}
		v, err := strconv.ParseFloat(part[m[2]:m[3]], 64)
		if err != nil || !fn(v, part[m[4]:m[5]]) {
			return false
		}
		covered = m[1]
	}
	return covered == len(part)
}
