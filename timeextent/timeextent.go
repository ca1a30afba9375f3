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

// Package timeextent enumerates the time positions described by a WMS time
// extent such as "2012-05-08/2023-10-10/P1D".
package timeextent

import (
	"fmt"
	"strings"
	"time"

	"github.com/venicegeo/bf-gibs-explorer/model"
)

// NotAvailable is the single selectable value for layers without a time dimension
const NotAvailable = "N/A"

// Layout is the format of every enumerated position
const Layout = model.WMSTimeFormat

// PositionLimit is the most positions one extent ever enumerates; longer
// extents keep their latest PositionLimit positions.
const PositionLimit = 1 << 18

// Extent is a parsed start/end/step descriptor
type Extent struct {
	Start time.Time
	End   time.Time
	Step  Step

	// Raw is the step field as advertised
	Raw string
}

// Parse splits a "start/end/step" descriptor. Only the start and end are
// validated; a step that cannot be understood degrades to a single position.
func Parse(descriptor string) (Extent, error) {
	parts := strings.Split(strings.TrimSpace(descriptor), "/")
	if len(parts) != 3 {
		return Extent{}, fmt.Errorf("Time extent `%s` is not of the form start/end/step", descriptor)
	}
	start, err := model.ParseWMSTime(parts[0])
	if err != nil {
		return Extent{}, fmt.Errorf("Invalid time extent start: %w", err)
	}
	end, err := model.ParseWMSTime(parts[1])
	if err != nil {
		return Extent{}, fmt.Errorf("Invalid time extent end: %w", err)
	}
	raw := strings.TrimSpace(parts[2])
	if raw == "" {
		return Extent{}, fmt.Errorf("Time extent `%s` has an empty step", descriptor)
	}
	return Extent{Start: start, End: end, Step: ParseStep(raw), Raw: raw}, nil
}

// Positions enumerates start..end inclusive
func (e Extent) Positions() []string {
	return e.LatestPositions(0)
}

// LatestPositions enumerates start..end inclusive, keeping only the last max
// positions when max > 0.
func (e Extent) LatestPositions(max int) []string {
	if e.End.Before(e.Start) {
		return []string{}
	}
	if !e.Step.Valid() {
		return []string{e.Start.Format(Layout)}
	}
	if max <= 0 || max > PositionLimit {
		max = PositionLimit
	}

	if e.Step.IsFixed() {
		count := int(e.End.Sub(e.Start)/e.Step.Fixed) + 1
		first := 0
		if count > max {
			first = count - max
		}
		positions := make([]string, 0, count-first)
		for i := first; i < count; i++ {
			positions = append(positions, e.Step.At(e.Start, i).Format(Layout))
		}
		return positions
	}

	positions := []string{}
	for i := 0; ; i++ {
		t := e.Step.At(e.Start, i)
		if t.After(e.End) {
			break
		}
		positions = append(positions, t.Format(Layout))
		if len(positions) >= 2*max {
			positions = append(positions[:0], positions[len(positions)-max:]...)
		}
	}
	if len(positions) > max {
		positions = positions[len(positions)-max:]
	}
	return positions
}

// Expander turns advertised time extents into selectable positions
type Expander struct {
	// MaxPositions caps the number of positions, keeping the latest; 0 means
	// PositionLimit.
	MaxPositions int
}

func (x Expander) limit() int {
	if x.MaxPositions <= 0 || x.MaxPositions > PositionLimit {
		return PositionLimit
	}
	return x.MaxPositions
}

// Expand enumerates one descriptor. It never fails: anything that yields no
// positions becomes the single NotAvailable value.
func (x Expander) Expand(descriptor string) []string {
	if strings.TrimSpace(descriptor) == "" {
		return []string{NotAvailable}
	}
	extent, err := Parse(descriptor)
	if err != nil {
		return []string{NotAvailable}
	}
	positions := extent.LatestPositions(x.limit())
	if len(positions) == 0 {
		return []string{NotAvailable}
	}
	return positions
}

// ExpandLayer enumerates every extent advertised for a layer, in order and
// without duplicates. Items without a "/" are single time values.
func (x Expander) ExpandLayer(extents []string) []string {
	seen := map[string]struct{}{}
	positions := []string{}
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			positions = append(positions, p)
		}
	}

	for _, item := range extents {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.Contains(item, "/") {
			if t, err := model.ParseWMSTime(item); err == nil {
				add(t.Format(Layout))
			}
			continue
		}
		for _, p := range x.Expand(item) {
			if p != NotAvailable {
				add(p)
			}
		}
	}

	if len(positions) == 0 {
		return []string{NotAvailable}
	}
	if max := x.limit(); len(positions) > max {
		positions = positions[len(positions)-max:]
	}
	return positions
}

// Expand enumerates a descriptor capped at PositionLimit
func Expand(descriptor string) []string {
	return Expander{}.Expand(descriptor)
}

// ExpandLayer enumerates a layer's extents capped at PositionLimit
func ExpandLayer(extents []string) []string {
	return Expander{}.ExpandLayer(extents)
}

// IsNotAvailable returns whether v means "no time dimension"
func IsNotAvailable(v string) bool {
	return v == "" || v == NotAvailable
}

// TimeParam maps a selected value to a WMS TIME parameter; "" means omit it.
func TimeParam(v string) string {
	if IsNotAvailable(v) {
		return ""
	}
	return v
}
