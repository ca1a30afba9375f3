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

package model

import (
	"fmt"
	"strings"
	"time"
)

// WMSTimeFormat is the layout GIBS uses for time values in requests
const WMSTimeFormat = "2006-01-02T15:04:05Z"

// Capabilities documents are not consistent about precision or the trailing
// zone designator, so parsing is lenient and tries each layout in turn.
var wmsTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseWMSTime parses a time value from a WMS capabilities document; values
// without an explicit offset are taken to be UTC.
func ParseWMSTime(wmsTime string) (time.Time, error) {
	wmsTime = strings.TrimSpace(wmsTime)
	for _, layout := range wmsTimeLayouts {
		if output, err := time.Parse(layout, wmsTime); err == nil {
			return output.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("Date could not be parsed by any expected time format: `%s`", wmsTime)
}
