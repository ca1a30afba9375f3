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

package wms

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Version is the WMS version used for requests
const Version = "1.1.1"

// BBox is a bounding box in the request's spatial reference
type BBox struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// FormatCoord formats a bounding box coordinate exactly as it appears in a
// request URL: the shortest decimal that round-trips.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String returns the BBOX parameter value
func (b BBox) String() string {
	return strings.Join([]string{FormatCoord(b.XMin), FormatCoord(b.YMin), FormatCoord(b.XMax), FormatCoord(b.YMax)}, ",")
}

// GetMapRequest holds the parameters of a GetMap request
type GetMapRequest struct {
	Layers      []string
	Styles      []string
	SRS         string
	BBox        BBox
	Width       int
	Height      int
	Format      string
	Transparent bool

	// Time is omitted from the request when empty
	Time    string
	Version string
}

// Validate checks the request before any network traffic
func (r GetMapRequest) Validate() error {
	if len(r.Layers) == 0 {
		return errors.New("GetMap request has no layers")
	}
	for _, l := range r.Layers {
		if strings.TrimSpace(l) == "" {
			return errors.New("GetMap request has an empty layer name")
		}
	}
	if r.SRS == "" {
		return errors.New("GetMap request has no spatial reference")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return errors.New("GetMap request size must be positive")
	}
	if r.BBox.XMin >= r.BBox.XMax || r.BBox.YMin >= r.BBox.YMax {
		return errors.New("GetMap request bounding box is empty")
	}
	if r.Format == "" {
		return errors.New("GetMap request has no format")
	}
	return nil
}

// URL returns the request URL against base. Parameters are written in a fixed
// order and the BBOX commas are left unescaped so that the coordinates appear
// verbatim.
func (r GetMapRequest) URL(base string) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	if _, err := url.Parse(base); err != nil {
		return "", err
	}
	version := r.Version
	if version == "" {
		version = Version
	}
	srsKey := "SRS"
	if version == "1.3.0" {
		srsKey = "CRS"
	}

	params := [][2]string{}
	if !hasParam(base, "service") {
		params = append(params, [2]string{"SERVICE", "WMS"})
	}
	params = append(params,
		[2]string{"VERSION", version},
		[2]string{"REQUEST", "GetMap"},
		[2]string{"LAYERS", strings.Join(r.Layers, ",")},
		[2]string{"STYLES", strings.Join(r.Styles, ",")},
		[2]string{srsKey, r.SRS},
	)

	var sb strings.Builder
	for _, p := range params {
		writeParam(&sb, p[0], url.QueryEscape(p[1]))
	}
	writeParam(&sb, "BBOX", r.BBox.String())
	writeParam(&sb, "WIDTH", strconv.Itoa(r.Width))
	writeParam(&sb, "HEIGHT", strconv.Itoa(r.Height))
	writeParam(&sb, "FORMAT", url.QueryEscape(r.Format))
	writeParam(&sb, "TRANSPARENT", strings.ToUpper(strconv.FormatBool(r.Transparent)))
	if r.Time != "" {
		writeParam(&sb, "TIME", url.QueryEscape(r.Time))
	}
	return joinQuery(base, sb.String()), nil
}

func writeParam(sb *strings.Builder, key, escapedValue string) {
	if sb.Len() > 0 {
		sb.WriteByte('&')
	}
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(escapedValue)
}

func hasParam(base, key string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	for k := range u.Query() {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func joinQuery(base, query string) string {
	switch {
	case !strings.Contains(base, "?"):
		return base + "?" + query
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		return base + query
	default:
		return base + "&" + query
	}
}
