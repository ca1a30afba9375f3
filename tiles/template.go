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

// Package tiles turns one proof GetMap request into a URL template that can be
// filled with any tile's bounding box.
package tiles

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"
	"github.com/venicegeo/bf-gibs-explorer/wms"
)

// The proof request covers this EPSG:3857 box. The literals are distinct
// enough not to appear anywhere else in a request URL.
const (
	XMin = -20037507.539400
	YMin = 1638517.444800
	XMax = 20037260.918700
	YMax = 7714669.39460
)

// Placeholders written into a template in place of the bounding box literals
const (
	PlaceholderXMin = "{XMIN}"
	PlaceholderYMin = "{YMIN}"
	PlaceholderXMax = "{XMAX}"
	PlaceholderYMax = "{YMAX}"
)

// ProofBBox is the bounding box of the proof request
var ProofBBox = wms.BBox{XMin: XMin, YMin: YMin, XMax: XMax, YMax: YMax}

// Template is a GetMap URL whose bounding box has been replaced by placeholders
type Template string

// ToTemplate rewrites the proof bounding box in rawURL into placeholders.
// The BBOX value is replaced as a whole when present; otherwise each literal
// is replaced once, in XMIN, YMIN, XMAX, YMAX order.
func ToTemplate(rawURL string) Template {
	whole := ProofBBox.String()
	if strings.Contains(rawURL, whole) {
		placeholders := strings.Join([]string{PlaceholderXMin, PlaceholderYMin, PlaceholderXMax, PlaceholderYMax}, ",")
		return Template(strings.Replace(rawURL, whole, placeholders, 1))
	}
	out := rawURL
	for _, r := range [][2]string{
		{wms.FormatCoord(XMin), PlaceholderXMin},
		{wms.FormatCoord(YMin), PlaceholderYMin},
		{wms.FormatCoord(XMax), PlaceholderXMax},
		{wms.FormatCoord(YMax), PlaceholderYMax},
	} {
		out = strings.Replace(out, r[0], r[1], 1)
	}
	return Template(out)
}

// HasPlaceholders returns whether all four placeholders are present
func (t Template) HasPlaceholders() bool {
	for _, p := range []string{PlaceholderXMin, PlaceholderYMin, PlaceholderXMax, PlaceholderYMax} {
		if !strings.Contains(string(t), p) {
			return false
		}
	}
	return true
}

// Fill substitutes an EPSG:3857 bounding box into the template
func (t Template) Fill(bound orb.Bound) string {
	return strings.NewReplacer(
		PlaceholderXMin, wms.FormatCoord(bound.Min.X()),
		PlaceholderYMin, wms.FormatCoord(bound.Min.Y()),
		PlaceholderXMax, wms.FormatCoord(bound.Max.X()),
		PlaceholderYMax, wms.FormatCoord(bound.Max.Y()),
	).Replace(string(t))
}

// ForTile fills the template with the web mercator bounds of a slippy map tile
func (t Template) ForTile(tile maptile.Tile) string {
	return t.Fill(MercatorBound(tile))
}

// MercatorBound returns the EPSG:3857 bounds of a tile
func MercatorBound(tile maptile.Tile) orb.Bound {
	b := tile.Bound()
	return orb.Bound{
		Min: project.WGS84.ToMercator(b.Min),
		Max: project.WGS84.ToMercator(b.Max),
	}
}

func (t Template) String() string {
	return string(t)
}
