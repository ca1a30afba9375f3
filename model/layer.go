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
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WorldBound is used for layers that do not advertise a geographic extent
var WorldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// LayerMetadata describes a single requestable layer
type LayerMetadata struct {
	ID       string
	Product  string
	Layer    string
	Title    string
	Abstract string
	Legend   string

	// Extents are the raw time extent descriptors advertised for the layer
	Extents []string

	// Times are the enumerated time positions, or the single "N/A" value
	Times []string
	Bound orb.Bound
}

// HasTime returns whether the layer advertises a time dimension
func (lm LayerMetadata) HasTime() bool {
	return len(lm.Extents) > 0
}

// GeoJSONFeature returns the layer as a feature whose geometry is its geographic extent
func (lm LayerMetadata) GeoJSONFeature() (*geojson.Feature, error) {
	if lm.ID == "" {
		return nil, errors.New("Layer metadata has no layer ID")
	}
	bound := lm.Bound
	if bound.IsZero() {
		bound = WorldBound
	}

	f := geojson.NewFeature(bound.ToPolygon())
	f.ID = lm.ID
	f.BBox = geojson.NewBBox(bound)
	f.Properties["product"] = lm.Product
	f.Properties["layer"] = lm.Layer
	f.Properties["title"] = lm.Title
	f.Properties["hasTime"] = lm.HasTime()
	if lm.Abstract != "" {
		f.Properties["abstract"] = lm.Abstract
	}
	if lm.Legend != "" {
		f.Properties["legend"] = lm.Legend
	}
	if len(lm.Extents) > 0 {
		f.Properties["timeExtents"] = lm.Extents
	}
	if len(lm.Times) > 0 {
		f.Properties["times"] = lm.Times
	}
	return f, nil
}

// Display is what the map display needs to show a layer: the tile URL
// template, a title and an optional legend image.
type Display struct {
	Layer       string `json:"layer"`
	Title       string `json:"title"`
	Template    string `json:"template"`
	Legend      string `json:"legend,omitempty"`
	Time        string `json:"time,omitempty"`
	TimeDropped bool   `json:"timeDropped,omitempty"`
}

// IsZero returns whether nothing has been displayed yet
func (d Display) IsZero() bool {
	return d.Template == ""
}

// LayerCollection is the metadata of several layers, e.g. all of one product
type LayerCollection []LayerMetadata

// GeoJSONFeatureCollection returns one feature per layer, in order
func (lc LayerCollection) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, lm := range lc {
		f, err := lm.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
		fc.Append(f)
	}
	return fc, nil
}
