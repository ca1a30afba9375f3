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
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// DefaultStyle is the style name whose legend is shown for a layer
const DefaultStyle = "default"

// Capabilities is the flattened content of a GetCapabilities document.
// It is built once and never modified.
type Capabilities struct {
	Version  string
	Title    string
	Abstract string
	layers   map[string]Layer
	names    []string
}

// Layer is a named, requestable layer
type Layer struct {
	Name     string
	Title    string
	Abstract string
	Styles   []Style

	// TimeExtents are the comma separated items of the time dimension, e.g.
	// "2012-05-08/2023-10-10/P1D"; empty for layers without time.
	TimeExtents []string
	DefaultTime string

	// Bound is the geographic (lon/lat) extent; zero when not advertised.
	Bound orb.Bound
}

// Style is a named rendering of a layer and its legend image
type Style struct {
	Name   string
	Title  string
	Legend string
}

// Style looks up a style by name
func (l Layer) Style(name string) (Style, bool) {
	for _, s := range l.Styles {
		if s.Name == name {
			return s, true
		}
	}
	return Style{}, false
}

// DefaultLegend returns the legend URL of the default style, or ""
func (l Layer) DefaultLegend() string {
	s, _ := l.Style(DefaultStyle)
	return s.Legend
}

// HasTime returns whether the layer advertises a time dimension
func (l Layer) HasTime() bool {
	return len(l.TimeExtents) > 0
}

// LayerNames returns the names of all named layers, sorted
func (c *Capabilities) LayerNames() []string {
	return append([]string(nil), c.names...)
}

// Layer looks up a named layer
func (c *Capabilities) Layer(name string) (Layer, bool) {
	l, ok := c.layers[name]
	return l, ok
}

// Len returns the number of named layers
func (c *Capabilities) Len() int {
	return len(c.names)
}

// NewCapabilities builds capabilities from already-flattened layers; used by
// tests and by callers that cache a layer list.
func NewCapabilities(version, title string, layers []Layer) *Capabilities {
	c := &Capabilities{Version: version, Title: title, layers: make(map[string]Layer, len(layers))}
	for _, l := range layers {
		if l.Name == "" {
			continue
		}
		if _, dup := c.layers[l.Name]; !dup {
			c.names = append(c.names, l.Name)
		}
		c.layers[l.Name] = l
	}
	sort.Strings(c.names)
	return c
}

type xmlCapabilities struct {
	Version string     `xml:"version,attr"`
	Service xmlService `xml:"Service"`
	Layers  []xmlLayer `xml:"Capability>Layer"`
}

type xmlService struct {
	Title    string `xml:"Title"`
	Abstract string `xml:"Abstract"`
}

type xmlLayer struct {
	Name       string         `xml:"Name"`
	Title      string         `xml:"Title"`
	Abstract   string         `xml:"Abstract"`
	LatLon     *xmlLatLonBBox `xml:"LatLonBoundingBox"`
	Geographic *xmlGeoBBox    `xml:"EX_GeographicBoundingBox"`
	Dimensions []xmlDimension `xml:"Dimension"`
	Extents    []xmlDimension `xml:"Extent"`
	Styles     []xmlStyle     `xml:"Style"`
	Layers     []xmlLayer     `xml:"Layer"`
}

// WMS 1.1.1
type xmlLatLonBBox struct {
	MinX float64 `xml:"minx,attr"`
	MinY float64 `xml:"miny,attr"`
	MaxX float64 `xml:"maxx,attr"`
	MaxY float64 `xml:"maxy,attr"`
}

// WMS 1.3.0
type xmlGeoBBox struct {
	West  float64 `xml:"westBoundLongitude"`
	East  float64 `xml:"eastBoundLongitude"`
	South float64 `xml:"southBoundLatitude"`
	North float64 `xml:"northBoundLatitude"`
}

type xmlDimension struct {
	Name    string `xml:"name,attr"`
	Default string `xml:"default,attr"`
	Value   string `xml:",chardata"`
}

type xmlStyle struct {
	Name       string         `xml:"Name"`
	Title      string         `xml:"Title"`
	LegendURLs []xmlLegendURL `xml:"LegendURL"`
}

type xmlLegendURL struct {
	Format         string `xml:"Format"`
	OnlineResource struct {
		Href string `xml:"href,attr"`
	} `xml:"OnlineResource"`
}

// ParseCapabilities decodes a WMS 1.1.1 or 1.3.0 capabilities document.
// Nested layers inherit bounding box, time dimension and styles from their
// parents, as OGC WMS requires.
func ParseCapabilities(r io.Reader) (*Capabilities, error) {
	var doc xmlCapabilities
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("Failed to decode capabilities document: %w", err)
	}
	if len(doc.Layers) == 0 {
		return nil, fmt.Errorf("Capabilities document (version %q) advertises no layers", doc.Version)
	}

	var layers []Layer
	for _, root := range doc.Layers {
		layers = flatten(root, Layer{}, layers)
	}
	caps := NewCapabilities(doc.Version, strings.TrimSpace(doc.Service.Title), layers)
	caps.Abstract = strings.TrimSpace(doc.Service.Abstract)
	return caps, nil
}

func flatten(x xmlLayer, parent Layer, out []Layer) []Layer {
	layer := Layer{
		Name:        strings.TrimSpace(x.Name),
		Title:       strings.TrimSpace(x.Title),
		Abstract:    strings.TrimSpace(x.Abstract),
		Styles:      append([]Style(nil), parent.Styles...),
		TimeExtents: parent.TimeExtents,
		DefaultTime: parent.DefaultTime,
		Bound:       parent.Bound,
	}

	switch {
	case x.Geographic != nil:
		layer.Bound = orb.Bound{
			Min: orb.Point{x.Geographic.West, x.Geographic.South},
			Max: orb.Point{x.Geographic.East, x.Geographic.North},
		}
	case x.LatLon != nil:
		layer.Bound = orb.Bound{
			Min: orb.Point{x.LatLon.MinX, x.LatLon.MinY},
			Max: orb.Point{x.LatLon.MaxX, x.LatLon.MaxY},
		}
	}

	if extents, def, ok := timeDimension(x); ok {
		layer.TimeExtents = extents
		layer.DefaultTime = def
	}

	for _, s := range x.Styles {
		style := Style{Name: strings.TrimSpace(s.Name), Title: strings.TrimSpace(s.Title)}
		if len(s.LegendURLs) > 0 {
			style.Legend = strings.TrimSpace(s.LegendURLs[0].OnlineResource.Href)
		}
		layer.Styles = replaceStyle(layer.Styles, style)
	}

	if layer.Name != "" {
		out = append(out, layer)
	}
	for _, child := range x.Layers {
		out = flatten(child, layer, out)
	}
	return out
}

// timeDimension prefers the 1.1.1 <Extent> element and falls back to the
// 1.3.0 <Dimension> content.
func timeDimension(x xmlLayer) ([]string, string, bool) {
	for _, candidates := range [][]xmlDimension{x.Extents, x.Dimensions} {
		for _, d := range candidates {
			if !strings.EqualFold(d.Name, "time") || strings.TrimSpace(d.Value) == "" {
				continue
			}
			var extents []string
			for _, item := range strings.Split(d.Value, ",") {
				if item = strings.TrimSpace(item); item != "" {
					extents = append(extents, item)
				}
			}
			return extents, strings.TrimSpace(d.Default), true
		}
	}
	return nil, "", false
}

func replaceStyle(styles []Style, style Style) []Style {
	for i := range styles {
		if styles[i].Name == style.Name {
			styles[i] = style
			return styles
		}
	}
	return append(styles, style)
}
