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
	"os"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestData(t *testing.T, name string) *os.File {
	f, err := os.Open("testdata/" + name)
	require.Nil(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestParseCapabilities_111(t *testing.T) {
	// Tested code
	caps, err := ParseCapabilities(openTestData(t, "capabilities_111.xml"))

	// Asserts
	require.Nil(t, err)
	assert.Equal(t, "1.1.1", caps.Version)
	assert.Equal(t, "NASA Global Imagery Browse Services for EOSDIS", caps.Title)
	assert.Equal(t, "Near real-time imagery", caps.Abstract)
	assert.Equal(t, 3, caps.Len())
	assert.Equal(t, []string{
		"AMSR2_Sea_Ice_Concentration_12km_Monthly",
		"Coastlines",
		"MODIS_Terra_CorrectedReflectance_TrueColor",
	}, caps.LayerNames())

	terra, ok := caps.Layer("MODIS_Terra_CorrectedReflectance_TrueColor")
	require.True(t, ok)
	assert.Equal(t, "Corrected Reflectance (True Color, MODIS, Terra)", terra.Title)
	assert.Equal(t, "Terra true color", terra.Abstract)
	assert.Equal(t, []string{"2020-01-01/2020-01-04/P1D"}, terra.TimeExtents)
	assert.Equal(t, "2020-01-04", terra.DefaultTime)
	assert.True(t, terra.HasTime())
	assert.Equal(t, "", terra.DefaultLegend())
	assert.Equal(t, orb.Bound{Min: orb.Point{-180, -85.051129}, Max: orb.Point{180, 85.051129}}, terra.Bound)

	ice, ok := caps.Layer("AMSR2_Sea_Ice_Concentration_12km_Monthly")
	require.True(t, ok)
	assert.Equal(t, []string{"2020-01-01/2020-03-01/P1M", "2021-01-01"}, ice.TimeExtents)
	assert.Equal(t, "https://gibs.example/legends/AMSR2_Sea_Ice.png", ice.DefaultLegend())
	assert.Equal(t, orb.Bound{Min: orb.Point{-180, 40}, Max: orb.Point{180, 90}}, ice.Bound)

	coast, ok := caps.Layer("Coastlines")
	require.True(t, ok)
	assert.False(t, coast.HasTime())
	assert.Empty(t, coast.TimeExtents)
}

func TestParseCapabilities_130InheritsFromParent(t *testing.T) {
	// Tested code
	caps, err := ParseCapabilities(openTestData(t, "capabilities_130.xml"))

	// Asserts
	require.Nil(t, err)
	assert.Equal(t, "1.3.0", caps.Version)
	assert.Equal(t, []string{"Reference_Labels", "VIIRS_SNPP_DayNightBand_ENCC"}, caps.LayerNames())

	night, _ := caps.Layer("VIIRS_SNPP_DayNightBand_ENCC")
	assert.Equal(t, []string{"2020-01-01/2020-01-02/P1D"}, night.TimeExtents)
	assert.Equal(t, "2020-01-02", night.DefaultTime)
	assert.Equal(t, "https://gibs.example/legends/root.png", night.DefaultLegend())
	assert.Equal(t, orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}, night.Bound)

	labels, _ := caps.Layer("Reference_Labels")
	assert.Len(t, labels.Styles, 1)
	assert.Equal(t, "https://gibs.example/legends/labels.png", labels.DefaultLegend())
	assert.Equal(t, orb.Bound{Min: orb.Point{-10, -5}, Max: orb.Point{10, 5}}, labels.Bound)
	assert.False(t, labels.HasTime())
}

func TestParseCapabilities_Errors(t *testing.T) {
	_, err := ParseCapabilities(strings.NewReader("not xml at all <"))
	assert.NotNil(t, err)

	_, err = ParseCapabilities(strings.NewReader(`<WMT_MS_Capabilities version="1.1.1"><Capability/></WMT_MS_Capabilities>`))
	assert.NotNil(t, err)
}

func TestNewCapabilities(t *testing.T) {
	// Tested code
	caps := NewCapabilities("1.1.1", "test", []Layer{
		{Name: "b"},
		{Name: ""},
		{Name: "a", Title: "first"},
		{Name: "a", Title: "second"},
	})

	// Asserts
	assert.Equal(t, []string{"a", "b"}, caps.LayerNames())
	a, ok := caps.Layer("a")
	assert.True(t, ok)
	assert.Equal(t, "second", a.Title)
	_, ok = caps.Layer("missing")
	assert.False(t, ok)

	names := caps.LayerNames()
	names[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, caps.LayerNames())
}
