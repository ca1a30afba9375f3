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

package tiles

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venicegeo/bf-gibs-explorer/util"
	"github.com/venicegeo/bf-gibs-explorer/wms"
)

const testBase = "https://gibs.example/wms.cgi?SERVICE=WMS"

// mockRequester answers each call with the next error in errs (nil = success)
type mockRequester struct {
	errs  []error
	calls []wms.GetMapRequest
}

func (m *mockRequester) GetMap(ctx context.Context, req wms.GetMapRequest) (string, error) {
	m.calls = append(m.calls, req)
	i := len(m.calls) - 1
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	return req.URL(testBase)
}

func init() {
	util.SetLogOutput(io.Discard)
}

func TestToTemplate(t *testing.T) {
	// Mock
	raw, err := Request("MODIS_Terra_CorrectedReflectance_TrueColor", "2020-01-01T00:00:00Z").URL(testBase)
	require.Nil(t, err)

	// Tested code
	template := ToTemplate(raw)

	// Asserts
	s := template.String()
	assert.True(t, template.HasPlaceholders())
	assert.Contains(t, s, "BBOX={XMIN},{YMIN},{XMAX},{YMAX}&")
	for _, literal := range []string{"-20037507.5394", "1638517.4448", "20037260.9187", "7714669.3946"} {
		assert.NotContains(t, s, literal)
	}
	assert.Equal(t, 1, strings.Count(s, "{XMIN}"))
	assert.Contains(t, s, "TIME=2020-01-01T00%3A00%3A00Z")
	assert.Contains(t, s, "WIDTH=256&HEIGHT=256")
}

func TestToTemplate_LiteralsOutsideBBoxParameter(t *testing.T) {
	raw := "http://x/?b=-20037507.5394&c=1638517.4448&d=20037260.9187&e=7714669.3946"

	template := ToTemplate(raw)

	assert.Equal(t, Template("http://x/?b={XMIN}&c={YMIN}&d={XMAX}&e={YMAX}"), template)
	assert.False(t, ToTemplate("http://x/?nothing").HasPlaceholders())
}

func TestTemplateFill(t *testing.T) {
	template := Template("http://x/?BBOX={XMIN},{YMIN},{XMAX},{YMAX}&WIDTH=256")

	filled := template.Fill(orb.Bound{Min: orb.Point{-1.5, 2}, Max: orb.Point{3, 4.25}})

	assert.Equal(t, "http://x/?BBOX=-1.5,2,3,4.25&WIDTH=256", filled)
}

func TestTemplateForTile(t *testing.T) {
	// Mock
	template := Template("{XMIN},{YMIN},{XMAX},{YMAX}")
	const half = 20037508.342789244

	// Tested code
	world := MercatorBound(maptile.New(0, 0, 0))
	quadrant := MercatorBound(maptile.New(1, 0, 1))

	// Asserts
	assert.InDelta(t, -half, world.Min.X(), 1e-3)
	assert.InDelta(t, half, world.Max.X(), 1e-3)
	assert.InDelta(t, -half, world.Min.Y(), 1)
	assert.InDelta(t, half, world.Max.Y(), 1)
	assert.InDelta(t, 0, quadrant.Min.X(), 1e-3)
	assert.InDelta(t, 0, quadrant.Min.Y(), 1)
	assert.InDelta(t, half, quadrant.Max.Y(), 1)

	parts := strings.Split(template.ForTile(maptile.New(1, 0, 1)), ",")
	require.Len(t, parts, 4)
	assert.Equal(t, "0", parts[0][:1])
	assert.False(t, strings.Contains(template.ForTile(maptile.New(0, 0, 0)), "{"))
}

func TestBuild_Success(t *testing.T) {
	// Mock
	requester := &mockRequester{}
	templater := Templater{Requester: requester}

	// Tested code
	result := templater.Build(context.Background(), "Coastlines", "N/A")

	// Asserts
	require.True(t, result.OK())
	assert.Nil(t, result.Err)
	assert.False(t, result.TimeDropped)
	assert.Equal(t, "Coastlines", result.Layer)
	require.Len(t, requester.calls, 1)
	assert.Equal(t, "", requester.calls[0].Time)
	assert.Equal(t, []string{"Coastlines"}, requester.calls[0].Layers)
	assert.Equal(t, SRS, requester.calls[0].SRS)
	assert.Equal(t, Size, requester.calls[0].Width)
	assert.Equal(t, Format, requester.calls[0].Format)
	assert.True(t, requester.calls[0].Transparent)
	assert.True(t, result.Template.HasPlaceholders())
}

func TestBuild_RetriesWithoutTime(t *testing.T) {
	// Mock
	requester := &mockRequester{errs: []error{&wms.ServiceException{Code: "InvalidDimensionValue"}}}
	templater := Templater{Requester: requester}

	// Tested code
	result := templater.Build(context.Background(), "Coastlines", "2020-01-01T00:00:00Z")

	// Asserts
	require.True(t, result.OK())
	assert.True(t, result.TimeDropped)
	require.Len(t, requester.calls, 2)
	assert.Equal(t, "2020-01-01T00:00:00Z", requester.calls[0].Time)
	assert.Equal(t, "", requester.calls[1].Time)
	assert.NotContains(t, result.Template.String(), "TIME=")
}

func TestBuild_SecondFailureIsReturnedUnchanged(t *testing.T) {
	// Mock
	second := errors.New("service unavailable")
	requester := &mockRequester{errs: []error{errors.New("bad time"), second}}
	templater := Templater{Requester: requester}

	// Tested code
	result := templater.Build(context.Background(), "Coastlines", "2020-01-01T00:00:00Z")

	// Asserts
	assert.False(t, result.OK())
	assert.Same(t, second, result.Err)
	assert.Equal(t, Template(""), result.Template)
	assert.Len(t, requester.calls, 2)
}

func TestBuild_RetriesOnceWithoutTimeValue(t *testing.T) {
	requester := &mockRequester{errs: []error{errors.New("flaky")}}

	result := Templater{Requester: requester}.Build(context.Background(), "Coastlines", "")

	assert.True(t, result.OK())
	assert.False(t, result.TimeDropped)
	assert.Len(t, requester.calls, 2)
}
