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

package gibs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venicegeo/bf-gibs-explorer/catalog"
	"github.com/venicegeo/bf-gibs-explorer/model"
	"github.com/venicegeo/bf-gibs-explorer/tiles"
	"github.com/venicegeo/bf-gibs-explorer/timeextent"
	"github.com/venicegeo/bf-gibs-explorer/util"
	"github.com/venicegeo/bf-gibs-explorer/wms"
)

const timeRejected = `<ServiceExceptionReport version="1.1.1"><ServiceException code="InvalidDimensionValue">time</ServiceException></ServiceExceptionReport>`

// mockGetMapHandler renders every layer except "Broken_Layer", and rejects
// the last advertised time of "MODIS_Terra_TrueColor".
type mockGetMapHandler struct {
	mu    sync.Mutex
	calls int
}

func (h *mockGetMapHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	query := request.URL.Query()
	switch {
	case query.Get("LAYERS") == "Broken_Layer":
		writer.WriteHeader(http.StatusInternalServerError)
	case query.Get("TIME") == "2020-01-03T00:00:00Z" && query.Get("LAYERS") == "MODIS_Terra_TrueColor":
		writer.Header().Set("Content-Type", "application/vnd.ogc.se_xml")
		io.WriteString(writer, timeRejected)
	default:
		writer.Header().Set("Content-Type", "image/png")
		io.WriteString(writer, "\x89PNG")
	}
}

func (h *mockGetMapHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func testLayers() *wms.Capabilities {
	return wms.NewCapabilities("1.1.1", "test", []wms.Layer{
		{
			Name:        "MODIS_Terra_TrueColor",
			Title:       "Terra True Color",
			TimeExtents: []string{"2020-01-01/2020-01-03/P1D"},
			Styles:      []wms.Style{{Name: "default", Legend: "http://legend/terra.png"}},
		},
		{Name: "Coastlines", Title: "Coastlines"},
		{Name: "Broken_Layer"},
	})
}

func newTestRouter(t *testing.T) (*mux.Router, *mockGetMapHandler, Context) {
	util.SetLogOutput(io.Discard)
	handler := &mockGetMapHandler{}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	caps := testLayers()
	client := &wms.Client{BaseURL: server.URL + "/wms.cgi?SERVICE=WMS", HTTPClient: server.Client()}
	ctx := NewContext(catalog.New(caps.LayerNames()), caps, tiles.Templater{Requester: client}, timeextent.Expander{})
	router := mux.NewRouter()
	Mount(router, ctx)
	return router, handler, ctx
}

func serve(router http.Handler, target string) *httptest.ResponseRecorder {
	request := httptest.NewRequest("GET", target, nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func TestProductsAndLayers(t *testing.T) {
	// Mock
	router, _, _ := newTestRouter(t)

	// Tested code
	products := serve(router, "/products")
	layers := serve(router, "/products/MODIS/layers")
	missing := serve(router, "/products/VIIRS/layers")

	// Asserts
	assert.Equal(t, http.StatusOK, products.Code)
	assert.JSONEq(t, `["Broken", "MODIS", "Miscellaneous"]`, products.Body.String())
	assert.Equal(t, http.StatusOK, layers.Code)
	assert.JSONEq(t, `["Terra_TrueColor"]`, layers.Body.String())
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "VIIRS")
}

func TestMetadataHandler(t *testing.T) {
	// Mock
	router, _, _ := newTestRouter(t)

	// Tested code
	response := serve(router, "/layers/MODIS_Terra_TrueColor")
	missing := serve(router, "/layers/Nope")

	// Asserts
	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "application/geo+json", response.Header().Get("Content-Type"))
	var feature struct {
		ID         string                 `json:"id"`
		Type       string                 `json:"type"`
		Properties map[string]interface{} `json:"properties"`
	}
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &feature))
	assert.Equal(t, "Feature", feature.Type)
	assert.Equal(t, "MODIS_Terra_TrueColor", feature.ID)
	assert.Equal(t, "Terra True Color", feature.Properties["title"])
	assert.Equal(t, "http://legend/terra.png", feature.Properties["legend"])
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestTimesHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	timed := serve(router, "/layers/MODIS_Terra_TrueColor/times")
	untimed := serve(router, "/layers/Coastlines/times")

	assert.JSONEq(t, `["2020-01-01T00:00:00Z","2020-01-02T00:00:00Z","2020-01-03T00:00:00Z"]`, timed.Body.String())
	assert.JSONEq(t, `["N/A"]`, untimed.Body.String())
}

func TestTemplateHandler(t *testing.T) {
	// Mock
	router, wmsHandler, ctx := newTestRouter(t)

	// Tested code
	response := serve(router, "/layers/MODIS_Terra_TrueColor/template?time=2020-01-02")
	again := serve(router, "/layers/MODIS_Terra_TrueColor/template?time=2020-01-02T00:00:00Z")

	// Asserts
	require.Equal(t, http.StatusOK, response.Code)
	var display model.Display
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &display))
	assert.Equal(t, "MODIS_Terra_TrueColor", display.Layer)
	assert.Equal(t, "Terra True Color", display.Title)
	assert.Equal(t, "http://legend/terra.png", display.Legend)
	assert.Equal(t, "2020-01-02T00:00:00Z", display.Time)
	assert.False(t, display.TimeDropped)
	assert.True(t, tiles.Template(display.Template).HasPlaceholders())
	assert.Contains(t, display.Template, "TIME=2020-01-02T00%3A00%3A00Z")

	assert.Equal(t, response.Body.String(), again.Body.String())
	assert.Equal(t, 1, wmsHandler.count())
	assert.Equal(t, 1, ctx.Templates.Len())
}

func TestTemplateHandler_TimeDropped(t *testing.T) {
	router, wmsHandler, _ := newTestRouter(t)

	response := serve(router, "/layers/MODIS_Terra_TrueColor/template?time=2020-01-03")
	again := serve(router, "/layers/MODIS_Terra_TrueColor/template?time=2020-01-03")

	require.Equal(t, http.StatusOK, response.Code)
	var display model.Display
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &display))
	assert.True(t, display.TimeDropped)
	assert.Equal(t, "", display.Time)
	assert.NotContains(t, display.Template, "TIME=")
	assert.Equal(t, response.Body.String(), again.Body.String())
	assert.Equal(t, 2, wmsHandler.count())
}

func TestTemplateHandler_TimeNotAnOption(t *testing.T) {
	// Mock
	router, wmsHandler, ctx := newTestRouter(t)

	// Tested code
	var codes []int
	for _, target := range []string{
		"/layers/Coastlines/template?time=2020-01-02",
		"/layers/MODIS_Terra_TrueColor/template?time=2021-01-01",
		"/layers/MODIS_Terra_TrueColor/template?time=2020-01-02T00:00:01Z",
		"/tiles/MODIS_Terra_TrueColor/0/0/0.png?time=1999-12-31",
	} {
		codes = append(codes, serve(router, target).Code)
	}

	untimed := serve(router, "/layers/MODIS_Terra_TrueColor/template")

	// Asserts
	for _, code := range codes {
		assert.Equal(t, http.StatusBadRequest, code)
	}
	assert.Equal(t, http.StatusOK, untimed.Code)
	assert.Equal(t, 1, wmsHandler.count())
	assert.Equal(t, 1, ctx.Templates.Len())
}

func TestTemplateHandler_Errors(t *testing.T) {
	// Mock
	router, wmsHandler, ctx := newTestRouter(t)

	// Tested code
	broken := serve(router, "/layers/Broken_Layer/template")
	badTime := serve(router, "/layers/Coastlines/template?time=yesterday")
	unknown := serve(router, "/layers/Nope/template")

	// Asserts
	assert.Equal(t, http.StatusBadGateway, broken.Code)
	assert.Equal(t, http.StatusBadRequest, badTime.Code)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Equal(t, 2, wmsHandler.count())
	assert.Equal(t, 0, ctx.Templates.Len())
}

func TestXYZTileHandler(t *testing.T) {
	// Mock
	router, _, _ := newTestRouter(t)

	// Tested code
	response := serve(router, "/tiles/Coastlines/1/1/0.png")

	// Asserts
	require.Equal(t, http.StatusFound, response.Code)
	location := response.Header().Get("Location")
	assert.Contains(t, location, "LAYERS=Coastlines")
	assert.Contains(t, location, "&BBOX=0,")
	assert.NotContains(t, location, "{XMIN}")
	assert.True(t, strings.Contains(location, "WIDTH=256"))
}

func TestXYZTileHandler_InvalidTile(t *testing.T) {
	router, _, _ := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, serve(router, "/tiles/Coastlines/1/2/0.png").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "/tiles/Coastlines/25/0/0.png").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "/tiles/Nope/0/0/0.png").Code)
	assert.Equal(t, http.StatusBadGateway, serve(router, "/tiles/Broken_Layer/0/0/0.png").Code)
}

func TestProductHandler(t *testing.T) {
	// Mock
	router, _, _ := newTestRouter(t)

	// Tested code
	response := serve(router, "/products/MODIS")
	missing := serve(router, "/products/VIIRS")

	// Asserts
	require.Equal(t, http.StatusOK, response.Code)
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID string `json:"id"`
		} `json:"features"`
	}
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "MODIS_Terra_TrueColor", fc.Features[0].ID)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

type countingBuilder struct {
	calls int
}

func (b *countingBuilder) Build(ctx context.Context, layer, timeValue string) tiles.Result {
	b.calls++
	return tiles.Result{Layer: layer, Template: tiles.Template("http://wms/" + layer + "?TIME=" + timeValue)}
}

func TestTemplateCache_DropsOldest(t *testing.T) {
	// Mock
	builder := &countingBuilder{}
	cache := NewTemplateCache(2)
	ctx := context.Background()

	// Tested code
	cache.Build(ctx, builder, "A", "2020-01-01T00:00:00Z")
	cache.Build(ctx, builder, "A", "2020-01-02T00:00:00Z")
	cache.Build(ctx, builder, "A", "2020-01-02T00:00:00Z")
	cache.Build(ctx, builder, "A", "2020-01-03T00:00:00Z")
	cache.Build(ctx, builder, "A", "2020-01-02T00:00:00Z")
	cache.Build(ctx, builder, "A", "2020-01-01T00:00:00Z")

	// Asserts
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 4, builder.calls)
}

func TestContext_SessionIDSurvivesCopies(t *testing.T) {
	// Mock
	caps := testLayers()
	ctx := NewContext(catalog.New(caps.LayerNames()), caps, &countingBuilder{}, timeextent.Expander{})

	// Tested code
	first := NewProductsHandler(ctx)
	second := NewTemplateHandler(ctx)

	// Asserts
	assert.NotEqual(t, "", ctx.sessionID)
	assert.Equal(t, first.Context.SessionID(), second.Context.SessionID())
	assert.Equal(t, ctx.sessionID, first.Context.SessionID())
}
