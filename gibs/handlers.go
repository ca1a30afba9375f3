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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb/maptile"
	"github.com/venicegeo/bf-gibs-explorer/explorer"
	"github.com/venicegeo/bf-gibs-explorer/model"
	"github.com/venicegeo/bf-gibs-explorer/timeextent"
	"github.com/venicegeo/bf-gibs-explorer/util"
)

// maxZoom is the deepest zoom level GIBS publishes for EPSG:3857
const maxZoom = 19

func writeJSON(r *http.Request, w http.ResponseWriter, ctx util.LogContext, contentType string, value interface{}) {
	body, err := json.Marshal(value)
	if err != nil {
		message := fmt.Sprintf("Failed to encode response: %v", err)
		util.LogSimpleErr(ctx, message, err)
		util.HTTPError(r, w, ctx, message, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}

// layerFromPath returns the advertised layer named in the URL, writing a 404
// when there is none.
func layerFromPath(r *http.Request, w http.ResponseWriter, ctx *Context) (string, bool) {
	layerID, ok := mux.Vars(r)["layer"]
	if !ok || !ctx.Catalog.Contains(layerID) {
		message := fmt.Sprintf("Layer not found: %s", layerID)
		util.LogInfo(ctx, message)
		util.HTTPError(r, w, ctx, message, http.StatusNotFound)
		return "", false
	}
	return layerID, true
}

// timeFromQuery normalizes the optional time parameter. "" and "N/A" mean no
// time.
func timeFromQuery(r *http.Request) (string, error) {
	value := r.FormValue("time")
	if timeextent.IsNotAvailable(value) {
		return timeextent.NotAvailable, nil
	}
	t, err := model.ParseWMSTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(timeextent.Layout), nil
}

// layerTime returns the requested time when it is one of the layer's options
// or "N/A", writing a 400 otherwise.
func layerTime(r *http.Request, w http.ResponseWriter, ctx *Context, layerID string) (string, bool) {
	timeValue, err := timeFromQuery(r)
	if err != nil {
		message := fmt.Sprintf("The time value of %v is invalid", r.FormValue("time"))
		util.LogSimpleErr(ctx, message, err)
		util.HTTPError(r, w, ctx, message, http.StatusBadRequest)
		return "", false
	}
	if timeValue == timeextent.NotAvailable {
		return timeValue, true
	}
	var extents []string
	if layer, ok := ctx.Layers.Layer(layerID); ok {
		extents = layer.TimeExtents
	}
	for _, option := range ctx.Expander.ExpandLayer(extents) {
		if option == timeValue {
			return timeValue, true
		}
	}
	message := fmt.Sprintf("%v is not one of the times of %s", timeValue, layerID)
	util.LogInfo(ctx, message)
	util.HTTPError(r, w, ctx, message, http.StatusBadRequest)
	return "", false
}

// ProductsHandler is a handler for /products
// @Title productsHandler
// @Description lists the products of the catalog
// @Success 200 {array} string
// @Router /products [get]
type ProductsHandler struct {
	Context Context
}

// NewProductsHandler creates a new handler
func NewProductsHandler(ctx Context) *ProductsHandler {
	return &ProductsHandler{Context: ctx}
}

func (h ProductsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(r, w, &h.Context, "application/json", h.Context.Catalog.Products())
}

// LayersHandler is a handler for /products/{product}/layers
// @Title layersHandler
// @Description lists the sub-layers of a product
// @Param   product  path  string  true  "The product name"
// @Success 200 {array} string
// @Failure 404 {object} string
// @Router /products/{product}/layers [get]
type LayersHandler struct {
	Context Context
}

// NewLayersHandler creates a new handler
func NewLayersHandler(ctx Context) *LayersHandler {
	return &LayersHandler{Context: ctx}
}

func (h LayersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	product := mux.Vars(r)["product"]
	if !h.Context.Catalog.HasProduct(product) {
		message := fmt.Sprintf("Product not found: %s", product)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}
	writeJSON(r, w, &h.Context, "application/json", h.Context.Catalog.Layers(product))
}

// ProductHandler is a handler for /products/{product}
// @Title productHandler
// @Description describes every layer of a product as a GeoJSON feature collection
// @Param   product  path  string  true  "The product name"
// @Success 200 {object} geojson.FeatureCollection
// @Failure 404 {object} string
// @Router /products/{product} [get]
type ProductHandler struct {
	Context Context
}

// NewProductHandler creates a new handler
func NewProductHandler(ctx Context) *ProductHandler {
	return &ProductHandler{Context: ctx}
}

func (h ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	product := mux.Vars(r)["product"]
	if !h.Context.Catalog.HasProduct(product) {
		message := fmt.Sprintf("Product not found: %s", product)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}
	var collection model.LayerCollection
	for _, layer := range h.Context.Catalog.Layers(product) {
		if metadata, ok := explorer.Describe(h.Context.Catalog, h.Context.Layers, h.Context.Expander, h.Context.Catalog.Resolve(product, layer)); ok {
			collection = append(collection, metadata)
		}
	}
	writeFeatureCollection(r, w, &h.Context, collection)
}

// MetadataHandler is a handler for /layers/{layer}
// @Title metadataHandler
// @Description describes a layer as a GeoJSON feature covering its extent
// @Param   layer  path  string  true  "The layer identifier"
// @Success 200 {object} geojson.Feature
// @Failure 404 {object} string
// @Router /layers/{layer} [get]
type MetadataHandler struct {
	Context Context
}

// NewMetadataHandler creates a new handler
func NewMetadataHandler(ctx Context) *MetadataHandler {
	return &MetadataHandler{Context: ctx}
}

func (h MetadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	layerID, ok := layerFromPath(r, w, &h.Context)
	if !ok {
		return
	}
	metadata, _ := explorer.Describe(h.Context.Catalog, h.Context.Layers, h.Context.Expander, layerID)
	writeFeature(r, w, &h.Context, metadata)
}

func writeFeature(r *http.Request, w http.ResponseWriter, ctx util.LogContext, creator model.GeoJSONFeatureCreator) {
	feature, err := creator.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting metadata to geojson: %v", err)
		util.LogSimpleErr(ctx, message, err)
		util.HTTPError(r, w, ctx, message, http.StatusInternalServerError)
		return
	}
	writeJSON(r, w, ctx, "application/geo+json", feature)
}

func writeFeatureCollection(r *http.Request, w http.ResponseWriter, ctx util.LogContext, creator model.GeoJSONFeatureCollectionCreator) {
	fc, err := creator.GeoJSONFeatureCollection()
	if err != nil {
		message := fmt.Sprintf("Error converting to feature collection: %v", err)
		util.LogSimpleErr(ctx, message, err)
		util.HTTPError(r, w, ctx, message, http.StatusInternalServerError)
		return
	}
	writeJSON(r, w, ctx, "application/geo+json", fc)
}

// TimesHandler is a handler for /layers/{layer}/times
// @Title timesHandler
// @Description lists the selectable times of a layer, or ["N/A"]
// @Param   layer  path  string  true  "The layer identifier"
// @Success 200 {array} string
// @Failure 404 {object} string
// @Router /layers/{layer}/times [get]
type TimesHandler struct {
	Context Context
}

// NewTimesHandler creates a new handler
func NewTimesHandler(ctx Context) *TimesHandler {
	return &TimesHandler{Context: ctx}
}

func (h TimesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	layerID, ok := layerFromPath(r, w, &h.Context)
	if !ok {
		return
	}
	var extents []string
	if layer, ok := h.Context.Layers.Layer(layerID); ok {
		extents = layer.TimeExtents
	}
	writeJSON(r, w, &h.Context, "application/json", h.Context.Expander.ExpandLayer(extents))
}

// TemplateHandler is a handler for /layers/{layer}/template
// @Title templateHandler
// @Description builds the tile URL template, title and legend of a layer
// @Param   layer  path   string  true   "The layer identifier"
// @Param   time   query  string  false  "The time position; omitted or N/A for none"
// @Success 200 {object} model.Display
// @Failure 400 {object} string
// @Failure 404 {object} string
// @Failure 502 {object} string
// @Router /layers/{layer}/template [get]
type TemplateHandler struct {
	Context Context
}

// NewTemplateHandler creates a new handler
func NewTemplateHandler(ctx Context) *TemplateHandler {
	return &TemplateHandler{Context: ctx}
}

func (h TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	layerID, ok := layerFromPath(r, w, &h.Context)
	if !ok {
		return
	}
	timeValue, ok := layerTime(r, w, &h.Context, layerID)
	if !ok {
		return
	}

	result := h.Context.Templates.Build(r.Context(), h.Context.Templater, layerID, timeValue)
	if !result.OK() {
		message := fmt.Sprintf("The map service rejected %s: %v", layerID, result.Err)
		util.LogSimpleErr(&h.Context, message, result.Err)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadGateway)
		return
	}
	writeJSON(r, w, &h.Context, "application/json", explorer.DisplayFor(h.Context.Layers, layerID, timeValue, result))
}

// XYZTileHandler is a handler for /tiles/{layer}/{z}/{x}/{y}.png
// @Title xyzTileHandler
// @Description performs a redirect to the GetMap request covering the tile
// @Param   time  query  string  false  "The time position; omitted or N/A for none"
// @Success 302 redirect to actual image
// @Failure 400 {object} string
// @Failure 404 {object} string
// @Failure 502 {object} string
// @Router /tiles/{layer}/{z}/{x}/{y}.png [get]
type XYZTileHandler struct {
	Context Context
}

// NewXYZTileHandler creates a new handler
func NewXYZTileHandler(ctx Context) *XYZTileHandler {
	return &XYZTileHandler{Context: ctx}
}

func (h XYZTileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	layerID, ok := layerFromPath(r, w, &h.Context)
	if !ok {
		return
	}
	tile, err := tileFromPath(mux.Vars(r))
	if err != nil {
		message := fmt.Sprintf("Invalid tile: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}
	timeValue, ok := layerTime(r, w, &h.Context, layerID)
	if !ok {
		return
	}

	result := h.Context.Templates.Build(r.Context(), h.Context.Templater, layerID, timeValue)
	if !result.OK() {
		message := fmt.Sprintf("The map service rejected %s: %v", layerID, result.Err)
		util.LogSimpleErr(&h.Context, message, result.Err)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadGateway)
		return
	}

	w.Header().Set("Location", result.Template.ForTile(tile))
	w.WriteHeader(http.StatusFound)
}

func tileFromPath(vars map[string]string) (maptile.Tile, error) {
	z, err := strconv.ParseUint(vars["z"], 10, 32)
	if err != nil || z > maxZoom {
		return maptile.Tile{}, fmt.Errorf("zoom %q must be between 0 and %d", vars["z"], maxZoom)
	}
	limit := uint64(1) << z
	x, err := strconv.ParseUint(vars["x"], 10, 32)
	if err != nil || x >= limit {
		return maptile.Tile{}, fmt.Errorf("column %q is outside zoom %d", vars["x"], z)
	}
	y, err := strconv.ParseUint(vars["y"], 10, 32)
	if err != nil || y >= limit {
		return maptile.Tile{}, fmt.Errorf("row %q is outside zoom %d", vars["y"], z)
	}
	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), nil
}
