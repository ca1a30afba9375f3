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

// Package explorer holds the selection state of a GIBS browsing session and
// turns selection events into displays.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/venicegeo/bf-gibs-explorer/catalog"
	"github.com/venicegeo/bf-gibs-explorer/model"
	"github.com/venicegeo/bf-gibs-explorer/tiles"
	"github.com/venicegeo/bf-gibs-explorer/timeextent"
	"github.com/venicegeo/bf-gibs-explorer/util"
	"github.com/venicegeo/bf-gibs-explorer/wms"
)

// LayerSource looks up advertised layer metadata; *wms.Capabilities is one.
type LayerSource interface {
	Layer(name string) (wms.Layer, bool)
}

// TemplateBuilder builds a tile URL template; tiles.Templater is one.
type TemplateBuilder interface {
	Build(ctx context.Context, layer, timeValue string) tiles.Result
}

// Config holds what an Explorer needs
type Config struct {
	Catalog   *catalog.Catalog
	Layers    LayerSource
	Templater TemplateBuilder
	Expander  timeextent.Expander
	Context   util.LogContext
}

// State is a snapshot of the session
type State struct {
	Products []string `json:"products"`
	Product  string   `json:"product"`
	Layers   []string `json:"layers"`
	Layer    string   `json:"layer"`
	Times    []string `json:"times"`
	Time     string   `json:"time"`
	Loading  bool     `json:"loading"`

	// Display is the last successful display; a failed refresh leaves it alone.
	Display model.Display `json:"display"`
	Error   string        `json:"error,omitempty"`
}

func (s State) clone() State {
	s.Products = append([]string(nil), s.Products...)
	s.Layers = append([]string(nil), s.Layers...)
	s.Times = append([]string(nil), s.Times...)
	return s
}

// Errors returned by Dispatch for selections that are not among the options
var (
	ErrUnknownProduct = errors.New("Unknown product")
	ErrUnknownLayer   = errors.New("Unknown layer")
	ErrUnknownTime    = errors.New("Time is not one of the options")
)

// Explorer is the application object. Events are handled one at a time.
type Explorer struct {
	cfg Config

	dispatchMu sync.Mutex

	stateMu sync.RWMutex
	state   State

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// New returns an explorer with no product selected yet; call Start to make
// the initial selection.
func New(cfg Config) (*Explorer, error) {
	if cfg.Catalog == nil || cfg.Layers == nil || cfg.Templater == nil {
		return nil, errors.New("Explorer needs a catalog, a layer source and a templater")
	}
	if cfg.Context == nil {
		cfg.Context = &util.BasicLogContext{}
	}
	return &Explorer{
		cfg:   cfg,
		state: State{Products: cfg.Catalog.Products()},
		subs:  map[int]func(State){},
	}, nil
}

// Start selects the first product, which cascades into its first layer and
// time and a refresh.
func (e *Explorer) Start(ctx context.Context) error {
	for _, product := range e.cfg.Catalog.Products() {
		if len(e.cfg.Catalog.Layers(product)) > 0 {
			return e.Dispatch(ctx, ProductSelected{Product: product})
		}
	}
	return errors.New("Catalog has no layers")
}

// State returns a snapshot of the current state
func (e *Explorer) State() State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state.clone()
}

// Subscribe registers fn to be called with a snapshot after every state change.
// fn runs on the dispatching goroutine while the event is still being handled,
// so it must not call Dispatch; State is safe to call.
func (e *Explorer) Subscribe(fn func(State)) (unsubscribe func()) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Explorer) update(fn func(*State)) {
	e.stateMu.Lock()
	fn(&e.state)
	snapshot := e.state.clone()
	e.stateMu.Unlock()

	e.subsMu.Lock()
	subs := make([]func(State), 0, len(e.subs))
	for i := 0; i < e.nextSub; i++ {
		if fn, ok := e.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	e.subsMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Dispatch handles one event. Selection errors leave the state untouched; a
// refresh error leaves the previous display in place. A panic while handling
// the event is returned as an error.
func (e *Explorer) Dispatch(ctx context.Context, event Event) (err error) {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = util.LogSimpleErr(e.cfg.Context, fmt.Sprintf("Handling %T failed.", event), fmt.Errorf("panic: %v", r))
		}
	}()

	switch ev := event.(type) {
	case ProductSelected:
		return e.selectProduct(ctx, ev.Product)
	case LayerSelected:
		return e.selectLayer(ctx, ev.Layer)
	case TimeSelected:
		return e.selectTime(ctx, ev.Time)
	case RefreshRequested:
		return e.refresh(ctx)
	default:
		return fmt.Errorf("Unsupported event %T", event)
	}
}

// Run dispatches events until the channel closes or ctx is done. Dispatch
// errors are logged.
func (e *Explorer) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := e.Dispatch(ctx, ev); err != nil {
				util.LogAlert(e.cfg.Context, fmt.Sprintf("%s failed: %v", ev.eventName(), err))
			}
		}
	}
}

func (e *Explorer) selectProduct(ctx context.Context, product string) error {
	if !e.cfg.Catalog.HasProduct(product) {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
	layers := e.cfg.Catalog.Layers(product)
	if len(layers) == 0 {
		// Only the reserved bucket can be empty
		e.update(func(s *State) {
			s.Product, s.Layers, s.Layer = product, layers, ""
			s.Times, s.Time = []string{timeextent.NotAvailable}, timeextent.NotAvailable
		})
		return nil
	}
	times := e.timeOptions(product, layers[0])
	e.update(func(s *State) {
		s.Product, s.Layers, s.Layer = product, layers, layers[0]
		s.Times, s.Time = times, times[0]
	})
	return e.refresh(ctx)
}

func (e *Explorer) selectLayer(ctx context.Context, layer string) error {
	e.stateMu.RLock()
	product, options := e.state.Product, e.state.Layers
	e.stateMu.RUnlock()
	if !contains(options, layer) {
		return fmt.Errorf("%w: %s in product %s", ErrUnknownLayer, layer, product)
	}

	times := e.timeOptions(product, layer)
	e.update(func(s *State) {
		s.Layer = layer
		s.Times, s.Time = times, times[0]
	})
	return e.refresh(ctx)
}

// timeOptions always returns at least one value
func (e *Explorer) timeOptions(product, layer string) []string {
	var extents []string
	if meta, ok := e.cfg.Layers.Layer(e.cfg.Catalog.Resolve(product, layer)); ok {
		extents = meta.TimeExtents
	}
	return e.cfg.Expander.ExpandLayer(extents)
}

func (e *Explorer) selectTime(ctx context.Context, value string) error {
	e.stateMu.Lock()
	if !contains(e.state.Times, value) {
		e.stateMu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownTime, value)
	}
	e.state.Time = value
	e.stateMu.Unlock()
	return e.refresh(ctx)
}

// refresh rebuilds the display. Loading is cleared however it returns.
func (e *Explorer) refresh(ctx context.Context) (err error) {
	var display model.Display
	e.update(func(s *State) { s.Loading = true })
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Refresh panicked: %v", r)
		}
		e.update(func(s *State) {
			s.Loading = false
			if err != nil {
				s.Error = err.Error()
				return
			}
			s.Error = ""
			s.Display = display
		})
	}()

	current := e.State()
	if current.Layer == "" {
		return errors.New("No layer selected")
	}
	layerID := e.cfg.Catalog.Resolve(current.Product, current.Layer)
	result := e.cfg.Templater.Build(ctx, layerID, current.Time)
	if !result.OK() {
		if result.Err == nil {
			return fmt.Errorf("No template produced for %s", layerID)
		}
		return util.LogSimpleErr(e.cfg.Context, fmt.Sprintf("Failed to refresh %s.", layerID), result.Err)
	}
	display = DisplayFor(e.cfg.Layers, layerID, current.Time, result)
	util.LogInfo(e.cfg.Context, fmt.Sprintf("Displaying %s at %s", layerID, current.Time))
	return nil
}

// DisplayFor assembles the display of a built template: the layer's title
// (its identifier when untitled) and its default legend.
func DisplayFor(layers LayerSource, layerID, timeValue string, result tiles.Result) model.Display {
	display := model.Display{Layer: layerID, Title: layerID, Template: result.Template.String(), TimeDropped: result.TimeDropped}
	if !result.TimeDropped {
		display.Time = timeextent.TimeParam(timeValue)
	}
	if meta, ok := layers.Layer(layerID); ok {
		if meta.Title != "" {
			display.Title = meta.Title
		}
		display.Legend = meta.DefaultLegend()
	}
	return display
}

// Describe returns the metadata of an advertised layer
func Describe(cat *catalog.Catalog, layers LayerSource, expander timeextent.Expander, layerID string) (model.LayerMetadata, bool) {
	if !cat.Contains(layerID) {
		return model.LayerMetadata{}, false
	}
	product, sub := catalog.Split(layerID)
	md := model.LayerMetadata{ID: layerID, Product: product, Layer: sub, Title: layerID}
	if meta, ok := layers.Layer(layerID); ok {
		if meta.Title != "" {
			md.Title = meta.Title
		}
		md.Abstract = meta.Abstract
		md.Legend = meta.DefaultLegend()
		md.Extents = meta.TimeExtents
		md.Bound = meta.Bound
	}
	md.Times = expander.ExpandLayer(md.Extents)
	return md, true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
