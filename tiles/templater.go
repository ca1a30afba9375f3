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
	"fmt"

	"github.com/venicegeo/bf-gibs-explorer/timeextent"
	"github.com/venicegeo/bf-gibs-explorer/util"
	"github.com/venicegeo/bf-gibs-explorer/wms"
)

// Fixed parameters of the proof request
const (
	SRS    = "EPSG:3857"
	Size   = 256
	Format = "image/png"
)

// MapRequester issues a GetMap request and returns its concrete URL
type MapRequester interface {
	GetMap(ctx context.Context, req wms.GetMapRequest) (string, error)
}

// Result is the outcome of building a template: either Template or Err is set.
type Result struct {
	Layer    string
	Template Template
	Err      error

	// TimeDropped is set when the request only succeeded without its time value
	TimeDropped bool
}

// OK returns whether a template was produced
func (r Result) OK() bool {
	return r.Err == nil && r.Template != ""
}

// Templater builds tile URL templates from proof requests
type Templater struct {
	Requester MapRequester
	Context   util.LogContext
}

// Request returns the proof GetMap request for layer. "N/A" and "" mean no time.
func Request(layer, timeValue string) wms.GetMapRequest {
	return wms.GetMapRequest{
		Layers:      []string{layer},
		SRS:         SRS,
		BBox:        ProofBBox,
		Width:       Size,
		Height:      Size,
		Format:      Format,
		Transparent: true,
		Time:        timeextent.TimeParam(timeValue),
	}
}

// Build issues the proof request. If it fails it is retried once without the
// time value; a second failure is returned as is.
func (t Templater) Build(ctx context.Context, layer, timeValue string) Result {
	logCtx := t.Context
	if logCtx == nil {
		logCtx = &util.BasicLogContext{}
	}
	req := Request(layer, timeValue)
	result := Result{Layer: layer}

	url, err := t.Requester.GetMap(ctx, req)
	if err != nil {
		util.LogAlert(logCtx, fmt.Sprintf("GetMap for %s at time %q failed, retrying without time: %v", layer, req.Time, err))
		result.TimeDropped = req.Time != ""
		req.Time = ""
		if url, err = t.Requester.GetMap(ctx, req); err != nil {
			result.Err = err
			return result
		}
	}
	result.Template = ToTemplate(url)
	return result
}
