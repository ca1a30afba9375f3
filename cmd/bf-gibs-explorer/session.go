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

package main

import (
	"context"
	"fmt"

	"github.com/venicegeo/bf-gibs-explorer/catalog"
	"github.com/venicegeo/bf-gibs-explorer/explorer"
	"github.com/venicegeo/bf-gibs-explorer/tiles"
	"github.com/venicegeo/bf-gibs-explorer/timeextent"
	"github.com/venicegeo/bf-gibs-explorer/util"
	"github.com/venicegeo/bf-gibs-explorer/wms"
)

// session is everything loaded once at startup
type session struct {
	Catalog   *catalog.Catalog
	Layers    explorer.LayerSource
	Templater explorer.TemplateBuilder
	Expander  timeextent.Expander
}

var loadSessionFunc = loadSession

func loadSession(ctx context.Context, logCtx util.LogContext) (*session, error) {
	wmsURL := util.GetWMSURL()
	client := wms.NewClient(wmsURL)
	caps, err := client.GetCapabilities(ctx)
	if err != nil {
		return nil, util.LogSimpleErr(logCtx, fmt.Sprintf("Failed to load capabilities from %s.", wmsURL), err)
	}
	cat := catalog.New(caps.LayerNames())
	util.LogInfo(logCtx, fmt.Sprintf("Catalog has %d layers in %d products", cat.Len(), len(cat.Products())))
	return &session{
		Catalog:   cat,
		Layers:    caps,
		Templater: tiles.Templater{Requester: client, Context: logCtx},
		Expander:  timeextent.Expander{MaxPositions: util.GetMaxTimePositions()},
	}, nil
}

func (s *session) explorerConfig(logCtx util.LogContext) explorer.Config {
	return explorer.Config{
		Catalog:   s.Catalog,
		Layers:    s.Layers,
		Templater: s.Templater,
		Expander:  s.Expander,
		Context:   logCtx,
	}
}
