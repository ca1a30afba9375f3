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

// Package gibs serves the catalog, time options, templates and tiles of a
// GIBS WMS endpoint over HTTP.
package gibs

import (
	"github.com/venicegeo/bf-gibs-explorer/catalog"
	"github.com/venicegeo/bf-gibs-explorer/explorer"
	"github.com/venicegeo/bf-gibs-explorer/timeextent"
	"github.com/venicegeo/bf-gibs-explorer/util"
)

// Context is shared by every handler. Its catalog and layer source are built
// once at startup and only read afterwards.
type Context struct {
	Catalog   *catalog.Catalog
	Layers    explorer.LayerSource
	Templater explorer.TemplateBuilder
	Expander  timeextent.Expander
	Templates *TemplateCache
	sessionID string
}

// AppName returns the application name
func (c *Context) AppName() string {
	return util.AppName
}

// SessionID returns a Session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = util.NewSessionID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}

// NewContext returns a handler context with an empty template cache. Handlers
// copy the context, so the session ID is fixed here.
func NewContext(cat *catalog.Catalog, layers explorer.LayerSource, templater explorer.TemplateBuilder, expander timeextent.Expander) Context {
	return Context{
		Catalog:   cat,
		Layers:    layers,
		Templater: templater,
		Expander:  expander,
		Templates: NewTemplateCache(DefaultTemplateCacheSize),
		sessionID: util.NewSessionID(),
	}
}
