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
	"net/http"

	"github.com/gorilla/mux"
)

// Mount registers the GIBS routes on router
func Mount(router *mux.Router, ctx Context) {
	if ctx.Templates == nil {
		ctx.Templates = NewTemplateCache(DefaultTemplateCacheSize)
	}
	// Every handler gets a copy; fix the session ID before copying.
	ctx.SessionID()
	router.Handle("/products", NewProductsHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/products/{product}", NewProductHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/products/{product}/layers", NewLayersHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/layers/{layer}", NewMetadataHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/layers/{layer}/times", NewTimesHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/layers/{layer}/template", NewTemplateHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/tiles/{layer}/{z:[0-9]+}/{x:[0-9]+}/{y:[0-9]+}.png", NewXYZTileHandler(ctx)).Methods(http.MethodGet)
}
