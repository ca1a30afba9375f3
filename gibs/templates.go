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
	"sync"

	"github.com/venicegeo/bf-gibs-explorer/explorer"
	"github.com/venicegeo/bf-gibs-explorer/tiles"
	"github.com/venicegeo/bf-gibs-explorer/timeextent"
)

type templateKey struct {
	layer string
	time  string
}

// DefaultTemplateCacheSize is the number of templates a server keeps
const DefaultTemplateCacheSize = 4096

// TemplateCache remembers up to size successfully built templates, dropping
// the oldest first. Failures are not cached.
type TemplateCache struct {
	mu      sync.RWMutex
	size    int
	entries map[templateKey]tiles.Result
	order   []templateKey
}

// NewTemplateCache returns an empty cache holding at most size templates
func NewTemplateCache(size int) *TemplateCache {
	if size <= 0 {
		size = DefaultTemplateCacheSize
	}
	return &TemplateCache{size: size, entries: map[templateKey]tiles.Result{}}
}

// Build returns the cached template for layer and time, building it with
// builder on a miss.
func (c *TemplateCache) Build(ctx context.Context, builder explorer.TemplateBuilder, layer, timeValue string) tiles.Result {
	key := templateKey{layer: layer, time: timeextent.TimeParam(timeValue)}
	c.mu.RLock()
	result, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return result
	}

	result = builder.Build(ctx, layer, timeValue)
	if result.OK() {
		c.mu.Lock()
		c.add(key, result)
		c.mu.Unlock()
	}
	return result
}

func (c *TemplateCache) add(key templateKey, result tiles.Result) {
	if _, ok := c.entries[key]; !ok {
		for len(c.order) >= c.size {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = result
}

// Len returns the number of cached templates
func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
