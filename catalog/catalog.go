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

// Package catalog groups flat WMS layer identifiers into products and
// sub-layers, e.g. "MODIS_Terra_CorrectedReflectance_TrueColor" is layer
// "Terra_CorrectedReflectance_TrueColor" of product "MODIS".
package catalog

import (
	"sort"
	"strings"
)

// Separator splits a layer identifier into product and sub-layer
const Separator = "_"

// Miscellaneous is the product holding identifiers that have no separator
const Miscellaneous = "Miscellaneous"

// Catalog is an immutable product -> sub-layer index
type Catalog struct {
	products map[string][]string
	names    []string
	ids      map[string]struct{}
}

// New builds a catalog from the layer identifiers advertised by the service.
// Duplicate identifiers are collapsed.
func New(layerIDs []string) *Catalog {
	c := &Catalog{
		products: map[string][]string{Miscellaneous: {}},
		ids:      make(map[string]struct{}, len(layerIDs)),
	}
	for _, id := range layerIDs {
		if _, seen := c.ids[id]; seen {
			continue
		}
		c.ids[id] = struct{}{}
		product, layer := Split(id)
		c.products[product] = append(c.products[product], layer)
	}

	c.names = make([]string, 0, len(c.products))
	for product, layers := range c.products {
		sort.Strings(layers)
		c.names = append(c.names, product)
	}
	sort.Strings(c.names)
	return c
}

// Split breaks a layer identifier on its first separator. Identifiers without
// one belong to the Miscellaneous product and are their own sub-layer.
func Split(layerID string) (product string, layer string) {
	if i := strings.Index(layerID, Separator); i >= 0 {
		return layerID[:i], layerID[i+len(Separator):]
	}
	return Miscellaneous, layerID
}

// Resolve maps a product and sub-layer selection back to the layer identifier
func Resolve(product, layer string) string {
	if product == Miscellaneous {
		return layer
	}
	return product + Separator + layer
}

// Products returns the sorted product names
func (c *Catalog) Products() []string {
	return append([]string(nil), c.names...)
}

// Layers returns the sorted sub-layers of a product, or nil for an unknown product
func (c *Catalog) Layers(product string) []string {
	layers, ok := c.products[product]
	if !ok {
		return nil
	}
	return append([]string{}, layers...)
}

// HasProduct returns whether product is in the catalog
func (c *Catalog) HasProduct(product string) bool {
	_, ok := c.products[product]
	return ok
}

// Resolve is the package-level Resolve; it exists so callers holding a
// catalog need not import the package for it.
func (c *Catalog) Resolve(product, layer string) string {
	return Resolve(product, layer)
}

// Contains returns whether the service advertised layerID
func (c *Catalog) Contains(layerID string) bool {
	_, ok := c.ids[layerID]
	return ok
}

// Len returns the number of distinct layer identifiers
func (c *Catalog) Len() int {
	return len(c.ids)
}
