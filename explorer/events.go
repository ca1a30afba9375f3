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

package explorer

// Event is a discrete user action routed through Dispatch
type Event interface {
	eventName() string
}

// ProductSelected selects a product and resets the layer to its first sub-layer
type ProductSelected struct {
	Product string
}

// LayerSelected selects a sub-layer of the current product
type LayerSelected struct {
	Layer string
}

// TimeSelected selects one of the current time options
type TimeSelected struct {
	Time string
}

// RefreshRequested rebuilds the display for the current selection
type RefreshRequested struct{}

func (ProductSelected) eventName() string  { return "ProductSelected" }
func (LayerSelected) eventName() string    { return "LayerSelected" }
func (TimeSelected) eventName() string     { return "TimeSelected" }
func (RefreshRequested) eventName() string { return "RefreshRequested" }
