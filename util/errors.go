// Copyright 2016, RadiantBlue Technologies, Inc.
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

package util

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error carries both a detailed message for the log and a simple one for users
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
}

// Error returns the simple message
func (e Error) Error() string {
	if e.SimpleMsg != "" {
		return e.SimpleMsg
	}
	return e.LogMsg
}

// Log writes the detailed message to the log and returns the error itself
func (e Error) Log(ctx LogContext, prefix string) error {
	msg := e.LogMsg
	if msg == "" {
		msg = e.SimpleMsg
	}
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	if e.URL != "" {
		msg += fmt.Sprintf(" (url: %s, status: %d)", e.URL, e.HTTPStatus)
	}
	if e.Response != "" {
		msg += "\nResponse: " + e.Response
	}
	LogAlert(ctx, msg)
	return e
}

// HTTPErr is an error that maps onto an HTTP status code
type HTTPErr struct {
	Status  int
	Message string
}

func (err HTTPErr) Error() string {
	return fmt.Sprintf("%d: %s", err.Status, err.Message)
}

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// HTTPError writes a JSON error body with the given status
func HTTPError(request *http.Request, writer http.ResponseWriter, ctx LogContext, message string, status int) {
	body := errorBody{Status: status, Message: message}
	if request != nil && request.URL != nil {
		body.Path = request.URL.Path
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		LogSimpleErr(ctx, "Failed to write error response", err)
	}
}
