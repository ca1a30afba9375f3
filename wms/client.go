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

package wms

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/venicegeo/bf-gibs-explorer/util"
)

// Client talks to a single WMS endpoint
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	sessionID  string
}

// NewClient returns a client for baseURL using the shared HTTP client
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: util.HTTPClient(), sessionID: util.NewSessionID()}
}

// AppName is part of the util.LogContext implementation
func (c *Client) AppName() string {
	return util.AppName
}

// SessionID is part of the util.LogContext implementation
func (c *Client) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = util.NewSessionID()
	}
	return c.sessionID
}

// LogRootDir is part of the util.LogContext implementation
func (c *Client) LogRootDir() string {
	return ""
}

// ServiceException is a request the WMS rejected with a ServiceExceptionReport
type ServiceException struct {
	Code    string
	Message string
	URL     string
}

func (e *ServiceException) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("WMS service exception (%s): %s", e.Code, e.Message)
	}
	return "WMS service exception: " + e.Message
}

type xmlExceptionReport struct {
	Exceptions []struct {
		Code    string `xml:"code,attr"`
		Message string `xml:",chardata"`
	} `xml:"ServiceException"`
}

// parseServiceException returns nil when body is not an exception report
func parseServiceException(body []byte, requestURL string) *ServiceException {
	var report xmlExceptionReport
	if err := xml.Unmarshal(body, &report); err != nil || len(report.Exceptions) == 0 {
		return nil
	}
	var messages []string
	for _, e := range report.Exceptions {
		if m := strings.TrimSpace(e.Message); m != "" {
			messages = append(messages, m)
		}
	}
	return &ServiceException{
		Code:    strings.TrimSpace(report.Exceptions[0].Code),
		Message: strings.Join(messages, "; "),
		URL:     requestURL,
	}
}

// GetCapabilities fetches and parses the service's capabilities document
func (c *Client) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	var (
		response *http.Response
		caps     *Capabilities
		err      error
	)
	requestURL := joinQuery(c.BaseURL, capabilitiesQuery(c.BaseURL))
	if response, err = c.do(ctx, "wms/GetCapabilities", requestURL); err != nil {
		return nil, util.LogSimpleErr(c, "Failed to complete WMS GetCapabilities request.", err)
	}
	defer response.Body.Close()

	switch {
	case (response.StatusCode >= 400) && (response.StatusCode < 500):
		message := fmt.Sprintf("Failed to retrieve WMS capabilities: %v. ", response.Status)
		err := util.HTTPErr{Status: response.StatusCode, Message: message}
		util.LogAlert(c, message)
		return nil, err
	case response.StatusCode >= 500:
		return nil, util.LogSimpleErr(c, "Failed to retrieve WMS capabilities.", errors.New(response.Status))
	default:
		//no op
	}

	if caps, err = ParseCapabilities(response.Body); err != nil {
		return nil, util.LogSimpleErr(c, fmt.Sprintf("Failed to parse capabilities from %v.", requestURL), err)
	}
	util.LogInfo(c, fmt.Sprintf("Loaded %d layers from WMS capabilities (version %s)", caps.Len(), caps.Version))
	return caps, nil
}

// GetMap issues req and returns its URL when the service answers with an
// image. A rejection is a *ServiceException or a util.HTTPErr.
func (c *Client) GetMap(ctx context.Context, req GetMapRequest) (string, error) {
	var (
		response   *http.Response
		body       []byte
		requestURL string
		err        error
	)
	if requestURL, err = req.URL(c.BaseURL); err != nil {
		return "", err
	}
	if response, err = c.do(ctx, "wms/GetMap", requestURL); err != nil {
		return "", util.LogSimpleErr(c, "Failed to complete WMS GetMap request.", err)
	}
	defer response.Body.Close()

	switch {
	case (response.StatusCode >= 400) && (response.StatusCode < 500):
		message := fmt.Sprintf("WMS rejected GetMap for %v: %v. ", strings.Join(req.Layers, ","), response.Status)
		err := util.HTTPErr{Status: response.StatusCode, Message: message}
		util.LogAlert(c, message)
		return "", err
	case response.StatusCode >= 500:
		return "", util.LogSimpleErr(c, "WMS failed to render GetMap.", errors.New(response.Status))
	default:
		//no op
	}

	mediaType, _, _ := mime.ParseMediaType(response.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "image/") {
		return requestURL, nil
	}

	if body, err = io.ReadAll(io.LimitReader(response.Body, 1<<20)); err != nil {
		return "", util.LogSimpleErr(c, "Failed to read WMS GetMap response.", err)
	}
	if exception := parseServiceException(body, requestURL); exception != nil {
		util.LogAlert(c, exception.Error())
		return "", exception
	}
	return "", util.Error{
		LogMsg:     fmt.Sprintf("WMS answered GetMap with unexpected content type %q", mediaType),
		SimpleMsg:  "WMS did not return an image",
		Response:   string(body),
		URL:        requestURL,
		HTTPStatus: response.StatusCode,
	}.Log(c, "wms/GetMap")
}

func capabilitiesQuery(base string) string {
	query := "REQUEST=GetCapabilities&VERSION=" + Version
	if !hasParam(base, "service") {
		query = "SERVICE=WMS&" + query
	}
	return query
}

func (c *Client) do(ctx context.Context, actor, requestURL string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to make a new HTTP request for %v: %w", requestURL, err)
	}
	util.LogAudit(c, util.LogAuditInput{Actor: actor, Action: http.MethodGet, Actee: requestURL, Message: "Requesting data from WMS", Severity: util.INFO})
	client := c.HTTPClient
	if client == nil {
		client = util.HTTPClient()
	}
	return client.Do(request)
}
