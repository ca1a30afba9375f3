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
	"os"
	"time"

	"github.com/spf13/viper"
)

// Environment variables
const (
	GIBS_WMS_URL            = "GIBS_WMS_URL"
	GIBS_MAX_TIME_POSITIONS = "GIBS_MAX_TIME_POSITIONS"
	HTTP_TIMEOUT            = "HTTP_TIMEOUT"
	PORT                    = "PORT"
	LOG_LEVEL               = "LOG_LEVEL"
	LOG_PRETTY              = "LOG_PRETTY"
	VCAP_SERVICES           = "VCAP_SERVICES"
)

// DefaultWMSURL is the GIBS "best available" Web Mercator endpoint.
const DefaultWMSURL = "https://gibs.earthdata.nasa.gov/wms/epsg3857/best/wms.cgi?SERVICE=WMS"

const wmsVcapService = "gibs-wms"

const defaultHTTPTimeout = 60 * time.Second

// Config is read lazily on every call so tests may change the environment
// between calls.
func newConfig() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(PORT, "8080")
	v.SetDefault(HTTP_TIMEOUT, defaultHTTPTimeout)
	v.SetDefault(GIBS_MAX_TIME_POSITIONS, 0)
	v.SetDefault(LOG_LEVEL, "info")
	v.SetDefault(LOG_PRETTY, false)
	return v
}

// GetWMSURL returns the WMS endpoint from GIBS_WMS_URL, falling back to a
// "gibs-wms" service in VCAP_SERVICES and then to the public GIBS endpoint.
func GetWMSURL() string {
	v := newConfig()
	if v.IsSet(GIBS_WMS_URL) && v.GetString(GIBS_WMS_URL) != "" {
		return v.GetString(GIBS_WMS_URL)
	}

	if raw, ok := os.LookupEnv(VCAP_SERVICES); ok {
		services, err := ParseVcapServices([]byte(raw))
		if err != nil {
			LogAlert(&BasicLogContext{}, "Could not parse VCAP_SERVICES: "+err.Error())
		} else if service := services.FindServiceByName(wmsVcapService); service != nil {
			if uri, err := service.Credentials.String("uri"); err == nil {
				return uri
			}
			LogAlert(&BasicLogContext{}, "VCAP service 'gibs-wms' has no usable 'uri' credential")
		}
	}

	LogInfo(&BasicLogContext{}, "Did not get WMS URL from the environment. Using default GIBS endpoint: "+DefaultWMSURL)
	return DefaultWMSURL
}

// GetPortStr returns the listen address built from the PORT environment variable
func GetPortStr() string {
	return ":" + newConfig().GetString(PORT)
}

// GetHTTPTimeout returns the timeout applied to outbound requests
func GetHTTPTimeout() time.Duration {
	d := newConfig().GetDuration(HTTP_TIMEOUT)
	if d <= 0 {
		return defaultHTTPTimeout
	}
	return d
}

// GetMaxTimePositions returns the cap on enumerated time positions; 0 means the
// expander's own limit.
func GetMaxTimePositions() int {
	n := newConfig().GetInt(GIBS_MAX_TIME_POSITIONS)
	if n < 0 {
		return 0
	}
	return n
}

// GetLogLevel returns the configured log level name
func GetLogLevel() string {
	return newConfig().GetString(LOG_LEVEL)
}

// IsPrettyLogging returns true if human-readable console logging is requested
func IsPrettyLogging() bool {
	return newConfig().GetBool(LOG_PRETTY)
}
