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

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWMSTime_Layouts(t *testing.T) {
	expected := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, input := range []string{
		"2020-01-02T03:04:05Z",
		"2020-01-02T03:04:05",
		"2020-01-02T03:04:05.000Z",
		"2020-01-02T05:04:05+02:00",
		" 2020-01-02T03:04:05Z\n",
	} {
		// Tested code
		parsed, err := ParseWMSTime(input)

		// Asserts
		assert.Nil(t, err, input)
		assert.True(t, expected.Equal(parsed), "%q parsed as %v", input, parsed)
		assert.Equal(t, time.UTC, parsed.Location())
	}
}

func TestParseWMSTime_DateOnly(t *testing.T) {
	parsed, err := ParseWMSTime("2012-05-08")

	assert.Nil(t, err)
	assert.Equal(t, "2012-05-08T00:00:00Z", parsed.Format(WMSTimeFormat))
}

func TestParseWMSTime_Error(t *testing.T) {
	_, err := ParseWMSTime("not-a-date")

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "not-a-date")
}
