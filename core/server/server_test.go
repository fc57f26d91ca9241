/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridcore/core/aggregation"
	"github.com/google/gridcore/core/gridstate"
	"github.com/google/gridcore/demo"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := NewServer(demo.Orders(), Settings{
		Title: "Orders",
		Defaults: gridstate.Snapshot{
			AggregationModel: demo.DefaultAggregationModel(),
			RowGroupingModel: demo.DefaultRowGroupingModel(),
		},
	}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{CheckRedirect: noRedirect}
	resp, err := client.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRootRedirects(t *testing.T) {
	resp, _ := get(t, newTestServer(t), "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, GridPath, resp.Header.Get("Location"))
}

func TestGridPageUsesDefaults(t *testing.T) {
	resp, body := get(t, newTestServer(t), GridPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "EMEA (7)")
	assert.Contains(t, body, "books (3)")
}

func TestGridPageRejectsUnknownFilter(t *testing.T) {
	resp, body := get(t, newTestServer(t), GridPath+"?filter:colour=red")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "colour")
}

func TestTextPage(t *testing.T) {
	resp, body := get(t, newTestServer(t), GridPath+".txt?grouped=category&agg=quantity:sum&pageSize=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "books (8)")
	assert.Contains(t, body, "Quantity (sum)")
}

func TestCollapsedGroupHidesChildren(t *testing.T) {
	ts := newTestServer(t)
	_, expanded := get(t, ts, GridPath+".txt?grouped=category&pageSize=0")
	_, collapsed := get(t, ts, GridPath+".txt?grouped=category&pageSize=0&collapsed=auto-generated-row-category%2Fbooks")

	assert.Contains(t, expanded, "▾ books (8)")
	assert.Contains(t, collapsed, "▸ books (8)")
	assert.Less(t, strings.Count(collapsed, "\n"), strings.Count(expanded, "\n"))
}

func TestStateExportAndRestore(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/state?grouped=region&agg=price:avg&pageSize=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"rowGrouping"`)

	client := &http.Client{CheckRedirect: noRedirect}
	post, err := client.Post(ts.URL+"/state", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer post.Body.Close()
	assert.Equal(t, http.StatusSeeOther, post.StatusCode)

	location := post.Header.Get("Location")
	assert.Contains(t, location, "grouped=region")
	assert.Contains(t, location, "agg=price%3Aavg")
	assert.Contains(t, location, "pageSize=5")
}

func TestRestoreURLRejectsGarbage(t *testing.T) {
	_, err := RestoreURL([]byte("not json"))
	assert.Error(t, err)
}

func TestSetSettings(t *testing.T) {
	s, err := NewServer(demo.Orders(), Settings{Title: "Before"}, nil)
	require.NoError(t, err)
	s.SetSettings(Settings{Title: "After", Position: aggregation.DefaultPosition})

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	_, body := get(t, ts, GridPath+".txt?pageSize=0")
	assert.Contains(t, body, "After")
}
