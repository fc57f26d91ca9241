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

package rendering

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridcore/core/grid"
	"github.com/google/gridcore/core/query"
	"github.com/google/gridcore/core/views"
	"github.com/google/gridcore/demo"
)

func TestRenderGrid(t *testing.T) {
	u, err := url.Parse("/grid?grouped=region&agg=price:avg&pageSize=0")
	require.NoError(t, err)
	q := query.NewQuery(u)
	snap := q.Snapshot()

	source := demo.Orders()
	g := grid.New(grid.Options{
		Columns:          source.Columns,
		Rows:             source.Rows,
		AggregationModel: snap.AggregationModel,
		RowGroupingModel: snap.RowGroupingModel,
	})
	defer g.Close()

	r, err := NewGridRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, views.BuildViewModel(g, q, "Orders <demo>")))

	html := buf.String()
	assert.Contains(t, html, "Orders &lt;demo&gt;")
	assert.Contains(t, html, "EMEA (7)")
	assert.Contains(t, html, `class="aggregated"`)
	assert.Contains(t, html, "agg=price%3Aavg")
}
