// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squares = `{
  "name": "squares",
  "group_names": ["kind"],
  "objects": [
    {"id": "s1", "landmarks": [[0,0],[1,0],[1,1],[0,1]], "groups": ["square"]},
    {"id": "s2", "landmarks": [[0,0],[2,0],[2,2],[0,2.1]], "groups": ["square"]},
    {"id": "s3", "landmarks": [[1,1],[2,1.05],[2,2],[1,2]], "groups": ["square"]},
    {"id": "k1", "landmarks": [[0,0],[1,0],[1.5,1],[0,1]], "groups": ["kite"]},
    {"id": "k2", "landmarks": [[0,0],[2,0],[3.1,2],[0,2]], "groups": ["kite"]},
    {"id": "k3", "landmarks": [[0,0],[1,0],[1.45,1],null], "groups": ["kite"]}
  ]
}`

func TestRun_ImportAnalyseShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "morpho.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database_path: "+filepath.Join(dir, "m.db")+"\nlog_level: error\n"), 0o600))
	dataPath := filepath.Join(dir, "squares.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(squares), 0o600))
	ctx := context.Background()
	base := options{configPath: cfgPath, cvaGroup: -1, manovaGroup: -1, grid: -1}

	var out bytes.Buffer
	o := base
	o.importPath = dataPath
	require.NoError(t, run(ctx, o, &out))
	var imported map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &imported))
	id := imported["dataset_id"]
	require.NotEmpty(t, id)

	out.Reset()
	o = base
	o.datasetID, o.name = id, "cli"
	require.NoError(t, run(ctx, o, &out))
	var rec struct {
		RunID string `json:"run_id"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "cli", rec.Name)
	require.NotEmpty(t, rec.RunID)

	out.Reset()
	o = base
	o.showRun = rec.RunID
	require.NoError(t, run(ctx, o, &out))
	assert.Contains(t, out.String(), `"cli"`)

	out.Reset()
	o = base
	o.datasetID, o.estimate = id, true
	require.NoError(t, run(ctx, o, &out))
	assert.Contains(t, out.String(), `"k3"`)

	o = base
	assert.Error(t, run(ctx, o, &out), "no action selected")
}
