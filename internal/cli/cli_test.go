package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/opportunity-map-go/internal/mapviz"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MAPVIZ_LOG_LEVEL", "error")
	t.Setenv("MAPVIZ_DATABASE_PATH", filepath.Join(t.TempDir(), "cli.db"))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "mapviz", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"serve", "color", "cluster", "migrate"} {
		assert.True(t, names[want], want)
	}
}

func TestColorCommand(t *testing.T) {
	out, err := run(t, "color", "$1M", "--min", "0", "--max", "1000000")
	require.NoError(t, err)
	assert.Equal(t, mapviz.HighestColor().String()+"\n", out)

	out, err = run(t, "color", "n/a")
	require.NoError(t, err)
	assert.Equal(t, mapviz.LowestColor().String()+"\n", out)

	out, err = run(t, "color", "--rank", "0.5")
	require.NoError(t, err)
	assert.Equal(t, mapviz.ColorForRank(0.5).String()+"\n", out)

	_, err = run(t, "color")
	assert.Error(t, err)
}

const yamlFixture = `entities:
  - name: Marina tower
    latitude: 25.08
    longitude: 55.14
    value: "$1M"
  - name: Marina loft
    latitude: 25.08
    longitude: 55.14
    value: 500000
  - name: Mayfair flat
    kind: vault_asset
    latitude: 51.51
    longitude: -0.15
    value: 250K
  - name: No position
    value: 3M
`

type clusterOutput struct {
	Clusters []struct {
		Key     string `json:"key"`
		Markers []struct {
			Spread bool `json:"spread"`
			Entity struct {
				Name   string  `json:"name"`
				Amount float64 `json:"amount"`
			} `json:"entity"`
		} `json:"markers"`
	} `json:"clusters"`
	Markers int `json:"markers"`
}

func TestClusterCommand_YAML(t *testing.T) {
	path := writeFile(t, "fixture.yaml", yamlFixture)

	out, err := run(t, "cluster", "--file", path)
	require.NoError(t, err)

	var resp clusterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, 3, resp.Markers)
	require.Len(t, resp.Clusters, 2)
	assert.Equal(t, "25.080000,55.140000", resp.Clusters[0].Key)
	assert.True(t, resp.Clusters[0].Markers[0].Spread)
	assert.Equal(t, 1_000_000.0, resp.Clusters[0].Markers[0].Entity.Amount)
	assert.Equal(t, 250_000.0, resp.Clusters[1].Markers[0].Entity.Amount)
}

func TestClusterCommand_JSONWithFilters(t *testing.T) {
	path := writeFile(t, "fixture.json", `{"entities": [
		{"name": "A", "latitude": 1.3, "longitude": 103.8, "value": "$900K"},
		{"name": "B", "latitude": 1.3, "longitude": 103.8, "value": "$1.1M"},
		{"name": "C", "kind": "event", "latitude": 1.3, "longitude": 103.8, "value": "$1M"}
	]}`)

	out, err := run(t, "cluster", "-f", path, "--kind", "opportunity", "--min-value", "1000000")
	require.NoError(t, err)

	var resp clusterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, 1, resp.Markers)
	assert.Equal(t, "B", resp.Clusters[0].Markers[0].Entity.Name)
	assert.False(t, resp.Clusters[0].Markers[0].Spread)
}

func TestClusterCommand_Errors(t *testing.T) {
	_, err := run(t, "cluster")
	assert.Error(t, err)

	_, err = run(t, "cluster", "--file", writeFile(t, "fixture.csv", "a,b"))
	assert.ErrorContains(t, err, "unsupported fixture format")

	_, err = run(t, "cluster", "--file", writeFile(t, "bad.yaml", "entities: [{value: {nested: 1}}]"))
	assert.Error(t, err)

	_, err = run(t, "cluster", "--file", writeFile(t, "ok.json", `{"entities": []}`), "--kind", "yacht")
	assert.ErrorContains(t, err, "unknown kind")
}

func TestMigrateCommand(t *testing.T) {
	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
}

func TestLoadFixture_Defaults(t *testing.T) {
	entities, err := loadFixture(writeFile(t, "f.yml", "entities:\n  - name: x\n    value: 2.5M\n"))
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "opportunity", entities[0].Kind)
	assert.Equal(t, 2_500_000.0, entities[0].Amount)
	assert.Nil(t, entities[0].Latitude)
}
