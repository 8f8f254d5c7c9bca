package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/store"
)

const obstaclesJSON = `[
  {
    "name": "north loop",
    "speed_avg": 30,
    "sphere_radius": 50,
    "waypoints": [
      {"order": 0, "latitude": 38.14, "longitude": -76.43, "altitude_msl": 200},
      {"order": 1, "latitude": 38.15, "longitude": -76.43, "altitude_msl": 300},
      {"order": 2, "latitude": 38.15, "longitude": -76.42, "altitude_msl": 300}
    ]
  },
  {
    "name": "balloon",
    "sphere_radius": 20,
    "waypoints": [{"order": 0, "latitude": 38.3, "longitude": -76.6, "altitude_msl": 1000}]
  }
]`

func openStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "obstacles.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestImportAndList(t *testing.T) {
	db := openStore(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, importObstacles(ctx, db, strings.NewReader(obstaclesJSON), &out))
	assert.Contains(t, out.String(), `stored "north loop" as 1 (3 waypoints)`)
	assert.Contains(t, out.String(), `stored "balloon" as 2 (1 waypoints)`)

	out.Reset()
	require.NoError(t, run(ctx, db, []string{"list"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "north loop")
	assert.NotContains(t, lines[1], " - ")
	assert.Contains(t, lines[2], "balloon")
	assert.True(t, strings.HasSuffix(lines[2], "-"))
}

func TestImportSingleObject(t *testing.T) {
	db := openStore(t)

	var out bytes.Buffer
	single := `{"name": "solo", "speed_avg": 10, "sphere_radius": 40, "waypoints": []}`
	require.NoError(t, importObstacles(context.Background(), db, strings.NewReader(single), &out))

	cfgs, err := db.ListConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "solo", cfgs[0].Name)
}

func TestImportMalformed(t *testing.T) {
	db := openStore(t)
	err := importObstacles(context.Background(), db, strings.NewReader(`{"name": `), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode obstacles")
}

func TestRunErrors(t *testing.T) {
	db := openStore(t)
	ctx := context.Background()

	assert.Error(t, run(ctx, db, nil, &bytes.Buffer{}))
	assert.Error(t, run(ctx, db, []string{"launch"}, &bytes.Buffer{}))
	assert.Error(t, run(ctx, db, []string{"delete", "abc"}, &bytes.Buffer{}))
	assert.ErrorIs(t, run(ctx, db, []string{"delete", "9"}, &bytes.Buffer{}), store.ErrNotFound)
}
