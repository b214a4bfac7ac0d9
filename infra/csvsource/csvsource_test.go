package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/opsreport/core/factory"
	"github.com/kilianp07/opsreport/core/source"
)

const data = `timestamp,tag,value
2024-03-04T06:02:00Z,N_IN,3
2024-03-04T06:00:00Z,N_IN,1
2024-03-04T06:01:00Z,N_IN,2
2024-03-04T06:00:00Z,N_TV,250.5
`

func TestReadAndFetch(t *testing.T) {
	s, err := Read(strings.NewReader(data), Config{})
	require.NoError(t, err)
	assert.Equal(t, []string{"N_IN", "N_TV"}, s.Tags())

	start := time.Date(2024, 3, 4, 6, 1, 0, 0, time.UTC)
	got, err := s.Fetch(context.Background(), []string{"N_IN", "N_TV", "X"}, start, start.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got["N_IN"], 2)
	assert.Equal(t, 2.0, got["N_IN"][0].Value)
	assert.Equal(t, 3.0, got["N_IN"][1].Value)
	_, ok := got["N_TV"]
	assert.False(t, ok)
	_, ok = got["X"]
	assert.False(t, ok)
}

func TestReadLayoutAndErrors(t *testing.T) {
	s, err := Read(strings.NewReader("2024-03-04 06:00,A,1\n"), Config{Layout: "2006-01-02 15:04", Timezone: "America/Chicago"})
	require.NoError(t, err)
	loc, _ := time.LoadLocation("America/Chicago")
	got, err := s.Fetch(context.Background(), []string{"A"}, time.Date(2024, 3, 4, 0, 0, 0, 0, loc), time.Date(2024, 3, 5, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Len(t, got["A"], 1)
	assert.Equal(t, 6, got["A"][0].Time.In(loc).Hour())

	_, err = Read(strings.NewReader("2024-03-04T06:00:00Z,A,x\n"), Config{})
	assert.ErrorContains(t, err, "line 1")
	_, err = Read(strings.NewReader("h,t,v\nbad,A,1\n"), Config{})
	assert.ErrorContains(t, err, "line 2")
	_, err = Read(strings.NewReader("a,b\n"), Config{})
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	src, err := source.New(factory.ModuleConfig{Type: "csv", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	assert.IsType(t, &Source{}, src)

	_, err = source.New(factory.ModuleConfig{Type: "csv"})
	assert.ErrorContains(t, err, "requires a path")
}
