package e2e

import (
	"context"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/infra/influx"
)

func TestInfluxSourceFetch(t *testing.T) {
	requireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	url := startInflux(ctx, t)

	start := time.Now().UTC().Truncate(time.Minute).Add(-time.Hour)
	cli := influxdb2.NewClient(url, influxToken)
	defer cli.Close()
	w := cli.WriteAPIBlocking(influxOrg, influxBucket)
	var pts []*write.Point
	for i := 0; i < 10; i++ {
		ts := start.Add(time.Duration(i) * time.Minute)
		pts = append(pts,
			influxdb2.NewPoint("sensor", map[string]string{"tag": "LOC_A.INLET"}, map[string]any{"value": 100 + float64(i)}, ts),
			influxdb2.NewPoint("sensor", map[string]string{"tag": "LOC_A.LEVEL"}, map[string]any{"value": 50.0}, ts),
		)
	}
	require.NoError(t, w.WritePoint(ctx, pts...))

	src, err := influx.New(influx.Config{URL: url, Token: influxToken, Org: influxOrg, Bucket: influxBucket})
	require.NoError(t, err)
	defer src.Close()

	got, err := src.Fetch(ctx, []string{"LOC_A.INLET", "LOC_A.LEVEL", "LOC_A.MISSING"}, start, start.Add(9*time.Minute))
	require.NoError(t, err)
	require.Len(t, got["LOC_A.INLET"], 10)
	assert.Len(t, got["LOC_A.LEVEL"], 10)
	assert.Empty(t, got["LOC_A.MISSING"])

	// Minute means keep the timestamp of their window start.
	f, err := source.NewLoader(src, nil).Load(ctx, source.Request{
		Start:   start,
		End:     start.Add(9 * time.Minute),
		Columns: []source.Column{{Name: "inlet_flowrate", Tags: []string{"LOC_A.INLET"}}},
	})
	require.NoError(t, err)
	inlet, _ := f.Col("inlet_flowrate")
	assert.Equal(t, 100.0, inlet[0])
	assert.Equal(t, 109.0, inlet[len(inlet)-1])
}
