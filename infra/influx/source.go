// Package influx reads location sensor samples from InfluxDB 2.x.
package influx

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/kilianp07/opsreport/core/factory"
	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/infra/logger"
)

// Config locates the sensor data. Every sample is a point of Measurement
// whose Field holds the value and whose TagKey tag names the sensor.
type Config struct {
	URL         string        `json:"url"`
	Token       string        `json:"token"`
	Org         string        `json:"org"`
	Bucket      string        `json:"bucket"`
	Measurement string        `json:"measurement"`
	Field       string        `json:"field"`
	TagKey      string        `json:"tag_key"`
	Timeout     time.Duration `json:"timeout"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Measurement == "" {
		c.Measurement = "sensor"
	}
	if c.Field == "" {
		c.Field = "value"
	}
	if c.TagKey == "" {
		c.TagKey = "tag"
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" || c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("influx source requires url, org and bucket")
	}
	return nil
}

// Source fetches tag samples with Flux queries.
type Source struct {
	cfg    Config
	client influxdb2.Client
	query  api.QueryAPI
	log    logger.Logger
}

func init() {
	_ = source.Register("influx", func(conf map[string]any) (source.Source, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(c)
	})
}

// New connects a Source to the configured server.
func New(cfg Config) (*Source, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &Source{
		cfg:    cfg,
		client: client,
		query:  client.QueryAPI(cfg.Org),
		log:    logger.New("influx-source"),
	}, nil
}

// Flux builds the query returning the samples of tags within [start, end].
func (s *Source) Flux(tags []string, start, end time.Time) string {
	conds := make([]string, len(tags))
	for i, t := range tags {
		conds[i] = fmt.Sprintf("r[%s] == %s", fluxString(s.cfg.TagKey), fluxString(t))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", fluxString(s.cfg.Bucket))
	fmt.Fprintf(&b, "  |> range(start: %s, stop: %s)\n",
		start.UTC().Format(time.RFC3339), end.Add(time.Second).UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %s and r._field == %s)\n",
		fluxString(s.cfg.Measurement), fluxString(s.cfg.Field))
	fmt.Fprintf(&b, "  |> filter(fn: (r) => %s)\n", strings.Join(conds, " or "))
	// Minute means are stamped with the start of their window, like the raw
	// samples they replace.
	b.WriteString("  |> aggregateWindow(every: 1m, fn: mean, timeSrc: \"_start\", createEmpty: false)\n")
	fmt.Fprintf(&b, "  |> keep(columns: [\"_time\", \"_value\", %s])", fluxString(s.cfg.TagKey))
	return b.String()
}

// Fetch implements source.Source.
func (s *Source) Fetch(ctx context.Context, tags []string, start, end time.Time) (map[string][]source.Point, error) {
	out := make(map[string][]source.Point, len(tags))
	if len(tags) == 0 {
		return out, nil
	}
	res, err := s.query.Query(ctx, s.Flux(tags, start, end))
	if err != nil {
		return nil, fmt.Errorf("influx query: %w", err)
	}
	defer func() { _ = res.Close() }()
	for res.Next() {
		rec := res.Record()
		tag, _ := rec.ValueByKey(s.cfg.TagKey).(string)
		v, ok := toFloat(rec.Value())
		if tag == "" || !ok {
			continue
		}
		out[tag] = append(out[tag], source.Point{Time: rec.Time(), Value: v})
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("influx result: %w", err)
	}
	for tag, pts := range out {
		sort.Slice(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
		out[tag] = pts
	}
	s.log.Debugf("fetched %d of %d tags", len(out), len(tags))
	return out, nil
}

// Close releases the client.
func (s *Source) Close() { s.client.Close() }

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// fluxString quotes s as a Flux string literal. A "$" is escaped so "${"
// never starts an interpolation.
func fluxString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}
