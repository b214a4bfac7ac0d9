package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/opsreport/core/model"
)

const sample = `report:
  timezone: "UTC"
  run_at: "05:30"
source:
  type: "csv"
  conf:
    path: "data.csv"
locations_file: "locations.yaml"
mail:
  host: "smtp.local"
  port: 2525
  sender: "reports@field.local"
  timeout: "5s"
  recipients:
    all: ["ops@field.local"]
  debug_recipients: ["dev@field.local"]
metrics:
  sinks:
    - type: "nop"
history:
  backend: "memory"
`

const sampleLocations = `locations:
  - key: "north"
    name: "North"
    connection_type: "connection_2"
    designation: "upper"
    inlet_flowrate: ["N_IN"]
    product_flowrate: ["N_PF"]
    product_tank_volume: ["N_TV"]
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "locations.yaml"), []byte(sampleLocations), 0o644); err != nil {
		t.Fatalf("write locations: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	t.Setenv("DEBUG", "")
	cfg, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"timezone", cfg.Report.Timezone, "UTC"},
		{"run_at", cfg.Report.RunAt, "05:30"},
		{"shift_start_hour", cfg.Report.ShiftStartHour, 7},
		{"source.type", cfg.Source.Type, "csv"},
		{"source.path", cfg.Source.Conf["path"], "data.csv"},
		{"mail.port", cfg.Mail.Port, 2525},
		{"mail.timeout", cfg.Mail.Timeout, 5 * time.Second},
		{"mail.tls", cfg.Mail.TLS, "opportunistic"},
		{"mail.master_list", cfg.Mail.MasterList, "all"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"history", cfg.History.Backend, "memory"},
		{"inference.window", cfg.Inference.Window, 30},
		{"locations", len(cfg.Locations), 1},
		{"debug", cfg.Debug, false},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	assert.Equal(t, model.Connection2, cfg.Locations[0].ConnectionType)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPSREPORT_MAIL__HOST", "relay.local")
	t.Setenv("DEBUG", "true")
	cfg, err := Load(writeSample(t))
	require.NoError(t, err)
	assert.Equal(t, "relay.local", cfg.Mail.Host)
	assert.True(t, cfg.Debug)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "config.ini"))
	assert.ErrorContains(t, err, "unsupported config format")

	path := filepath.Join(dir, "config.yaml")
	noMail := strings.Replace(sample, `host: "smtp.local"`, `host: ""`, 1)
	require.NoError(t, os.WriteFile(path, []byte(noMail), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "locations.yaml"), []byte(sampleLocations), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "mail host")

	noLocs := strings.Replace(sample, `locations_file: "locations.yaml"`, "", 1)
	require.NoError(t, os.WriteFile(path, []byte(noLocs), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "no locations")
}

func TestDecodeLocationsJSON(t *testing.T) {
	locs, err := DecodeLocations(strings.NewReader(`{"locations":[{"key":"a","name":"A","connection_type":"connection_1"}]}`), "json")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, model.Connection1, locs[0].ConnectionType)

	_, err = DecodeLocations(strings.NewReader(""), "xml")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPSREPORT_DOTENV_CHECK=yes\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("OPSREPORT_DOTENV_CHECK") })
	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "yes", os.Getenv("OPSREPORT_DOTENV_CHECK"))
}

func TestReportValidate(t *testing.T) {
	c := ReportConfig{Timezone: "Mars/Olympus"}
	c.SetDefaults()
	assert.Error(t, c.Validate())
	c = ReportConfig{RunAt: "25:99"}
	c.SetDefaults()
	assert.Error(t, c.Validate())
	c = ReportConfig{}
	c.SetDefaults()
	assert.NoError(t, c.Validate())
	assert.InDelta(t, 4.0/35, c.ChemicalGoal, 1e-9)
}

func TestHistoryDefaults(t *testing.T) {
	c := HistoryConfig{Backend: "jsonl"}
	c.SetDefaults()
	assert.Equal(t, "production_history.jsonl", c.Path)
	assert.NoError(t, c.Validate())
	assert.Error(t, HistoryConfig{Backend: "redis"}.Validate())
}
