package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/opsreport/core/factory"
	"github.com/kilianp07/opsreport/core/inference"
	"github.com/kilianp07/opsreport/core/metrics"
	"github.com/kilianp07/opsreport/core/model"
	"github.com/kilianp07/opsreport/infra/logger"
	"github.com/kilianp07/opsreport/infra/mqtt"
)

// EnvPrefix prefixes environment overrides, e.g. OPSREPORT_MAIL__HOST.
const EnvPrefix = "OPSREPORT_"

type Config struct {
	Report        ReportConfig         `json:"report"`
	Source        factory.ModuleConfig `json:"source"`
	Locations     model.Locations      `json:"locations"`
	LocationsFile string               `json:"locations_file"`
	Inference     inference.Config     `json:"inference"`
	Mail          MailConfig           `json:"mail"`
	History       HistoryConfig        `json:"history"`
	TankExport    TankExportConfig     `json:"tank_export"`
	Metrics       metrics.Config       `json:"metrics"`
	Sentry        SentryConfig         `json:"sentry"`
	MQTT          mqtt.Config          `json:"mqtt"`
	Logging       logger.Options       `json:"logging"`
	// Debug routes every email to the debug recipients. DEBUG=true sets it.
	Debug bool `json:"debug"`
}

// LoadDotEnv loads the given .env files, or ./.env without arguments.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	prefix := strings.ToLower(EnvPrefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), prefix)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if cfg.LocationsFile != "" {
		p := cfg.LocationsFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		locs, err := LoadLocations(p)
		if err != nil {
			return nil, err
		}
		cfg.Locations = append(cfg.Locations, locs...)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Report.SetDefaults()
	c.Inference.SetDefaults()
	c.Mail.SetDefaults()
	c.History.SetDefaults()
	c.TankExport.SetDefaults()
	if c.Source.Type == "" {
		c.Source.Type = "influx"
	}
	if c.MQTT.Enabled {
		c.MQTT.SetDefaults()
	}
	c.Locations.Normalize()
}

// Validate checks every section.
func (c Config) Validate() error {
	if len(c.Locations) == 0 {
		return fmt.Errorf("no locations configured")
	}
	validators := []interface{ Validate() error }{
		c.Report, c.Inference, c.Mail, c.History, c.MQTT, c.Locations,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
