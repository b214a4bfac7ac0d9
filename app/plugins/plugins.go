// Package plugins links the built-in data sources and metrics sinks into the
// binary and lists what is available to the configuration.
package plugins

import (
	coremetrics "github.com/kilianp07/opsreport/core/metrics"
	"github.com/kilianp07/opsreport/core/source"

	// registered through init
	_ "github.com/kilianp07/opsreport/infra/csvsource"
	_ "github.com/kilianp07/opsreport/infra/influx"
	_ "github.com/kilianp07/opsreport/infra/metrics"
)

// Sources returns the source types usable under source.type.
func Sources() []string { return source.Types() }

// Sinks returns the sink types usable under metrics.sinks[].type.
func Sinks() []string { return coremetrics.SinkTypes() }
