package model

import (
	"errors"
	"fmt"
	"strings"
)

// ConnectionType identifies how a location's product meters report.
type ConnectionType string

const (
	// Connection1 locations report hourly product rates.
	Connection1 ConnectionType = "connection_1"
	// Connection2 locations report per-minute product rates.
	Connection2 ConnectionType = "connection_2"
)

// ProductFlowFactor converts one minute sample of the product flow rate into
// a volume.
func (c ConnectionType) ProductFlowFactor() float64 {
	if c == Connection1 {
		return 1.0 / 60
	}
	return 1
}

// LocationType returns the fleet class used in the production summary.
func (c ConnectionType) LocationType() string {
	if c == Connection1 {
		return "B"
	}
	return "A"
}

// Designation groups locations in the production summary.
type Designation string

const (
	Upper Designation = "UPPER"
	Lower Designation = "LOWER"
)

// Chemical keys used in tank configuration.
const (
	ChemicalA = "chemical_a"
	ChemicalB = "chemical_b"
	ChemicalC = "chemical_c"
	ChemicalD = "chemical_d"
	ChemicalE = "chemical_e"
)

// ChemicalKeys lists the tank slots in export order.
var ChemicalKeys = []string{ChemicalA, ChemicalB, ChemicalC, ChemicalD, ChemicalE}

// ChemicalTank describes one chemical storage tank with a level sensor.
type ChemicalTank struct {
	Key       string `json:"key" yaml:"key"`
	Name      string `json:"name" yaml:"name"`
	VolumeTag string `json:"volume_tag" yaml:"volume_tag"`
}

// Location is one field site and the sensor tags that describe it.
type Location struct {
	Key               string         `json:"key" yaml:"key"`
	Name              string         `json:"name" yaml:"name"`
	ConnectionType    ConnectionType `json:"connection_type" yaml:"connection_type"`
	Designation       Designation    `json:"designation" yaml:"designation"`
	Trucked           bool           `json:"trucked" yaml:"trucked"`
	ExcludeChemical   bool           `json:"exclude_chemical" yaml:"exclude_chemical"`
	InletFlowrate     []string       `json:"inlet_flowrate" yaml:"inlet_flowrate"`
	DischargeFlowrate []string       `json:"discharge_flowrate" yaml:"discharge_flowrate"`
	FuelFlowrate      []string       `json:"fuel_flowrate" yaml:"fuel_flowrate"`
	ProductFlowrate   []string       `json:"product_flowrate" yaml:"product_flowrate"`
	ProductTankVolume []string       `json:"product_tank_volume" yaml:"product_tank_volume"`
	PipelinePressure  []string       `json:"pipeline_pressure" yaml:"pipeline_pressure"`
	InletNames        []string       `json:"inlet_names" yaml:"inlet_names"`
	Chemicals         []ChemicalTank `json:"chemicals" yaml:"chemicals"`
}

// DisplayName returns the human readable name, falling back to the key.
func (l Location) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Key
}

func (l Location) HasInlet() bool     { return len(l.InletFlowrate) > 0 }
func (l Location) HasDischarge() bool { return len(l.DischargeFlowrate) > 0 }
func (l Location) HasFuel() bool      { return len(l.FuelFlowrate) > 0 }
func (l Location) HasPressure() bool  { return len(l.PipelinePressure) > 0 }

// Chemical returns the tank configured under key.
func (l Location) Chemical(key string) (ChemicalTank, bool) {
	for _, c := range l.Chemicals {
		if c.Key == key {
			return c, c.VolumeTag != ""
		}
	}
	return ChemicalTank{}, false
}

// LevelAnalysis reports whether chemical tank levels are analysed for the
// location.
func (l Location) LevelAnalysis() bool {
	return !l.ExcludeChemical && l.ConnectionType != Connection1
}

// FlowTags returns the tags used as the volumetric reference of the
// location: inlet when metered, discharge otherwise.
func (l Location) FlowTags() []string {
	if l.HasInlet() {
		return l.InletFlowrate
	}
	return l.DischargeFlowrate
}

// Validate checks a single location definition.
func (l Location) Validate() error {
	if l.Key == "" {
		return errors.New("location key is required")
	}
	switch l.ConnectionType {
	case Connection1, Connection2:
	default:
		return fmt.Errorf("location %s: unknown connection type %q", l.Key, l.ConnectionType)
	}
	switch Designation(strings.ToUpper(string(l.Designation))) {
	case Upper, Lower:
	default:
		return fmt.Errorf("location %s: unknown designation %q", l.Key, l.Designation)
	}
	if !l.HasInlet() && !l.HasDischarge() {
		return fmt.Errorf("location %s: inlet or discharge flowrate is required", l.Key)
	}
	if len(l.PipelinePressure) != len(l.InletNames) {
		return fmt.Errorf("location %s: %d pressure tags for %d inlet names",
			l.Key, len(l.PipelinePressure), len(l.InletNames))
	}
	for _, c := range l.Chemicals {
		if c.Key == "" {
			return fmt.Errorf("location %s: chemical key is required", l.Key)
		}
	}
	return nil
}

// Locations is the ordered catalogue iterated by every report.
type Locations []Location

// Validate checks every location and key uniqueness.
func (ls Locations) Validate() error {
	seen := make(map[string]bool, len(ls))
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			return err
		}
		if seen[l.Key] {
			return fmt.Errorf("duplicate location %s", l.Key)
		}
		seen[l.Key] = true
	}
	return nil
}

// Normalize upper-cases designations so configuration may use any case.
func (ls Locations) Normalize() {
	for i := range ls {
		ls[i].Designation = Designation(strings.ToUpper(string(ls[i].Designation)))
	}
}

// Trucked returns the display names of trucked locations.
func (ls Locations) Trucked() []string {
	var out []string
	for _, l := range ls {
		if l.Trucked {
			out = append(out, l.DisplayName())
		}
	}
	return out
}
