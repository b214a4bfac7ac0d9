package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validLocation(key string) Location {
	return Location{
		Key:            key,
		ConnectionType: Connection2,
		Designation:    Upper,
		InletFlowrate:  []string{key + ".inlet"},
	}
}

func TestLocationValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Location)
		wantErr bool
	}{
		{"valid", func(*Location) {}, false},
		{"missing key", func(l *Location) { l.Key = "" }, true},
		{"bad connection", func(l *Location) { l.ConnectionType = "serial" }, true},
		{"bad designation", func(l *Location) { l.Designation = "MIDDLE" }, true},
		{"lowercase designation", func(l *Location) { l.Designation = "lower" }, false},
		{"no flow", func(l *Location) { l.InletFlowrate = nil }, true},
		{"discharge only", func(l *Location) {
			l.InletFlowrate = nil
			l.DischargeFlowrate = []string{"d"}
		}, false},
		{"pressure mismatch", func(l *Location) { l.PipelinePressure = []string{"p1"} }, true},
		{"chemical without key", func(l *Location) { l.Chemicals = []ChemicalTank{{Name: "x"}} }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := validLocation("loc")
			c.mutate(&l)
			err := l.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocationsDuplicate(t *testing.T) {
	ls := Locations{validLocation("a"), validLocation("a")}
	assert.Error(t, ls.Validate())
}

func TestConnectionTypeFactors(t *testing.T) {
	assert.InDelta(t, 1.0/60, Connection1.ProductFlowFactor(), 1e-12)
	assert.Equal(t, 1.0, Connection2.ProductFlowFactor())
	assert.Equal(t, "B", Connection1.LocationType())
	assert.Equal(t, "A", Connection2.LocationType())
}

func TestLocationHelpers(t *testing.T) {
	l := validLocation("a")
	l.Chemicals = []ChemicalTank{{Key: ChemicalA, Name: "methanol", VolumeTag: "a.meoh"}, {Key: ChemicalB}}
	tank, ok := l.Chemical(ChemicalA)
	assert.True(t, ok)
	assert.Equal(t, "methanol", tank.Name)
	_, ok = l.Chemical(ChemicalB)
	assert.False(t, ok, "tank without tag is not usable")
	assert.True(t, l.LevelAnalysis())
	l.ConnectionType = Connection1
	assert.False(t, l.LevelAnalysis())
	assert.Equal(t, []string{"a.inlet"}, l.FlowTags())

	ls := Locations{l, {Key: "b", Name: "Bravo", Trucked: true}}
	assert.Equal(t, []string{"Bravo"}, ls.Trucked())
}
