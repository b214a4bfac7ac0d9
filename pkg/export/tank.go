// Package export writes per tank level series for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/timeseries"
)

// TimeLayout formats the datetime column.
const TimeLayout = "2006-01-02 15:04:05"

// Header lists the CSV columns in order.
var Header = []string{"datetime", "inlet_flowrate", "tank_volume", "vol_used", "location", "tank", "peak_locs"}

// Tank is one tank series of a location together with its inferred usage.
type Tank struct {
	Location string
	Tank     string
	Frame    *timeseries.Frame
	VolUsed  float64
	// PeakFlags holds 1 on event boundary rows. It may be nil.
	PeakFlags []float64
}

// Row is one exported sample.
type Row struct {
	Datetime      time.Time `json:"datetime"`
	InletFlowrate *float64  `json:"inlet_flowrate"`
	TankVolume    *float64  `json:"tank_volume"`
	VolUsed       float64   `json:"vol_used"`
	Location      string    `json:"location"`
	Tank          string    `json:"tank"`
	PeakLocs      int       `json:"peak_locs"`
}

// Rows flattens t. Missing samples become nil.
func Rows(t Tank) ([]Row, error) {
	if t.Frame == nil {
		return nil, fmt.Errorf("tank %s/%s: no data", t.Location, t.Tank)
	}
	if t.PeakFlags != nil && len(t.PeakFlags) != t.Frame.Len() {
		return nil, fmt.Errorf("tank %s/%s: %d flags for %d rows", t.Location, t.Tank, len(t.PeakFlags), t.Frame.Len())
	}
	inlet := t.Frame.MustCol(calc.InletFlowrate)
	level := t.Frame.MustCol(calc.TankVolume)
	rows := make([]Row, t.Frame.Len())
	for i, ts := range t.Frame.Index() {
		rows[i] = Row{
			Datetime:      ts,
			InletFlowrate: ptr(inlet[i]),
			TankVolume:    ptr(level[i]),
			VolUsed:       t.VolUsed,
			Location:      t.Location,
			Tank:          t.Tank,
		}
		if t.PeakFlags != nil && t.PeakFlags[i] != 0 {
			rows[i].PeakLocs = 1
		}
	}
	return rows, nil
}

// WriteCSV writes t to w with the Header columns.
func WriteCSV(w io.Writer, t Tank) error {
	rows, err := Rows(t)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Datetime.Format(TimeLayout),
			formatPtr(r.InletFlowrate),
			formatPtr(r.TankVolume),
			strconv.FormatFloat(r.VolUsed, 'f', -1, 64),
			r.Location,
			r.Tank,
			strconv.Itoa(r.PeakLocs),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows of t as a JSON array.
func WriteJSON(w io.Writer, t Tank) error {
	rows, err := Rows(t)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(rows)
}

// FileName is the export file of a location tank.
func FileName(location, tank, ext string) string {
	return location + "_" + tank + "." + ext
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
