package charts

import (
	"fmt"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/inference"
)

var (
	fwdBlue  = Hex("#82cafc")
	bkwdPink = Hex("#cf6275")
	measured = WithAlpha(Hex("#fcb001"), 0.45)
	usedRed  = Hex("#8b2e16")
	markBlue = Hex("#0000ff")
	markRed  = Hex("#ff0000")
)

// MeasuredAnalysisFigure shows the distance signals and the filtered tank
// level the chemical usage of a shift was inferred from.
func MeasuredAnalysisFigure(location, chemical string, r *inference.Result, used float64) (*Figure, error) {
	if r == nil || r.Frame == nil {
		return nil, fmt.Errorf("measured analysis %s: no result", location)
	}
	f := r.Frame.Slice(r.Start, r.End)
	if f.Empty() {
		return nil, fmt.Errorf("measured analysis %s: no samples in shift", location)
	}
	idx := f.Index()

	md := newPanel("Mahalanobis Distance", "sigma (σ)")
	timeAxis(md, r.Start, r.End)
	if _, err := addLine(md, timeXYs(idx, f.MustCol(inference.ForwardDistance)), fwdBlue, "fwd_pass"); err != nil {
		return nil, err
	}
	if _, err := addLine(md, timeXYs(idx, f.MustCol(inference.BackwardDistance)), bkwdPink, "bkwd_pass"); err != nil {
		return nil, err
	}

	vol := newPanel("Tank Level", "gal")
	timeAxis(vol, r.Start, r.End)
	if _, err := addLine(vol, timeXYs(idx, f.MustCol(inference.FilteredForward)), fwdBlue, "fwd_pass"); err != nil {
		return nil, err
	}
	if _, err := addLine(vol, timeXYs(idx, f.MustCol(inference.FilteredBackward)), bkwdPink, "bkwd_pass"); err != nil {
		return nil, err
	}
	if _, err := addLine(vol, timeXYs(idx, f.MustCol(calc.TankVolume)), measured, "measured"); err != nil {
		return nil, err
	}

	if used > 0 && len(r.Events) > 0 {
		var fwdPeaks, bkwdPeaks, fwdMins, bkwdMins, fwdLv, bkwdLv plotter.XYs
		var fwdTxt, bkwdTxt []string
		for _, ev := range r.Events {
			s, e := ev.Start, ev.End
			fwdPeaks = append(fwdPeaks, plotter.XY{X: unix(s.PeakTime), Y: s.Peak})
			bkwdPeaks = append(bkwdPeaks, plotter.XY{X: unix(e.PeakTime), Y: e.Peak})
			fwdMins = append(fwdMins, plotter.XY{X: unix(s.Time), Y: s.Distance})
			bkwdMins = append(bkwdMins, plotter.XY{X: unix(e.Time), Y: e.Distance})
			fwdLv = append(fwdLv, plotter.XY{X: unix(s.Time), Y: s.Level})
			bkwdLv = append(bkwdLv, plotter.XY{X: unix(e.Time), Y: e.Level})
			fwdTxt = append(fwdTxt, markerLabel(s))
			bkwdTxt = append(bkwdTxt, markerLabel(e))
		}
		dot, cross := vg.Points(2), vg.Points(4)
		if err := addMarkers(md, fwdPeaks, markBlue, draw.CircleGlyph{}, dot); err != nil {
			return nil, err
		}
		if err := addMarkers(md, bkwdPeaks, markRed, draw.CircleGlyph{}, dot); err != nil {
			return nil, err
		}
		if err := addMarkers(md, fwdMins, markBlue, draw.CrossGlyph{}, cross); err != nil {
			return nil, err
		}
		if err := addMarkers(md, bkwdMins, markRed, draw.CrossGlyph{}, cross); err != nil {
			return nil, err
		}
		if err := addMarkers(vol, fwdLv, markBlue, draw.CrossGlyph{}, cross); err != nil {
			return nil, err
		}
		if err := addMarkers(vol, bkwdLv, markRed, draw.CrossGlyph{}, cross); err != nil {
			return nil, err
		}
		fl, err := plotter.NewLabels(plotter.XYLabels{XYs: fwdLv, Labels: fwdTxt})
		if err != nil {
			return nil, err
		}
		bl, err := plotter.NewLabels(plotter.XYLabels{XYs: bkwdLv, Labels: bkwdTxt})
		if err != nil {
			return nil, err
		}
		for i := range bl.TextStyle {
			bl.TextStyle[i].XAlign = draw.XRight
			bl.TextStyle[i].YAlign = draw.YTop
		}
		vol.Add(fl, bl)
	}

	return &Figure{
		Name:  location + " " + chemical + " analysis",
		Title: fmt.Sprintf("%s %s Tank Volume Analysis", location, chemical),
		Panels: []Panel{
			{Plot: md},
			{Plot: vol, Notes: []Note{{
				Text: fmt.Sprintf("Volume Used: %.2f gal", used), X: 0.08, Y: 0.93,
				XAlign: draw.XLeft, YAlign: draw.YBottom, Size: vg.Points(11), Color: usedRed,
			}}},
		},
	}, nil
}

func markerLabel(m inference.Marker) string {
	return fmt.Sprintf("(%s, %.2f)", m.Time.Format("03:04 PM"), m.Level)
}
