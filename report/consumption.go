package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/inference"
	"github.com/kilianp07/opsreport/core/model"
	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/core/timeseries"
	"github.com/kilianp07/opsreport/infra/charts"
)

// ConsumptionFigures are the figures of the consumption report.
type ConsumptionFigures struct {
	// Consumable holds the chemical and fuel usage bar charts.
	Consumable []*charts.Figure
	// Measured holds one tank level analysis per eligible location.
	Measured []*charts.Figure
}

// ShiftUsage is the per MSCF usage of one location over both shifts.
type ShiftUsage struct {
	Location  string
	Chemical1 float64
	Chemical2 float64
	Fuel1     float64
	Fuel2     float64
}

// consumptionWindow is the data loaded for the shifts starting on day: one
// hour of context before the first shift and after the last one.
func (r *Runner) consumptionWindow(day time.Time) (start, end time.Time, s1, s2 calc.Shift) {
	s1, s2 = calc.DayShifts(day, r.deps.Report.ShiftStartHour, r.deps.Report.ShiftHours)
	return s1.Start.Add(-time.Hour), s2.End.Add(time.Hour), s1, s2
}

// LocationConsumption infers the chemical A usage from tank levels and the
// fuel gas usage from flow meters for the two shifts starting on day.
func (r *Runner) LocationConsumption(ctx context.Context, day time.Time) (ConsumptionFigures, []ShiftUsage, error) {
	day = r.day(day)
	return r.locationConsumption(ctx, r.newRun(ReportConsumption, day), day)
}

func (r *Runner) locationConsumption(ctx context.Context, ru *run, day time.Time) (ConsumptionFigures, []ShiftUsage, error) {
	var out ConsumptionFigures
	start, end, s1, s2 := r.consumptionWindow(day)
	usage := make([]ShiftUsage, 0, len(r.deps.Locations))
	computed := 0
	for _, l := range r.deps.Locations {
		u := ShiftUsage{Location: l.DisplayName()}
		if tank, ok := l.Chemical(model.ChemicalA); ok && l.LevelAnalysis() {
			ok = r.guard(ru, "chemical_usage", l, func() error {
				fig, err := r.levelBased(ctx, l, tank, start, end, s1, s2, &u)
				if err != nil {
					return err
				}
				if fig != nil {
					out.Measured = append(out.Measured, fig)
				}
				return nil
			})
			if ok {
				computed++
			}
		}
		if r.guard(ru, "fuel_usage", l, func() error {
			return r.flowBased(ctx, l, start, end, s1, s2, &u)
		}) {
			computed++
		}
		usage = append(usage, u)
		r.recordLocation(ru, l, map[string]float64{
			"chemical_a_shift_1": u.Chemical1,
			"chemical_a_shift_2": u.Chemical2,
			"fuel_shift_1":       u.Fuel1,
			"fuel_shift_2":       u.Fuel2,
		})
	}
	if computed == 0 {
		return out, usage, errors.New("no location consumption could be computed")
	}

	names := make([]string, len(usage))
	c1, c2 := make([]float64, len(usage)), make([]float64, len(usage))
	f1, f2 := make([]float64, len(usage)), make([]float64, len(usage))
	for i, u := range usage {
		names[i] = u.Location
		c1[i], c2[i], f1[i], f2[i] = u.Chemical1, u.Chemical2, u.Fuel1, u.Fuel2
	}
	calc.ZeroInvalid(c1)
	calc.ZeroInvalid(c2)
	calc.ZeroInvalid(f1)
	calc.ZeroInvalid(f2)

	var errs []error
	chem, err := charts.ConsumptionFigure(charts.KindChemicalA, names, c1, c2, r.deps.Report.ChemicalGoal)
	if err != nil {
		errs = append(errs, err)
	} else {
		out.Consumable = append(out.Consumable, chem)
	}
	fuel, err := charts.ConsumptionFigure(charts.KindFuel, names, f1, f2, r.deps.Report.FuelGoal)
	if err != nil {
		errs = append(errs, err)
	} else {
		out.Consumable = append(out.Consumable, fuel)
	}
	return out, usage, errors.Join(errs...)
}

// levelBased fills the chemical usage of u and returns the tank analysis
// over both shifts.
func (r *Runner) levelBased(ctx context.Context, l model.Location, tank model.ChemicalTank, start, end time.Time, s1, s2 calc.Shift, u *ShiftUsage) (*charts.Figure, error) {
	f, err := r.loader.Load(ctx, source.Request{Start: start, End: end, Columns: []source.Column{
		{Name: calc.InletFlowrate, Tags: l.InletFlowrate},
		{Name: calc.TankVolume, Tags: []string{tank.VolumeTag}},
	}})
	if err != nil {
		return nil, err
	}
	// each shift sees one hour of context on either side
	u.Chemical1 = r.shiftChemical(f.Slice(start, s1.End.Add(time.Hour)), s1)
	u.Chemical2 = r.shiftChemical(f.Slice(s1.End.Add(-time.Hour), end), s2)

	res, err := inference.Infer(f, s1.Start, s2.End, r.deps.Inference)
	if err != nil {
		if errors.Is(err, inference.ErrNoLevel) {
			r.log.Warnf("%s %s: %v", l.Key, tank.Key, err)
			return nil, nil
		}
		return nil, err
	}
	used := inference.ChemicalUsage(res)
	return charts.MeasuredAnalysisFigure(l.DisplayName(), chemicalName(tank), res, used)
}

func (r *Runner) shiftChemical(f *timeseries.Frame, s calc.Shift) float64 {
	if f.Empty() {
		return 0
	}
	res, err := inference.Infer(f, s.Start, s.End, r.deps.Inference)
	if err != nil {
		return 0
	}
	return calc.LevelPerInlet(inference.ChemicalUsage(res), res.Inlet)
}

// flowBased fills the fuel gas usage of u from the cumulative fuel and inlet
// volumes at the shift boundaries.
func (r *Runner) flowBased(ctx context.Context, l model.Location, start, end time.Time, s1, s2 calc.Shift, u *ShiftUsage) error {
	f, err := r.loader.Load(ctx, source.Request{Start: start, End: end, Columns: []source.Column{
		{Name: calc.InletFlowrate, Tags: l.InletFlowrate},
		{Name: calc.FuelFlowrate, Tags: l.FuelFlowrate},
	}})
	if err != nil {
		return err
	}
	err = setAll(f,
		column{calc.CumulativeInlet, calc.CumulativeFlows(f.MustCol(calc.InletFlowrate), 1/calc.MinutesPerDay)},
		column{calc.CumulativeFuel, calc.CumulativeFlows(f.MustCol(calc.FuelFlowrate), 1/calc.MinutesPerDay)},
	)
	if err != nil {
		return err
	}
	u.Fuel1 = calc.FlowPerInlet(f, calc.CumulativeFuel, s1)
	u.Fuel2 = calc.FlowPerInlet(f, calc.CumulativeFuel, s2)
	return nil
}

func chemicalName(t model.ChemicalTank) string {
	if t.Name != "" {
		return t.Name
	}
	return strings.ReplaceAll(strings.ToUpper(t.Key), "_", " ")
}
