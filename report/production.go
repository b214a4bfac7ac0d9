package report

import (
	"context"
	"time"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/model"
	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/core/timeseries"
	"github.com/kilianp07/opsreport/infra/charts"
)

// ProductionFigures are the per location figures of the production report.
type ProductionFigures struct {
	Product []*charts.Figure
	Inlet   []*charts.Figure
}

// LocationProduction builds the product figure of every type A location and
// the inlet figure of every location for day.
func (r *Runner) LocationProduction(ctx context.Context, day time.Time) ProductionFigures {
	day = r.day(day)
	return r.locationProduction(ctx, r.newRun(ReportProduction, day), day)
}

func (r *Runner) locationProduction(ctx context.Context, ru *run, day time.Time) ProductionFigures {
	var out ProductionFigures
	start, end := day, day.AddDate(0, 0, 1)
	for _, l := range r.deps.Locations {
		if l.ConnectionType != model.Connection1 {
			r.guard(ru, "product_figure", l, func() error {
				fig, err := r.productFigure(ctx, ru, l, start, end)
				if err != nil {
					return err
				}
				out.Product = append(out.Product, fig)
				return nil
			})
		}
		r.guard(ru, "inlet_figure", l, func() error {
			fig, err := r.inletFigure(ctx, l, start, end)
			if err != nil {
				return err
			}
			out.Inlet = append(out.Inlet, fig)
			return nil
		})
	}
	return out
}

func (r *Runner) productFigure(ctx context.Context, ru *run, l model.Location, start, end time.Time) (*charts.Figure, error) {
	cols := []source.Column{
		{Name: calc.InletFlowrate, Tags: l.InletFlowrate},
		{Name: calc.ProductTankVolume, Tags: l.ProductTankVolume},
	}
	if !l.Trucked {
		cols = append(cols, source.Column{Name: calc.ProductFlowrate, Tags: l.ProductFlowrate})
	}
	f, err := r.loader.Load(ctx, source.Request{Start: start, End: end, Columns: cols})
	if err != nil {
		return nil, err
	}
	derived := []column{
		{calc.CumulativePumped, calc.CumulativeFlows(f.MustCol(calc.ProductFlowrate), l.ConnectionType.ProductFlowFactor())},
		{calc.CumulativeTank, calc.CumulativeTankVolumes(f.MustCol(calc.ProductTankVolume), 1)},
	}
	if l.HasInlet() {
		derived = append(derived, column{calc.CumulativeInlet, calc.CumulativeFlows(f.MustCol(calc.InletFlowrate), 1/calc.MinutesPerDay)})
	}
	if err := setAll(f, derived...); err != nil {
		return nil, err
	}
	perM, cum := calc.ProductCalculations(f)
	if err := f.Set(calc.CumulativeProduct, cum); err != nil {
		return nil, err
	}
	if perM != nil {
		if err := f.Set(calc.ProductPerThousand, perM); err != nil {
			return nil, err
		}
	}
	inletAvg, productAvg, productVol := calc.ProductSummaryStats(f)
	r.recordLocation(ru, l, map[string]float64{
		"inlet_avg_scfd":  inletAvg,
		"product_avg_gpm": productAvg,
		"product_gal":     productVol,
	})
	return charts.ProductFigure(l.DisplayName(), f, inletAvg, productAvg, productVol)
}

func (r *Runner) inletFigure(ctx context.Context, l model.Location, start, end time.Time) (*charts.Figure, error) {
	var cols []source.Column
	if l.HasInlet() {
		cols = append(cols, source.Column{Name: calc.InletFlowrate, Tags: l.InletFlowrate})
	}
	if l.HasFuel() {
		cols = append(cols, source.Column{Name: calc.FuelFlowrate, Tags: l.FuelFlowrate})
	}
	if l.HasDischarge() {
		cols = append(cols, source.Column{Name: calc.DischargeFlowrate, Tags: l.DischargeFlowrate})
	}
	flow, err := r.loader.Load(ctx, source.Request{Start: start, End: end, Columns: cols})
	if err != nil {
		return nil, err
	}
	var pressure *timeseries.Frame
	var pressureAvg []float64
	if l.HasPressure() {
		pressure, err = r.loader.Load(ctx, source.Request{Start: start, End: end, Columns: []source.Column{
			{Name: "pipeline_pressure", Tags: l.PipelinePressure, Names: l.InletNames},
		}})
		if err != nil {
			return nil, err
		}
		pressureAvg = calc.PressureSummaryStats(pressure)
	}
	inletAvg, fuelAvg, dischargeAvg := calc.FlowSummaryStats(flow)
	return charts.InletFigure(l.DisplayName(), flow, pressure, charts.InletStats{
		Inlet:     inletAvg,
		Fuel:      fuelAvg,
		Discharge: dischargeAvg,
		Pressure:  pressureAvg,
	})
}
