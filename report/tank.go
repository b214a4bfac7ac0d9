package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/inference"
	"github.com/kilianp07/opsreport/core/model"
	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/pkg/export"
)

// TankVolume writes the level series and inferred usage of every chemical
// tank of the eligible locations over the day starting at the shift start
// hour of day. It returns the files written. Tanks without a level tag are
// skipped.
func (r *Runner) TankVolume(ctx context.Context, day time.Time, dir, format string) ([]string, error) {
	day = r.day(day)
	ru := r.newRun(ReportTank, day)
	if format == "" {
		format = "csv"
	}
	write := export.WriteCSV
	switch format {
	case "csv":
	case "json":
		write = export.WriteJSON
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	start := r.at(day, r.deps.Report.ShiftStartHour)
	end := start.Add(24 * time.Hour)
	var files []string
	for _, l := range r.deps.Locations {
		if !l.LevelAnalysis() {
			continue
		}
		for _, key := range model.ChemicalKeys {
			tank, ok := l.Chemical(key)
			if !ok {
				continue
			}
			r.guard(ru, "tank_export", l, func() error {
				t, err := r.tankSeries(ctx, l, tank, start, end)
				if errors.Is(err, inference.ErrNoLevel) {
					r.log.Warnf("%s %s: %v", l.Key, tank.Key, err)
					return nil
				}
				if err != nil {
					return fmt.Errorf("%s: %w", tank.Key, err)
				}
				path := filepath.Join(dir, export.FileName(l.Key, chemicalKeyName(tank), format))
				if err := writeFile(path, func(f *os.File) error { return write(f, t) }); err != nil {
					return err
				}
				files = append(files, path)
				return nil
			})
		}
	}
	r.finish(ctx, ru, len(files), false, "")
	if len(files) == 0 && len(ru.Failures()) > 0 {
		return nil, fmt.Errorf("tank export failed for %s", strings.Join(ru.Failures(), ", "))
	}
	return files, nil
}

func (r *Runner) tankSeries(ctx context.Context, l model.Location, tank model.ChemicalTank, start, end time.Time) (export.Tank, error) {
	f, err := r.loader.Load(ctx, source.Request{Start: start, End: end, Columns: []source.Column{
		{Name: calc.InletFlowrate, Tags: l.InletFlowrate},
		{Name: calc.TankVolume, Tags: []string{tank.VolumeTag}},
	}})
	if err != nil {
		return export.Tank{}, err
	}
	res, err := inference.Infer(f, start, end, r.deps.Inference)
	if err != nil {
		return export.Tank{}, err
	}
	return export.Tank{
		Location:  l.Key,
		Tank:      strings.ToUpper(chemicalKeyName(tank)),
		Frame:     f,
		VolUsed:   inference.ChemicalUsage(res),
		PeakFlags: inference.PeakFlags(res),
	}, nil
}

func chemicalKeyName(t model.ChemicalTank) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Key
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
