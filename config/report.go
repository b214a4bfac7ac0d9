package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/opsreport/core/scheduler"
)

// ReportConfig defines when reports run and how shifts are cut.
type ReportConfig struct {
	// Timezone is the IANA zone the field operates in.
	Timezone       string  `json:"timezone"`
	RunAt          string  `json:"run_at"`
	ShiftStartHour int     `json:"shift_start_hour"`
	ShiftHours     int     `json:"shift_hours"`
	ChemicalGoal   float64 `json:"chemical_goal"`
	FuelGoal       float64 `json:"fuel_goal"`
	WeeklyDays     int     `json:"weekly_days"`
	// ScheduleTankExport adds the tank export to the daily scheduler.
	ScheduleTankExport bool `json:"schedule_tank_export"`
}

// SetDefaults applies sane defaults.
func (c *ReportConfig) SetDefaults() {
	if c.Timezone == "" {
		c.Timezone = "America/Chicago"
	}
	if c.RunAt == "" {
		c.RunAt = "06:00"
	}
	if c.ShiftStartHour == 0 {
		c.ShiftStartHour = 7
	}
	if c.ShiftHours == 0 {
		c.ShiftHours = 12
	}
	if c.ChemicalGoal == 0 {
		c.ChemicalGoal = 4.0 / 35
	}
	if c.FuelGoal == 0 {
		c.FuelGoal = 35
	}
	if c.WeeklyDays == 0 {
		c.WeeklyDays = 7
	}
}

// Validate checks the report settings.
func (c ReportConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("report timezone: %w", err)
	}
	if _, _, err := scheduler.ParseClock(c.RunAt); err != nil {
		return err
	}
	if c.ShiftStartHour < 0 || c.ShiftStartHour > 23 {
		return fmt.Errorf("shift_start_hour must be within 0-23")
	}
	if c.ShiftHours <= 0 || c.ShiftHours > 12 {
		return fmt.Errorf("shift_hours must be within 1-12")
	}
	return nil
}

// Location returns the configured time zone.
func (c ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TankExportConfig defines where the tank volume CSV files are written.
type TankExportConfig struct {
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *TankExportConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "tank_volume"
	}
}
