// Package source defines the data inputs a brief is built from and their
// client implementations. Every source takes a context and returns typed
// values; callers decide what a failure degrades to.
package source

import (
	"context"
	"time"
)

// Weather is a current-conditions snapshot for the configured location. The
// yaml tags are the schema of the sources file read by File.
type Weather struct {
	TempC     float64         `yaml:"temp_c"`
	FeelsC    float64         `yaml:"feels_c"`
	HighC     float64         `yaml:"high_c"`
	LowC      float64         `yaml:"low_c"`
	Condition string          `yaml:"condition"` // localized description, e.g. "Leicht bewölkt"
	Tag       string          `yaml:"tag"`       // ASCII icon tag, e.g. "[SUN]"
	Humidity  int             `yaml:"humidity"`  // percent
	WindKMH   float64         `yaml:"wind_kmh"`
	Tomorrow  string          `yaml:"tomorrow"` // short forecast line, empty when unknown
	Forecast  []ForecastPoint `yaml:"forecast"`
}

// ForecastPoint is one row of the weather table: a clock time, a temperature
// and a sky description.
type ForecastPoint struct {
	Time  string  `yaml:"time"`
	TempC float64 `yaml:"temp_c"`
	Sky   string  `yaml:"sky"`
}

// Email is one unread inbox entry. Time is a display string because the brief
// only ever prints it, never computes with it.
type Email struct {
	Sender    string `yaml:"sender"`
	Subject   string `yaml:"subject"`
	Time      string `yaml:"time"`
	Important bool   `yaml:"important"`
}

// Event is one calendar entry.
type Event struct {
	Title    string    `yaml:"title"`
	Start    time.Time `yaml:"start"`
	End      time.Time `yaml:"end"`
	Location string    `yaml:"location"`
	AllDay   bool      `yaml:"all_day"`
}

// Task is one open task or shopping item. Due and Priority are optional
// display fields.
type Task struct {
	Title    string `yaml:"title"`
	Notes    string `yaml:"notes"`
	Due      string `yaml:"due"`      // YYYY-MM-DD, empty when undated
	Priority string `yaml:"priority"` // high, medium or low; empty means medium
}

// WeatherSource yields current conditions.
type WeatherSource interface {
	Current(ctx context.Context) (*Weather, error)
}

// EmailSource yields up to max unread emails, newest first.
type EmailSource interface {
	Unread(ctx context.Context, max int) ([]Email, error)
}

// CalendarSource yields today's events in start order.
type CalendarSource interface {
	Today(ctx context.Context) ([]Event, error)
}

// TaskSource yields up to max open tasks from the named list.
type TaskSource interface {
	Due(ctx context.Context, list string, max int) ([]Task, error)
}
