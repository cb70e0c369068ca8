package source

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// File serves brief data from a local YAML file. It implements all four
// source interfaces and is the offline stand-in for wired-up accounts: the
// file is today's fixture, so Today returns its events as-is instead of
// filtering by date.
type File struct {
	weather *Weather
	emails  []Email
	events  []Event
	lists   map[string][]Task
}

var (
	_ WeatherSource  = (*File)(nil)
	_ EmailSource    = (*File)(nil)
	_ CalendarSource = (*File)(nil)
	_ TaskSource     = (*File)(nil)
)

type fileData struct {
	Weather *Weather          `yaml:"weather"`
	Emails  []Email           `yaml:"emails"`
	Events  []Event           `yaml:"events"`
	Lists   map[string][]Task `yaml:"lists"`
}

// NewFile reads and validates the sources file once, up front.
func NewFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	var data fileData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("source: parse %s: %w", path, err)
	}

	events := data.Events
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	return &File{
		weather: data.Weather,
		emails:  data.Emails,
		events:  events,
		lists:   data.Lists,
	}, nil
}

// Current implements WeatherSource.
func (f *File) Current(context.Context) (*Weather, error) {
	if f.weather == nil {
		return nil, fmt.Errorf("source: file has no weather block")
	}
	w := *f.weather
	return &w, nil
}

// Unread implements EmailSource.
func (f *File) Unread(_ context.Context, max int) ([]Email, error) {
	return clamp(f.emails, max), nil
}

// Today implements CalendarSource.
func (f *File) Today(context.Context) ([]Event, error) {
	return f.events, nil
}

// Due implements TaskSource.
func (f *File) Due(_ context.Context, list string, max int) ([]Task, error) {
	tasks, ok := f.lists[list]
	if !ok {
		return nil, fmt.Errorf("source: file has no list %q", list)
	}
	return clamp(tasks, max), nil
}

func clamp[T any](s []T, max int) []T {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
