package source

import (
	"context"
	"fmt"
	"time"
)

// Static is an in-memory source with fixed values, plus error and delay
// injection for aggregator tests. The zero value fails every call; populate
// the fields you need or start from Demo.
type Static struct {
	Weather *Weather
	Emails  []Email
	Events  []Event
	Lists   map[string][]Task

	// Err, when set, is returned by every call after the delay.
	Err error
	// Delay postpones every answer, honoring context cancellation.
	Delay time.Duration
}

var (
	_ WeatherSource  = (*Static)(nil)
	_ EmailSource    = (*Static)(nil)
	_ CalendarSource = (*Static)(nil)
	_ TaskSource     = (*Static)(nil)
)

// Demo returns a Static filled with plausible German-language values, used by
// the demo pipeline when no real sources are configured.
func Demo() *Static {
	return &Static{
		Weather: &Weather{
			TempC: 18, FeelsC: 19, HighC: 22, LowC: 14,
			Condition: "Leicht bewölkt", Tag: "[CLOUD]",
			Humidity: 65, WindKMH: 12,
			Tomorrow: "Sonnig, 16-24 C",
			Forecast: []ForecastPoint{
				{Time: "09:00", TempC: 18, Sky: "klar"},
				{Time: "12:00", TempC: 21, Sky: "heiter"},
				{Time: "15:00", TempC: 22, Sky: "leicht bewölkt"},
			},
		},
		Emails: []Email{
			{Sender: "Stadtwerke", Subject: "Ihre Rechnung ist da", Time: "06:42"},
			{Sender: "Jonas", Subject: "Grillen am Samstag?", Time: "07:15", Important: true},
		},
		Events: []Event{
			{Title: "Standup", Start: todayAt(9, 30), End: todayAt(9, 45)},
			{Title: "Zahnarzt", Start: todayAt(14, 0), End: todayAt(14, 45), Location: "Praxis Dr. Weber"},
		},
		Lists: map[string][]Task{
			"Allgemeines": {
				{Title: "Steuererklärung abgeben", Due: "2026-08-31", Priority: "high"},
				{Title: "Paket zur Post bringen"},
			},
			"Einkaufsliste": {
				{Title: "Milch"}, {Title: "Brot"}, {Title: "Kaffee"},
			},
		},
	}
}

func todayAt(hour, min int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
}

func (s *Static) wait(ctx context.Context) error {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.Err
}

// Current implements WeatherSource.
func (s *Static) Current(ctx context.Context) (*Weather, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.Weather == nil {
		return nil, fmt.Errorf("source: static has no weather")
	}
	w := *s.Weather
	return &w, nil
}

// Unread implements EmailSource.
func (s *Static) Unread(ctx context.Context, max int) ([]Email, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return clamp(s.Emails, max), nil
}

// Today implements CalendarSource.
func (s *Static) Today(ctx context.Context) ([]Event, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.Events, nil
}

// Due implements TaskSource.
func (s *Static) Due(ctx context.Context, list string, max int) ([]Task, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	tasks, ok := s.Lists[list]
	if !ok {
		return nil, fmt.Errorf("source: static has no list %q", list)
	}
	return clamp(tasks, max), nil
}
