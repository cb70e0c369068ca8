package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	openWeatherBaseURL = "https://api.openweathermap.org"
	forecastPoints     = 4 // table rows: now, +3h, +6h, +9h
)

// iconTags maps OpenWeather icon codes to the ASCII tags a thermal head can
// print. Unknown codes fall back to [WEATHER].
var iconTags = map[string]string{
	"01d": "[SUN]", "01n": "[MOON]",
	"02d": "[SUN_CLOUD]", "02n": "[CLOUD]",
	"03d": "[CLOUD]", "03n": "[CLOUD]",
	"04d": "[CLOUD]", "04n": "[CLOUD]",
	"09d": "[RAIN]", "09n": "[RAIN]",
	"10d": "[RAIN]", "10n": "[RAIN]",
	"11d": "[STORM]", "11n": "[STORM]",
	"13d": "[SNOW]", "13n": "[SNOW]",
	"50d": "[FOG]", "50n": "[FOG]",
}

// OpenWeather fetches current conditions from the OpenWeatherMap One Call API.
// The configured location ("City,CC") is resolved to coordinates through the
// geocoding endpoint on every call; the API answers fast enough that caching
// is not worth the staleness.
type OpenWeather struct {
	apiKey   string
	location string
	baseURL  string
	client   *http.Client
}

var _ WeatherSource = (*OpenWeather)(nil)

// NewOpenWeather creates a client for the given API key and "City,CC" location.
func NewOpenWeather(apiKey, location string) *OpenWeather {
	return &OpenWeather{
		apiKey:   apiKey,
		location: location,
		baseURL:  openWeatherBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeEntry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type oneCallResponse struct {
	TimezoneOffset int `json:"timezone_offset"`
	Current        struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		WindSpeed float64 `json:"wind_speed"`
		Weather   []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"current"`
	Hourly []struct {
		Dt      int64   `json:"dt"`
		Temp    float64 `json:"temp"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"hourly"`
	Daily []struct {
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"daily"`
}

// Current implements WeatherSource.
func (w *OpenWeather) Current(ctx context.Context) (*Weather, error) {
	if w.apiKey == "" {
		return nil, fmt.Errorf("openweather: no api key configured")
	}

	lat, lon, err := w.geocode(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%g", lat))
	q.Set("lon", fmt.Sprintf("%g", lon))
	q.Set("appid", w.apiKey)
	q.Set("units", "metric")
	q.Set("exclude", "minutely,alerts")

	var data oneCallResponse
	if err := w.getJSON(ctx, "/data/3.0/onecall", q, &data); err != nil {
		return nil, err
	}
	if len(data.Current.Weather) == 0 {
		return nil, fmt.Errorf("openweather: response carries no conditions")
	}

	title := cases.Title(language.Und)
	wx := &Weather{
		TempC:     data.Current.Temp,
		FeelsC:    data.Current.FeelsLike,
		Condition: title.String(data.Current.Weather[0].Description),
		Tag:       iconTag(data.Current.Weather[0].Icon),
		Humidity:  data.Current.Humidity,
		WindKMH:   data.Current.WindSpeed * 3.6, // API reports m/s
	}
	if len(data.Daily) > 0 {
		wx.HighC = data.Daily[0].Temp.Max
		wx.LowC = data.Daily[0].Temp.Min
	}
	if len(data.Daily) > 1 && len(data.Daily[1].Weather) > 0 {
		d := data.Daily[1]
		wx.Tomorrow = fmt.Sprintf("%s, %.0f-%.0f C",
			title.String(d.Weather[0].Description), d.Temp.Min, d.Temp.Max)
	}

	// One table row per three hours, starting now.
	loc := time.FixedZone("local", data.TimezoneOffset)
	for i := 0; i < len(data.Hourly) && len(wx.Forecast) < forecastPoints; i += 3 {
		h := data.Hourly[i]
		sky := ""
		if len(h.Weather) > 0 {
			sky = h.Weather[0].Description
		}
		wx.Forecast = append(wx.Forecast, ForecastPoint{
			Time:  time.Unix(h.Dt, 0).In(loc).Format("15:04"),
			TempC: h.Temp,
			Sky:   sky,
		})
	}
	return wx, nil
}

func (w *OpenWeather) geocode(ctx context.Context) (lat, lon float64, err error) {
	q := url.Values{}
	q.Set("q", w.location)
	q.Set("limit", "1")
	q.Set("appid", w.apiKey)

	var entries []geocodeEntry
	if err := w.getJSON(ctx, "/geo/1.0/direct", q, &entries); err != nil {
		return 0, 0, err
	}
	if len(entries) == 0 {
		return 0, 0, fmt.Errorf("openweather: location %q not found", w.location)
	}
	return entries[0].Lat, entries[0].Lon, nil
}

func (w *OpenWeather) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("openweather: build request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("openweather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openweather: %s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openweather: decode %s: %w", path, err)
	}
	return nil
}

func iconTag(code string) string {
	if tag, ok := iconTags[code]; ok {
		return tag
	}
	return "[WEATHER]"
}
