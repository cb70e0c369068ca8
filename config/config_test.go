package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults: %v", err)
	}
	if cfg.Language != "de" {
		t.Errorf("Language = %q, want de", cfg.Language)
	}
	if cfg.PaperWidthMM != 58 {
		t.Errorf("PaperWidthMM = %d, want 58", cfg.PaperWidthMM)
	}
	if cfg.Printer.Type != "file" || cfg.Printer.Port != 9100 {
		t.Errorf("Printer = %+v, want file transport on port 9100", cfg.Printer)
	}
	if cfg.Outputs.PNG != "outputs/png/daily_brief.png" {
		t.Errorf("Outputs.PNG = %q", cfg.Outputs.PNG)
	}
	if cfg.SourceTimeout != 15*time.Second {
		t.Errorf("SourceTimeout = %s, want 15s", cfg.SourceTimeout)
	}
}

func TestLoadWithoutFileKeepsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TaskList != "Allgemeines" || cfg.ShoppingList != "Einkaufsliste" {
		t.Errorf("list names = %q/%q, want defaults", cfg.TaskList, cfg.ShoppingList)
	}
	if cfg.ServerAddr != ":8765" {
		t.Errorf("ServerAddr = %q, want :8765", cfg.ServerAddr)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yml", `
language: en
user_name: Maya
paper_width_mm: 80
printer:
  type: network
  host: 192.168.1.50
outputs:
  png: /tmp/brief.png
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "en" || cfg.UserName != "Maya" || cfg.PaperWidthMM != 80 {
		t.Errorf("got %q/%q/%d, want en/Maya/80", cfg.Language, cfg.UserName, cfg.PaperWidthMM)
	}
	if cfg.Printer.Type != "network" || cfg.Printer.Host != "192.168.1.50" {
		t.Errorf("Printer = %+v", cfg.Printer)
	}
	if cfg.Printer.Port != 9100 {
		t.Errorf("Printer.Port = %d, YAML must not clear defaults it does not name", cfg.Printer.Port)
	}
	if cfg.Outputs.PNG != "/tmp/brief.png" || cfg.Outputs.Text != "outputs/txt/daily_brief.txt" {
		t.Errorf("Outputs = %+v", cfg.Outputs)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "config.yml", `
user_name: Maya
paper_width_mm: 80
`)
	t.Setenv("USER_NAME", "Jonas")
	t.Setenv("PAPER_WIDTH_MM", "58")
	t.Setenv("SOURCE_TIMEOUT", "30s")
	t.Setenv("PRINTER_PORT", "9101")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserName != "Jonas" {
		t.Errorf("UserName = %q, want env value Jonas", cfg.UserName)
	}
	if cfg.PaperWidthMM != 58 {
		t.Errorf("PaperWidthMM = %d, want env value 58", cfg.PaperWidthMM)
	}
	if cfg.SourceTimeout != 30*time.Second {
		t.Errorf("SourceTimeout = %s, want 30s", cfg.SourceTimeout)
	}
	if cfg.Printer.Port != 9101 {
		t.Errorf("Printer.Port = %d, env must reach nested sections", cfg.Printer.Port)
	}
}

func TestLoadEnvFile(t *testing.T) {
	envPath := writeFile(t, "custom.env", "AI_MODEL=claude-3-haiku-20240307\nWEATHER_LOCATION=Berlin,DE\n")
	t.Setenv("ENV_FILE", envPath)
	t.Cleanup(func() {
		os.Unsetenv("AI_MODEL")
		os.Unsetenv("WEATHER_LOCATION")
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AIModel != "claude-3-haiku-20240307" {
		t.Errorf("AIModel = %q, want value from ENV_FILE", cfg.AIModel)
	}
	if cfg.WeatherLocation != "Berlin,DE" {
		t.Errorf("WeatherLocation = %q, want Berlin,DE", cfg.WeatherLocation)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("Load with a missing explicit file must fail")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, "config.yml", "language: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load must reject malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad language", func(c *Config) { c.Language = "!!nope!!" }, "unknown language"},
		{"bad paper width", func(c *Config) { c.PaperWidthMM = 70 }, "paper width"},
		{"serial printer", func(c *Config) { c.Printer.Type = "serial" }, "not supported"},
		{"usb printer", func(c *Config) { c.Printer.Type = "usb" }, "not supported"},
		{"unknown printer", func(c *Config) { c.Printer.Type = "laser" }, "unknown printer type"},
		{"network without host", func(c *Config) { c.Printer.Type = "network"; c.Printer.Host = "" }, "PRINTER_HOST"},
		{"zero tokens", func(c *Config) { c.MaxOutputTokens = 0 }, "output tokens"},
		{"zero timeout", func(c *Config) { c.SourceTimeout = 0 }, "timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateAcceptsLanguageNamesAndTags(t *testing.T) {
	for _, lang := range []string{"de", "en", "de-AT", "german", "english", "English"} {
		cfg := Default()
		cfg.Language = lang
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with language %q: %v", lang, err)
		}
	}
}

func TestLocationFallsBack(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "Neverland/Nowhere"
	if loc := cfg.Location(); loc == nil {
		t.Fatal("Location() = nil, want fallback zone")
	}
	cfg.Timezone = "Europe/Berlin"
	if loc := cfg.Location(); loc.String() != "Europe/Berlin" && loc != time.Local {
		t.Errorf("Location() = %v", loc)
	}
}
