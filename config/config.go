// Package config loads the runtime configuration for the daily brief.
//
// Settings merge in priority order: built-in defaults, then an optional
// YAML file, then .env files, then process environment variables. The
// environment names mirror the deployment scripts (RECEIPT_LANGUAGE,
// PAPER_WIDTH_MM, PRINTER_TYPE, ...), so a bare .env file is enough to
// run without any YAML at all.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Printer selects the transport the rendered command stream is sent to.
// Type is "file" (plain file or a character device such as /dev/usb/lp0)
// or "network" (raw TCP, conventionally port 9100).
type Printer struct {
	Type string `yaml:"type" env:"PRINTER_TYPE"`
	Host string `yaml:"host" env:"PRINTER_HOST"`
	Port int    `yaml:"port" env:"PRINTER_PORT"`
	File string `yaml:"file" env:"PRINTER_FILE"`
}

// Outputs names the files each render backend writes on a brief run.
type Outputs struct {
	PNG    string `yaml:"png" env:"OUTPUT_PNG_FILE"`
	Text   string `yaml:"txt" env:"OUTPUT_TXT_FILE"`
	ESCPOS string `yaml:"escpos" env:"OUTPUT_ESCPOS_FILE"`
}

// Config carries every tunable of the daily brief pipeline.
type Config struct {
	Language string `yaml:"language" env:"RECEIPT_LANGUAGE"`
	UserName string `yaml:"user_name" env:"USER_NAME"`
	Timezone string `yaml:"timezone" env:"USER_TIMEZONE"`

	AnthropicAPIKey string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	AIModel         string `yaml:"ai_model" env:"AI_MODEL"`
	MaxOutputTokens int    `yaml:"max_output_tokens" env:"MAX_OUTPUT_TOKENS"`

	OpenWeatherAPIKey string `yaml:"openweather_api_key" env:"OPENWEATHER_API_KEY"`
	WeatherLocation   string `yaml:"weather_location" env:"WEATHER_LOCATION"`

	MaxEmails     int           `yaml:"max_emails" env:"MAX_EMAILS_TO_PROCESS"`
	MaxTasks      int           `yaml:"max_tasks" env:"MAX_TASKS_TO_PROCESS"`
	TaskList      string        `yaml:"task_list" env:"GENERAL_TASKS_LIST_NAME"`
	ShoppingList  string        `yaml:"shopping_list" env:"SHOPPING_LIST_NAME"`
	SourcesFile   string        `yaml:"sources_file" env:"SOURCES_FILE"`
	SourceTimeout time.Duration `yaml:"source_timeout" env:"SOURCE_TIMEOUT"`

	PaperWidthMM int `yaml:"paper_width_mm" env:"PAPER_WIDTH_MM"`

	Printer Printer `yaml:"printer"`
	Outputs Outputs `yaml:"outputs"`

	ServerAddr string `yaml:"server_addr" env:"SERVER_ADDR"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Default returns the built-in configuration: German brief for 58mm paper,
// file printer, outputs under outputs/.
func Default() *Config {
	return &Config{
		Language:        "de",
		UserName:        "Luka",
		Timezone:        "Europe/Berlin",
		AIModel:         "claude-sonnet-4-20250514",
		MaxOutputTokens: 800,
		WeatherLocation: "Karlsruhe,DE",
		MaxEmails:       10,
		MaxTasks:        15,
		TaskList:        "Allgemeines",
		ShoppingList:    "Einkaufsliste",
		SourceTimeout:   15 * time.Second,
		PaperWidthMM:    58,
		Printer: Printer{
			Type: "file",
			Port: 9100,
			File: "outputs/escpos/test_print.txt",
		},
		Outputs: Outputs{
			PNG:    "outputs/png/daily_brief.png",
			Text:   "outputs/txt/daily_brief.txt",
			ESCPOS: "outputs/escpos/daily_brief.txt",
		},
		ServerAddr: ":8765",
		LogLevel:   "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty), .env files and the process environment, in that order.
// Later layers win. The result is not validated; call Validate before use.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	applyEnvOverrides(reflect.ValueOf(cfg).Elem())
	return cfg, nil
}

// Validate reports the first setting the pipeline cannot run with.
func (c *Config) Validate() error {
	if !validLanguage(c.Language) {
		return fmt.Errorf("config: unknown language %q", c.Language)
	}
	if c.PaperWidthMM != 58 && c.PaperWidthMM != 80 {
		return fmt.Errorf("config: unsupported paper width %dmm, want 58 or 80", c.PaperWidthMM)
	}
	switch c.Printer.Type {
	case "file":
	case "network":
		if c.Printer.Host == "" {
			return fmt.Errorf("config: network printer needs PRINTER_HOST")
		}
	case "serial", "usb":
		return fmt.Errorf("config: printer type %q is not supported, use file or network", c.Printer.Type)
	default:
		return fmt.Errorf("config: unknown printer type %q", c.Printer.Type)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("config: max output tokens must be positive, got %d", c.MaxOutputTokens)
	}
	if c.SourceTimeout <= 0 {
		return fmt.Errorf("config: source timeout must be positive, got %s", c.SourceTimeout)
	}
	return nil
}

// Location resolves the configured timezone, falling back to the system
// zone when the name is unknown to the host's zone database.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func validLanguage(lang string) bool {
	switch strings.ToLower(lang) {
	case "german", "english":
		return true
	}
	_, err := language.Parse(lang)
	return err == nil
}

// loadEnvFiles layers .env files into the process environment. ENV_FILE
// names an explicit file; otherwise .env.local is read over .env. Missing
// files are not an error, and variables already set stay untouched, so the
// real environment always wins.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("config: load %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("config: load %s: %w", name, err)
		}
	}
	return nil
}

// applyEnvOverrides walks the struct and overwrites every field whose
// env-tagged variable is set in the environment.
func applyEnvOverrides(v reflect.Value) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvOverrides(field)
			continue
		}
		tag := t.Field(i).Tag.Get("env")
		if tag == "" {
			continue
		}
		val, ok := os.LookupEnv(tag)
		if !ok || val == "" {
			continue
		}
		setField(field, val)
	}
}

func setField(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Bool:
		v := strings.ToLower(strings.TrimSpace(val))
		field.SetBool(v == "true" || v == "1" || v == "yes")
	}
}
