package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/fkorte/briefroll/aggregate"
	"github.com/fkorte/briefroll/briefing"
	"github.com/fkorte/briefroll/config"
	"github.com/fkorte/briefroll/content"
	"github.com/fkorte/briefroll/layout"
	"github.com/fkorte/briefroll/logger"
	"github.com/fkorte/briefroll/printer"
	"github.com/fkorte/briefroll/render/escpos"
	"github.com/fkorte/briefroll/render/raster"
	"github.com/fkorte/briefroll/render/textout"
	"github.com/fkorte/briefroll/server"
	"github.com/fkorte/briefroll/source"
)

// app bundles config and logging for one command invocation and carries
// the pipeline: aggregate, compose, lay out once, render three ways.
type app struct {
	cfg *config.Config
	log logger.Logger

	// layoutDebug, when set, dumps the composition JSON next to the
	// rendered outputs so layout changes can be diffed.
	layoutDebug string

	// runMu serializes pipeline passes. The server fires runs from
	// goroutines, and concurrent runs would interleave writes to the
	// same output files and the same printer.
	runMu sync.Mutex
}

// sources wires the configured data sources. A sources YAML file serves
// every slot; without one the built-in demo data does. A weather API key
// upgrades the weather slot to live data either way.
func (a *app) sources() (aggregate.Sources, error) {
	var s aggregate.Sources
	if a.cfg.SourcesFile != "" {
		f, err := source.NewFile(a.cfg.SourcesFile)
		if err != nil {
			return s, err
		}
		s = aggregate.Sources{Weather: f, Email: f, Calendar: f, Tasks: f}
	} else {
		demo := source.Demo()
		s = aggregate.Sources{Weather: demo, Email: demo, Calendar: demo, Tasks: demo}
		a.log.Info("no sources file configured, serving demo data")
	}
	if a.cfg.OpenWeatherAPIKey != "" {
		s.Weather = source.NewOpenWeather(a.cfg.OpenWeatherAPIKey, a.cfg.WeatherLocation)
	}
	return s, nil
}

// composer picks the AI composer when an API key is configured, the
// deterministic local one otherwise. The AI composer falls back to the
// local one on its own when the API misbehaves.
func (a *app) composer() briefing.Composer {
	local := briefing.NewLocal(a.cfg.UserName, a.cfg.Language, a.cfg.Location())
	if a.cfg.AnthropicAPIKey == "" {
		return local
	}
	return briefing.NewClaude(briefing.ClaudeConfig{
		APIKey:    a.cfg.AnthropicAPIKey,
		Model:     a.cfg.AIModel,
		MaxTokens: a.cfg.MaxOutputTokens,
		UserName:  a.cfg.UserName,
		Language:  languageName(a.cfg.Language),
		Logger:    a.log,
	}, local)
}

// runBrief executes one full pipeline pass and reports what happened.
// With print set, the command stream also goes to the configured printer;
// a dead printer is logged but does not fail a run whose outputs exist.
func (a *app) runBrief(ctx context.Context, print bool) (*server.Report, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	start := time.Now()

	srcs, err := a.sources()
	if err != nil {
		return nil, err
	}
	agg := aggregate.New(srcs, aggregate.Options{
		Timeout:      a.cfg.SourceTimeout,
		MaxEmails:    a.cfg.MaxEmails,
		MaxTasks:     a.cfg.MaxTasks,
		TaskList:     a.cfg.TaskList,
		ShoppingList: a.cfg.ShoppingList,
		Logger:       a.log,
	})
	res, err := agg.Run(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := a.composer().Compose(ctx, res)
	if err != nil {
		return nil, err
	}

	outputs, stream, err := a.renderAll(doc)
	if err != nil {
		return nil, err
	}

	report := &server.Report{
		RunID:          res.RunID,
		Outcome:        res.Outcome.String(),
		Degraded:       res.Degraded,
		Outputs:        outputs,
		RenderDuration: time.Since(start),
	}
	if print {
		if err := a.printStream(stream); err != nil {
			a.log.Error("print failed, outputs are still on disk", logger.Error(err))
		} else {
			report.Printed = true
		}
	}
	a.log.Info("daily brief finished",
		logger.String("run_id", report.RunID),
		logger.String("outcome", report.Outcome),
		logger.Strings("outputs", report.Outputs),
		logger.Bool("printed", report.Printed),
		logger.Duration("elapsed", report.RenderDuration),
	)
	return report, nil
}

// renderAll lays the document out once and feeds the same composition to
// all three backends. It returns the written paths and the raw command
// stream for printing.
func (a *app) renderAll(doc content.Document) (outputs []string, stream []byte, err error) {
	eng, err := raster.New(raster.Options{})
	if err != nil {
		return nil, nil, err
	}
	comp := layout.Compose(eng, doc, a.cfg.PaperWidthMM)

	if a.layoutDebug != "" {
		if dir := filepath.Dir(a.layoutDebug); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := layout.WriteDebugJSON(comp, a.layoutDebug); err != nil {
			return nil, nil, fmt.Errorf("write layout debug: %w", err)
		}
	}

	pngBytes, err := eng.Render(comp)
	if err != nil {
		return nil, nil, err
	}
	txtBytes, err := textout.New().Render(comp)
	if err != nil {
		return nil, nil, err
	}
	escBytes, err := escpos.New().Render(comp)
	if err != nil {
		return nil, nil, err
	}

	for _, out := range []struct {
		path string
		data []byte
	}{
		{a.cfg.Outputs.PNG, pngBytes},
		{a.cfg.Outputs.Text, txtBytes},
		{a.cfg.Outputs.ESCPOS, escBytes},
	} {
		if out.path == "" {
			continue
		}
		if err := writeOutput(out.path, out.data); err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, out.path)
	}
	return outputs, escBytes, nil
}

// printText pushes a snippet through the regular pipeline as a one-line
// paragraph document, so wrapping and truncation match a full brief.
func (a *app) printText(_ context.Context, text string) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("nothing to print")
	}
	doc := content.Document{content.Paragraph{Body: text}}

	eng, err := raster.New(raster.Options{})
	if err != nil {
		return err
	}
	comp := layout.Compose(eng, doc, a.cfg.PaperWidthMM)
	stream, err := escpos.New().Render(comp)
	if err != nil {
		return err
	}
	return a.printStream(stream)
}

func (a *app) printStream(stream []byte) error {
	sink, err := printer.Open(printer.Config{
		Type: a.cfg.Printer.Type,
		Host: a.cfg.Printer.Host,
		Port: a.cfg.Printer.Port,
		Path: a.cfg.Printer.File,
	})
	if err != nil {
		return err
	}
	defer sink.Close()
	if _, err := sink.Write(stream); err != nil {
		return fmt.Errorf("printer: write stream: %w", err)
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// languageName turns a config language ("de", "german", "en-GB") into the
// English display name the AI prompt wants ("German").
func languageName(lang string) string {
	switch strings.ToLower(lang) {
	case "german":
		return "German"
	case "english":
		return "English"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "English"
	}
	return display.English.Languages().Name(tag)
}
