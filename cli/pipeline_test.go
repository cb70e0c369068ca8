package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fkorte/briefroll/briefing"
	"github.com/fkorte/briefroll/config"
	"github.com/fkorte/briefroll/content"
	"github.com/fkorte/briefroll/logger"
	"github.com/fkorte/briefroll/render/escpos"
	"github.com/fkorte/briefroll/source"
)

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Outputs = config.Outputs{
		PNG:    filepath.Join(dir, "png", "brief.png"),
		Text:   filepath.Join(dir, "txt", "brief.txt"),
		ESCPOS: filepath.Join(dir, "escpos", "brief.bin"),
	}
	cfg.Printer.File = filepath.Join(dir, "printer.bin")
	return &app{cfg: cfg, log: logger.Nop()}
}

func sampleDoc() content.Document {
	return content.Document{
		content.Header{Greeting: "Guten Morgen!", Title: "KI-Tagesbrief", DateLine: "Montag, 24. August 2026"},
		content.Paragraph{Body: "Heute bleibt es freundlich."},
	}
}

func TestRenderAllWritesEveryBackend(t *testing.T) {
	a := testApp(t)
	outputs, stream, err := a.renderAll(sampleDoc())
	if err != nil {
		t.Fatalf("renderAll: %v", err)
	}
	want := []string{a.cfg.Outputs.PNG, a.cfg.Outputs.Text, a.cfg.Outputs.ESCPOS}
	if len(outputs) != 3 || outputs[0] != want[0] || outputs[1] != want[1] || outputs[2] != want[2] {
		t.Fatalf("outputs = %v, want %v", outputs, want)
	}

	pngBytes, err := os.ReadFile(a.cfg.Outputs.PNG)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(pngBytes, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("png output lacks the PNG signature")
	}

	txtBytes, err := os.ReadFile(a.cfg.Outputs.Text)
	if err != nil {
		t.Fatalf("read txt: %v", err)
	}
	if !strings.Contains(string(txtBytes), "Guten Morgen!") {
		t.Error("text mirror is missing the greeting")
	}

	escBytes, err := os.ReadFile(a.cfg.Outputs.ESCPOS)
	if err != nil {
		t.Fatalf("read escpos: %v", err)
	}
	if !bytes.Equal(escBytes, stream) {
		t.Error("escpos file does not match the returned stream")
	}
	if !bytes.HasPrefix(escBytes, []byte{0x1B, '@'}) {
		t.Error("command stream does not start with init")
	}
}

func TestRenderAllSkipsEmptyPaths(t *testing.T) {
	a := testApp(t)
	a.cfg.Outputs.PNG = ""
	outputs, _, err := a.renderAll(sampleDoc())
	if err != nil {
		t.Fatalf("renderAll: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("outputs = %v, want txt and escpos only", outputs)
	}
}

func TestRenderAllLayoutDebug(t *testing.T) {
	a := testApp(t)
	a.layoutDebug = filepath.Join(t.TempDir(), "debug", "layout.json")
	if _, _, err := a.renderAll(sampleDoc()); err != nil {
		t.Fatalf("renderAll: %v", err)
	}
	data, err := os.ReadFile(a.layoutDebug)
	if err != nil {
		t.Fatalf("read debug json: %v", err)
	}
	var dump map[string]any
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatalf("debug json malformed: %v", err)
	}
	if dump["charBudget"] != float64(32) {
		t.Errorf("charBudget = %v, want 32", dump["charBudget"])
	}
	if blocks, _ := dump["blocks"].([]any); len(blocks) == 0 {
		t.Error("debug json has no blocks")
	}
}

func TestRunBriefDemoPipeline(t *testing.T) {
	a := testApp(t)
	report, err := a.runBrief(context.Background(), false)
	if err != nil {
		t.Fatalf("runBrief: %v", err)
	}
	if report.Outcome != "succeeded" {
		t.Errorf("outcome = %q, want succeeded", report.Outcome)
	}
	if report.RunID == "" {
		t.Error("report has no run id")
	}
	if len(report.Outputs) != 3 || report.Printed {
		t.Errorf("report = %+v", report)
	}

	escBytes, err := os.ReadFile(a.cfg.Outputs.ESCPOS)
	if err != nil {
		t.Fatalf("read escpos: %v", err)
	}
	decoded := escpos.Decode(escBytes)
	for _, want := range []string{"KI-Tagesbrief", "AUFGABEN", "WETTER"} {
		if !strings.Contains(decoded, want) {
			t.Errorf("decoded stream is missing %q", want)
		}
	}
}

func TestRunBriefPrints(t *testing.T) {
	a := testApp(t)
	report, err := a.runBrief(context.Background(), true)
	if err != nil {
		t.Fatalf("runBrief: %v", err)
	}
	if !report.Printed {
		t.Fatal("report.Printed = false, want true")
	}
	printed, err := os.ReadFile(a.cfg.Printer.File)
	if err != nil {
		t.Fatalf("read printer file: %v", err)
	}
	rendered, _ := os.ReadFile(a.cfg.Outputs.ESCPOS)
	if !bytes.Equal(printed, rendered) {
		t.Error("printer received a different stream than the escpos output")
	}
}

func TestRunBriefSurvivesDeadPrinter(t *testing.T) {
	a := testApp(t)
	a.cfg.Printer.Type = "network"
	a.cfg.Printer.Host = "127.0.0.1"
	a.cfg.Printer.Port = 9 // nothing listens on discard
	a.cfg.Printer.Timeout = 0

	report, err := a.runBrief(context.Background(), true)
	if err != nil {
		t.Fatalf("runBrief must not fail on a dead printer: %v", err)
	}
	if report.Printed {
		t.Error("report claims a print that cannot have happened")
	}
	if len(report.Outputs) != 3 {
		t.Errorf("outputs = %v", report.Outputs)
	}
}

func TestPrintTextThroughPipeline(t *testing.T) {
	a := testApp(t)
	if err := a.printText(context.Background(), "Bitte Milch mitbringen\n"); err != nil {
		t.Fatalf("printText: %v", err)
	}
	stream, err := os.ReadFile(a.cfg.Printer.File)
	if err != nil {
		t.Fatalf("read printer file: %v", err)
	}
	if !strings.Contains(escpos.Decode(stream), "Bitte Milch mitbringen") {
		t.Error("printed stream does not contain the snippet")
	}
}

func TestPrintTextRejectsEmpty(t *testing.T) {
	a := testApp(t)
	if err := a.printText(context.Background(), "  \n "); err == nil {
		t.Fatal("printText with blank input must fail")
	}
}

func TestSourcesDemoByDefault(t *testing.T) {
	a := testApp(t)
	s, err := a.sources()
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if _, ok := s.Weather.(*source.Static); !ok {
		t.Errorf("weather source = %T, want demo static", s.Weather)
	}

	a.cfg.OpenWeatherAPIKey = "k"
	s, err = a.sources()
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if _, ok := s.Weather.(*source.OpenWeather); !ok {
		t.Errorf("weather source = %T, want live client", s.Weather)
	}
	if _, ok := s.Email.(*source.Static); !ok {
		t.Errorf("email source = %T, want demo static", s.Email)
	}
}

func TestSourcesFromFile(t *testing.T) {
	a := testApp(t)
	path := filepath.Join(t.TempDir(), "sources.yml")
	yml := "weather:\n  temp_c: 12.5\n  condition: Regen\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write sources: %v", err)
	}
	a.cfg.SourcesFile = path

	s, err := a.sources()
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if _, ok := s.Calendar.(*source.File); !ok {
		t.Errorf("calendar source = %T, want file source", s.Calendar)
	}

	a.cfg.SourcesFile = filepath.Join(t.TempDir(), "absent.yml")
	if _, err := a.sources(); err == nil {
		t.Fatal("missing sources file must fail")
	}
}

func TestComposerSelection(t *testing.T) {
	a := testApp(t)
	if _, ok := a.composer().(*briefing.Local); !ok {
		t.Errorf("composer without API key = %T, want local", a.composer())
	}
	a.cfg.AnthropicAPIKey = "sk-test"
	if _, ok := a.composer().(*briefing.Claude); !ok {
		t.Errorf("composer with API key = %T, want Claude", a.composer())
	}
}

func TestCronFromClock(t *testing.T) {
	got, err := cronFromClock("07:30")
	if err != nil {
		t.Fatalf("cronFromClock: %v", err)
	}
	if got != "30 7 * * *" {
		t.Errorf("expr = %q, want %q", got, "30 7 * * *")
	}
	for _, bad := range []string{"25:99", "seven", ""} {
		if _, err := cronFromClock(bad); err == nil {
			t.Errorf("cronFromClock(%q) = nil error, want failure", bad)
		}
	}
}

func TestLanguageName(t *testing.T) {
	cases := map[string]string{
		"de":      "German",
		"german":  "German",
		"en":      "English",
		"english": "English",
		"!!":      "English",
	}
	for in, want := range cases {
		if got := languageName(in); got != want {
			t.Errorf("languageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadBriefBindsData(t *testing.T) {
	dir := t.TempDir()
	briefPath := filepath.Join(dir, "morgen.brief")
	briefSrc := `brief "morgen" {
  header {
    greeting: "Hallo ${user}!"
    title: "Tagesbrief"
  }
  para "Heute: ${wetter}"
}`
	if err := os.WriteFile(briefPath, []byte(briefSrc), 0o644); err != nil {
		t.Fatalf("write brief: %v", err)
	}

	doc, err := loadBrief(briefPath, `{"user":"Luka","wetter":"sonnig"}`)
	if err != nil {
		t.Fatalf("loadBrief: %v", err)
	}
	header, ok := doc[0].(content.Header)
	if !ok {
		t.Fatalf("first section = %T, want header", doc[0])
	}
	if header.Greeting != "Hallo Luka!" {
		t.Errorf("greeting = %q", header.Greeting)
	}
	para, ok := doc[1].(content.Paragraph)
	if !ok || para.Body != "Heute: sonnig" {
		t.Errorf("paragraph = %+v", doc[1])
	}

	dataPath := filepath.Join(dir, "data.json")
	os.WriteFile(dataPath, []byte(`{"user":"Maya","wetter":"Regen"}`), 0o644)
	doc, err = loadBrief(briefPath, "@"+dataPath)
	if err != nil {
		t.Fatalf("loadBrief with @file: %v", err)
	}
	if doc[0].(content.Header).Greeting != "Hallo Maya!" {
		t.Errorf("greeting = %q", doc[0].(content.Header).Greeting)
	}

	if _, err := loadBrief(briefPath, "{broken"); err == nil {
		t.Fatal("malformed data JSON must fail")
	}
	if _, err := loadBrief(filepath.Join(dir, "absent.brief"), ""); err == nil {
		t.Fatal("missing brief file must fail")
	}
}

func TestWriteOutputCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
	if err := writeOutput(path, []byte("x")); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}
