package briefing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/fkorte/briefroll/aggregate"
	"github.com/fkorte/briefroll/content"
	"github.com/fkorte/briefroll/logger"
)

const (
	anthropicBaseURL   = "https://api.anthropic.com/v1/messages"
	anthropicVersion   = "2023-06-01"
	claudeMaxRetries   = 3
	claudeInitialDelay = 1 * time.Second
)

// Claude drafts the brief's prose through the Anthropic Messages API and
// assembles it with the run's factual data. Any failure (transport, refusal,
// malformed JSON, missing fields) falls back to the Local composer, so the
// printer never stays silent because a model had a bad morning.
type Claude struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
	language  string
	userName  string
	fallback  *Local
	log       logger.Logger
}

var _ Composer = (*Claude)(nil)

// ClaudeConfig carries the tunables for NewClaude.
type ClaudeConfig struct {
	APIKey    string
	Model     string
	MaxTokens int // default 800
	UserName  string
	Language  string // passed to the model verbatim, e.g. "German"
	Logger    logger.Logger
}

// NewClaude builds the AI composer. fallback must not be nil.
func NewClaude(cfg ClaudeConfig, fallback *Local) *Claude {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Claude{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		baseURL:   anthropicBaseURL,
		client:    &http.Client{Timeout: 60 * time.Second},
		language:  cfg.Language,
		userName:  cfg.UserName,
		fallback:  fallback,
		log:       log,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// aiSections is the strict JSON schema the model is asked to fill. Section
// titles arrive localized; list items and table rows stay factual and come
// from the run, never from the model.
type aiSections struct {
	Greeting      string `json:"greeting"`
	Title         string `json:"title"`
	DateLine      string `json:"date_line"`
	Summary       string `json:"summary"`
	TaskTitle     string `json:"task_title"`
	ShoppingTitle string `json:"shopping_title"`
	WeatherTitle  string `json:"weather_title"`
	Footer        string `json:"footer"`
}

// Compose implements Composer.
func (c *Claude) Compose(ctx context.Context, res *aggregate.Result) (content.Document, error) {
	doc, err := c.generate(ctx, res)
	if err != nil {
		c.log.Warn("ai composition failed, using local composer", logger.Error(err))
		return c.fallback.Compose(ctx, res)
	}
	return doc, nil
}

func (c *Claude) generate(ctx context.Context, res *aggregate.Result) (content.Document, error) {
	if res == nil {
		return nil, fmt.Errorf("briefing: nil aggregate result")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("briefing: no api key configured")
	}

	text, err := c.request(ctx, c.systemPrompt(), c.userPrompt(res))
	if err != nil {
		return nil, err
	}
	sections, err := parseSections(text)
	if err != nil {
		return nil, err
	}
	return c.assemble(sections, res)
}

func (c *Claude) systemPrompt() string {
	return fmt.Sprintf(`You write the text of a personalized daily briefing that is printed on a 58mm thermal receipt. Write every string in %s.

Respond with a single strict JSON object and nothing else, no markdown and no commentary:
{"greeting": "time-appropriate greeting using the user's name",
 "title": "short receipt title",
 "date_line": "the current date, formatted culturally",
 "summary": "3-4 warm, concise sentences connecting the weather, emails, events and tasks; mention counts where useful; no lists",
 "task_title": "section title for open tasks, uppercase",
 "shopping_title": "section title for the shopping list, uppercase",
 "weather_title": "section title for the weather table, uppercase",
 "footer": "one short line like 'generated at HH:MM'"}

Keep every value printable on narrow paper: no emoji, no markdown.`, c.language)
}

func (c *Claude) userPrompt(res *aggregate.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\nLanguage: %s\nNow: %s\n",
		c.userName, c.language, res.When.Format("Monday 2006-01-02 15:04"))

	if w := res.Weather; w != nil {
		fmt.Fprintf(&b, "\nWeather: %s, %.0f C (feels %.0f), high %.0f low %.0f, humidity %d%%, wind %.0f km/h\n",
			w.Condition, w.TempC, w.FeelsC, w.HighC, w.LowC, w.Humidity, w.WindKMH)
		if w.Tomorrow != "" {
			fmt.Fprintf(&b, "Tomorrow: %s\n", w.Tomorrow)
		}
	}

	fmt.Fprintf(&b, "\nEmails (%d unread):\n", len(res.Emails))
	for _, e := range res.Emails {
		mark := ""
		if e.Important {
			mark = " [important]"
		}
		fmt.Fprintf(&b, "- %s: %s (%s)%s\n", e.Sender, e.Subject, e.Time, mark)
	}

	fmt.Fprintf(&b, "\nEvents today (%d):\n", len(res.Events))
	for _, e := range res.Events {
		when := "all day"
		if !e.AllDay {
			when = e.Start.Format("15:04")
		}
		line := fmt.Sprintf("- %s %s", when, e.Title)
		if e.Location != "" {
			line += " @ " + e.Location
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "\nOpen tasks (%d):\n", len(res.Tasks))
	for _, t := range res.Tasks {
		due := ""
		if t.Due != "" {
			due = " (due " + t.Due + ")"
		}
		fmt.Fprintf(&b, "- %s%s\n", t.Title, due)
	}

	fmt.Fprintf(&b, "\nShopping list (%d items)\n", len(res.Shopping))
	if len(res.Degraded) > 0 {
		fmt.Fprintf(&b, "\nNote: these sources failed and show defaults: %s\n",
			strings.Join(res.Degraded, ", "))
	}
	return b.String()
}

// request sends one system+user exchange, retrying rate limits and server
// errors with exponential backoff.
func (c *Claude) request(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("briefing: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < claudeMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * claudeInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("briefing: create request: %w", err)
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("briefing: %w", err)
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("briefing: read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("briefing: anthropic api error (%d): %s", resp.StatusCode, respBody)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var apiResp anthropicResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", fmt.Errorf("briefing: decode response: %w", err)
		}
		if len(apiResp.Content) == 0 {
			return "", fmt.Errorf("briefing: empty response content")
		}
		return apiResp.Content[0].Text, nil
	}
	return "", fmt.Errorf("briefing: max retries exceeded: %w", lastErr)
}

// parseSections extracts the JSON object, tolerating markdown code fences.
func parseSections(text string) (*aiSections, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var s aiSections
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return nil, fmt.Errorf("briefing: parse model JSON: %w", err)
	}
	if s.Greeting == "" || s.Summary == "" || s.Footer == "" {
		return nil, fmt.Errorf("briefing: model response misses required sections")
	}
	return &s, nil
}

// assemble merges the model's prose with the run's factual lists and table.
func (c *Claude) assemble(s *aiSections, res *aggregate.Result) (content.Document, error) {
	lex := c.fallback.lex

	doc := content.Document{
		content.Header{Greeting: s.Greeting, Title: s.Title, DateLine: s.DateLine},
		content.Paragraph{Body: s.Summary},
	}

	if len(res.Tasks) > 0 {
		doc = append(doc, content.NewList(orElse(s.TaskTitle, lex.tasksTitle), taskTitles(res.Tasks)))
	}
	if len(res.Shopping) > 0 {
		doc = append(doc, content.NewList(orElse(s.ShoppingTitle, lex.shoppingTitle), taskTitles(res.Shopping)))
	}
	if res.Weather != nil && len(res.Weather.Forecast) > 0 {
		rows := make([][]string, 0, len(res.Weather.Forecast))
		for _, p := range res.Weather.Forecast {
			rows = append(rows, []string{p.Time, fmt.Sprintf("%.0f°", p.TempC), p.Sky})
		}
		tbl, err := content.NewTable(orElse(s.WeatherTitle, lex.weatherTitle),
			[]string{lex.timeCol, lex.tempCol, lex.skyCol}, rows)
		if err != nil {
			return nil, fmt.Errorf("briefing: weather table: %w", err)
		}
		doc = append(doc, tbl)
	}

	doc = append(doc, content.Footer{Text: s.Footer})
	return doc, nil
}

func orElse(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
