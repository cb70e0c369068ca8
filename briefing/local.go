// Package briefing turns a joined data run into the receipt document. The
// Local composer is deterministic and always available; Claude drafts the
// prose via the Anthropic API and falls back to Local when anything goes
// wrong, so a brief is composed on every run.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/fkorte/briefroll/aggregate"
	"github.com/fkorte/briefroll/content"
	"github.com/fkorte/briefroll/source"
)

// Composer builds the receipt document for one run.
type Composer interface {
	Compose(ctx context.Context, res *aggregate.Result) (content.Document, error)
}

// supported languages, first entry is the fallback for unknown tags.
var supported = []language.Tag{language.English, language.German}

// lexicon holds every localized string the Local composer prints.
type lexicon struct {
	morning, afternoon, evening, night string
	title                              string
	tasksTitle, shoppingTitle          string
	weatherTitle                       string
	timeCol, tempCol, skyCol           string
	footer                             string
	emailOne, emailMany                string
	eventOne, eventMany                string
	youHave, and                       string
	weatherLine                        string
	dateLine                           func(t time.Time) string
}

var english = lexicon{
	morning: "Good morning, %s!", afternoon: "Good afternoon, %s!",
	evening: "Good evening, %s!", night: "Good night, %s!",
	title:      "AI Daily Brief",
	tasksTitle: "TASKS", shoppingTitle: "SHOPPING LIST",
	weatherTitle: "WEATHER",
	timeCol:      "Time", tempCol: "Temp", skyCol: "Sky",
	footer:   "Generated at %s",
	emailOne: "%d new email", emailMany: "%d new emails",
	eventOne: "%d appointment", eventMany: "%d appointments",
	youHave: "You have", and: "and",
	weatherLine: "%s at %.0f degrees, high of %.0f.",
	dateLine: func(t time.Time) string {
		return t.Format("Monday, January 2, 2006")
	},
}

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

var germanDays = [...]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

var german = lexicon{
	morning: "Guten Morgen, %s!", afternoon: "Guten Tag, %s!",
	evening: "Guten Abend, %s!", night: "Gute Nacht, %s!",
	title:      "KI-Tagesbrief",
	tasksTitle: "AUFGABEN", shoppingTitle: "EINKAUFSLISTE",
	weatherTitle: "WETTER",
	timeCol:      "Zeit", tempCol: "Temp", skyCol: "Himmel",
	footer:   "Erstellt um %s",
	emailOne: "%d neue E-Mail", emailMany: "%d neue E-Mails",
	eventOne: "%d Termin", eventMany: "%d Termine",
	youHave: "Du hast", and: "und",
	weatherLine: "%s bei %.0f Grad, Höchstwert %.0f Grad.",
	dateLine: func(t time.Time) string {
		return fmt.Sprintf("%s, %d. %s %d",
			germanDays[t.Weekday()], t.Day(), germanMonths[t.Month()-1], t.Year())
	},
}

// Local composes the brief deterministically from slot counts and weather.
// It is the default composer when no API key is configured and the fallback
// for Claude.
type Local struct {
	userName string
	lex      lexicon
	loc      *time.Location

	// now is a test hook; zero value means time.Now.
	now func() time.Time
}

var _ Composer = (*Local)(nil)

// NewLocal builds a composer for the given user and language ("de", "en",
// "german", "english" or any BCP 47 tag; unknown tags fall back to English).
// A nil location means local time.
func NewLocal(userName, lang string, loc *time.Location) *Local {
	if loc == nil {
		loc = time.Local
	}
	return &Local{userName: userName, lex: pickLexicon(lang), loc: loc}
}

func pickLexicon(lang string) lexicon {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "german":
		return german
	case "english":
		return english
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return english
	}
	_, idx, conf := language.NewMatcher(supported).Match(tag)
	if conf == language.No {
		return english
	}
	if supported[idx] == language.German {
		return german
	}
	return english
}

// Compose implements Composer.
func (l *Local) Compose(_ context.Context, res *aggregate.Result) (content.Document, error) {
	if res == nil {
		return nil, errors.New("briefing: nil aggregate result")
	}
	now := l.clock().In(l.loc)
	lex := l.lex

	doc := content.Document{
		content.Header{
			Greeting: l.greeting(now),
			Title:    lex.title,
			DateLine: lex.dateLine(now),
		},
		content.Paragraph{Body: l.summary(res)},
	}

	if len(res.Tasks) > 0 {
		doc = append(doc, content.NewList(lex.tasksTitle, taskTitles(res.Tasks)))
	}
	if len(res.Shopping) > 0 {
		doc = append(doc, content.NewList(lex.shoppingTitle, taskTitles(res.Shopping)))
	}

	if res.Weather != nil && len(res.Weather.Forecast) > 0 {
		rows := make([][]string, 0, len(res.Weather.Forecast))
		for _, p := range res.Weather.Forecast {
			rows = append(rows, []string{p.Time, fmt.Sprintf("%.0f°", p.TempC), p.Sky})
		}
		tbl, err := content.NewTable(lex.weatherTitle,
			[]string{lex.timeCol, lex.tempCol, lex.skyCol}, rows)
		if err != nil {
			return nil, fmt.Errorf("briefing: weather table: %w", err)
		}
		doc = append(doc, tbl)
	}

	doc = append(doc, content.Footer{Text: fmt.Sprintf(lex.footer, now.Format("15:04"))})
	return doc, nil
}

func (l *Local) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

// greeting picks the bucket for the hour: morning 5-12, afternoon 12-17,
// evening 17-22, night otherwise.
func (l *Local) greeting(now time.Time) string {
	var form string
	switch hour := now.Hour(); {
	case hour >= 5 && hour < 12:
		form = l.lex.morning
	case hour >= 12 && hour < 17:
		form = l.lex.afternoon
	case hour >= 17 && hour < 22:
		form = l.lex.evening
	default:
		form = l.lex.night
	}
	return fmt.Sprintf(form, l.userName)
}

// summary derives the overview paragraph from the weather and slot counts.
func (l *Local) summary(res *aggregate.Result) string {
	lex := l.lex
	var b strings.Builder
	if w := res.Weather; w != nil {
		fmt.Fprintf(&b, lex.weatherLine, w.Condition, w.TempC, w.HighC)
		b.WriteByte(' ')
	}
	emails := fmt.Sprintf(plural(len(res.Emails), lex.emailOne, lex.emailMany), len(res.Emails))
	events := fmt.Sprintf(plural(len(res.Events), lex.eventOne, lex.eventMany), len(res.Events))
	fmt.Fprintf(&b, "%s %s %s %s.", lex.youHave, emails, lex.and, events)
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func taskTitles(tasks []source.Task) []string {
	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		titles = append(titles, t.Title)
	}
	return titles
}
