// Package aggregate joins all data sources into one result per brief run.
//
// Every configured slot fetches concurrently under its own deadline. A slot
// that fails or times out degrades to its documented default (nil weather,
// empty slices) and is recorded, never aborting the run: a brief with a hole
// in it still prints.
package aggregate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fkorte/briefroll/logger"
	"github.com/fkorte/briefroll/source"
)

// DefaultTimeout bounds each source fetch unless Options overrides it.
const DefaultTimeout = 15 * time.Second

// Sources holds the configured inputs. A nil field means the slot is not
// configured: it keeps its default without counting as degraded.
type Sources struct {
	Weather  source.WeatherSource
	Email    source.EmailSource
	Calendar source.CalendarSource
	// Tasks serves both the general task list and the shopping list.
	Tasks source.TaskSource
}

// Options tune a run. Zero values fall back to the documented defaults.
type Options struct {
	Timeout      time.Duration // per-source deadline, default DefaultTimeout
	MaxEmails    int           // default 10
	MaxTasks     int           // default 15, applies to both task slots
	TaskList     string        // default "Allgemeines"
	ShoppingList string        // default "Einkaufsliste"

	// ShoppingFallback is published as the shopping slot when its fetch
	// fails, flagged via Result.ShoppingFromFallback. Typically the previous
	// run's list.
	ShoppingFallback []source.Task

	Logger logger.Logger
}

// State tracks an Aggregator through its single run.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// Outcome reports whether any slot degraded. Both outcomes render.
type Outcome int

const (
	Succeeded Outcome = iota
	PartiallyDegraded
)

func (o Outcome) String() string {
	if o == Succeeded {
		return "succeeded"
	}
	return "partially-degraded"
}

// Result is the joined view of one run. Slots a goroutine never wrote keep
// their zero value.
type Result struct {
	RunID string
	When  time.Time

	Weather  *source.Weather
	Emails   []source.Email
	Events   []source.Event
	Tasks    []source.Task
	Shopping []source.Task

	// ShoppingFromFallback marks Shopping as Options.ShoppingFallback rather
	// than a fresh fetch.
	ShoppingFromFallback bool

	// Degraded lists the slot names that fell back, sorted.
	Degraded []string
	Outcome  Outcome
}

// Aggregator runs the fan-out exactly once. Build one per brief generation.
type Aggregator struct {
	sources Sources
	opts    Options
	log     logger.Logger
	state   atomic.Int32
}

// New prepares a run over the given sources.
func New(sources Sources, opts Options) *Aggregator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxEmails <= 0 {
		opts.MaxEmails = 10
	}
	if opts.MaxTasks <= 0 {
		opts.MaxTasks = 15
	}
	if opts.TaskList == "" {
		opts.TaskList = "Allgemeines"
	}
	if opts.ShoppingList == "" {
		opts.ShoppingList = "Einkaufsliste"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{sources: sources, opts: opts, log: log}
}

// State returns the current lifecycle state.
func (a *Aggregator) State() State {
	return State(a.state.Load())
}

// Run fetches every configured slot concurrently and joins the results. It is
// valid exactly once per Aggregator; a second call errors.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	if !a.state.CompareAndSwap(int32(StateIdle), int32(StateFetching)) {
		return nil, errors.New("aggregate: Run called more than once")
	}
	defer a.state.Store(int32(StateJoined))

	res := &Result{
		RunID: uuid.NewString(),
		When:  time.Now(),
	}
	log := a.log.With(logger.String("run_id", res.RunID))
	start := time.Now()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		degraded []string
	)

	// fetch runs one slot goroutine. fn writes only its own Result field, so
	// the join needs no locking beyond the degraded list.
	fetch := func(slot string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
			defer cancel()
			if err := fn(sctx); err != nil {
				log.Warn("source degraded",
					logger.String("slot", slot),
					logger.Error(err))
				mu.Lock()
				degraded = append(degraded, slot)
				mu.Unlock()
			}
		}()
	}

	if a.sources.Weather != nil {
		fetch("weather", func(ctx context.Context) error {
			w, err := a.sources.Weather.Current(ctx)
			if err != nil {
				return err
			}
			res.Weather = w
			return nil
		})
	}
	if a.sources.Email != nil {
		fetch("email", func(ctx context.Context) error {
			emails, err := a.sources.Email.Unread(ctx, a.opts.MaxEmails)
			if err != nil {
				return err
			}
			res.Emails = emails
			return nil
		})
	}
	if a.sources.Calendar != nil {
		fetch("calendar", func(ctx context.Context) error {
			events, err := a.sources.Calendar.Today(ctx)
			if err != nil {
				return err
			}
			res.Events = events
			return nil
		})
	}
	if a.sources.Tasks != nil {
		fetch("tasks", func(ctx context.Context) error {
			tasks, err := a.sources.Tasks.Due(ctx, a.opts.TaskList, a.opts.MaxTasks)
			if err != nil {
				return err
			}
			res.Tasks = tasks
			return nil
		})
		fetch("shopping", func(ctx context.Context) error {
			items, err := a.sources.Tasks.Due(ctx, a.opts.ShoppingList, a.opts.MaxTasks)
			if err != nil {
				if len(a.opts.ShoppingFallback) > 0 {
					res.Shopping = a.opts.ShoppingFallback
					res.ShoppingFromFallback = true
				}
				return err
			}
			res.Shopping = items
			return nil
		})
	}

	wg.Wait()

	sort.Strings(degraded)
	res.Degraded = degraded
	if len(degraded) > 0 {
		res.Outcome = PartiallyDegraded
	}

	log.Info("sources joined",
		logger.String("outcome", res.Outcome.String()),
		logger.Strings("degraded", degraded),
		logger.Duration("elapsed", time.Since(start)))
	return res, nil
}
