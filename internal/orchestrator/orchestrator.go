// Package orchestrator drives the questionnaire pipeline: a periodic Q2
// survey of the market, and per-lead retry chains that re-run the
// confirmation stages until they pass, the attempt budget runs out or the
// chain is blocked.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
	"LeadPull/internal/questionnaire"
	"LeadPull/internal/scoring"
	"LeadPull/pkg/logger"
)

// Config tunes the survey and retry cadence.
type Config struct {
	SurveyInterval time.Duration // Q2 survey period
	TickInterval   time.Duration // scheduler resolution
	RetryInterval  time.Duration // minimum gap between chain attempts
	MaxAttempts    int           // attempts before a chain expires
}

func (c *Config) applyDefaults() {
	if c.SurveyInterval <= 0 {
		c.SurveyInterval = 10 * time.Minute
	}
	if c.TickInterval <= 0 {
		c.TickInterval = 5 * time.Second
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 5 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
}

// Orchestrator owns the lead chain state machine. Chain records are only
// mutated under the mutex; stage evaluation itself is pure and runs
// outside it.
type Orchestrator struct {
	cfg     Config
	src     domrepo.SnapshotSource
	sink    domrepo.ReportSink
	metrics domrepo.Metrics
	log     *logger.Logger
	clock   Clock

	mu     sync.Mutex
	chains map[models.ChainID]*models.LeadState

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock substitutes the wall clock.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// New creates an Orchestrator with the given collaborators.
func New(src domrepo.SnapshotSource, sink domrepo.ReportSink, metrics domrepo.Metrics, log *logger.Logger, cfg Config, opts ...Option) *Orchestrator {
	cfg.applyDefaults()
	o := &Orchestrator{
		cfg:     cfg,
		src:     src,
		sink:    sink,
		metrics: metrics,
		log:     log,
		clock:   systemClock{},
		chains:  make(map[models.ChainID]*models.LeadState),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start launches the survey and scheduler loops.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)
	o.wg.Add(2)
	go o.surveyLoop(ctx)
	go o.scheduleLoop(ctx)
}

// Stop terminates the loops and waits for them to drain.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

func (o *Orchestrator) surveyLoop(ctx context.Context) {
	defer o.wg.Done()

	o.Survey(ctx)
	ticker := time.NewTicker(o.cfg.SurveyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Survey(ctx)
		}
	}
}

func (o *Orchestrator) scheduleLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Tick(ctx)
		}
	}
}

// Survey runs the Q2 market survey once. While no trade has been seen yet
// the survey is deferred: a priceless snapshot carries no information. A
// passing survey arms both confirmation chains.
func (o *Orchestrator) Survey(ctx context.Context) *models.StageReport {
	started := o.clock.Now()
	s := o.src.Snapshot()
	if s.Price == 0 {
		o.log.Debug("survey deferred, no trades yet", logger.String("symbol", s.Symbol))
		return nil
	}

	r := questionnaire.SurveyMarket(s)
	o.publish(ctx, r)
	if r.TriggerNext {
		o.arm(models.ChainQ1)
		o.arm(models.ChainQ3)
	}
	o.metrics.RecordLatency("survey", o.clock.Now().Sub(started).Seconds())
	return r
}

// arm activates a chain. A currently active chain is left alone so its
// attempt budget survives overlapping surveys; terminal chains are
// restarted fresh.
func (o *Orchestrator) arm(chain models.ChainID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if st, ok := o.chains[chain]; ok && st.Active() {
		return
	}
	// LastAttempt stays zero so the next scheduler tick runs the first
	// attempt straight away; the retry interval only spaces retries.
	o.chains[chain] = &models.LeadState{
		Chain:   chain,
		Phase:   models.LeadActive,
		ArmedAt: o.clock.Now().UnixMilli(),
	}
	o.metrics.RecordLeadTransition(string(chain), string(models.LeadActive))
	o.log.Info("lead chain armed", logger.String("chain", string(chain)))
}

// Tick advances every active chain whose retry interval has elapsed.
func (o *Orchestrator) Tick(ctx context.Context) {
	now := o.clock.Now().UnixMilli()

	for _, chain := range []models.ChainID{models.ChainQ1, models.ChainQ3} {
		o.mu.Lock()
		st, ok := o.chains[chain]
		if !ok || !st.Active() || now-st.LastAttempt < o.cfg.RetryInterval.Milliseconds() {
			o.mu.Unlock()
			continue
		}
		st.Attempts++
		st.LastAttempt = now
		attempt := st.Attempts
		o.mu.Unlock()

		phase := o.runChain(ctx, chain, attempt)

		o.mu.Lock()
		st.Phase = phase
		o.mu.Unlock()

		if phase != models.LeadActive {
			o.metrics.RecordLeadTransition(string(chain), string(phase))
			sev := models.SeveritySuccess
			if phase == models.LeadExpired {
				sev = models.SeverityWarn
			}
			o.sink.Log(fmt.Sprintf("lead chain %s %s after %d attempt(s)", chain, phase, attempt), sev)
		}
	}
}

// runChain executes one attempt of a chain against a fresh snapshot and
// returns the resulting phase.
func (o *Orchestrator) runChain(ctx context.Context, chain models.ChainID, attempt int) models.LeadPhase {
	s := o.src.Snapshot()

	switch chain {
	case models.ChainQ1:
		r := questionnaire.EvaluateBreakthrough(s, scoring.Buying)
		o.publish(ctx, r)
		if r.TriggerNext {
			o.advise(ctx, s)
			return models.LeadSucceeded
		}
	case models.ChainQ3:
		r := questionnaire.EvaluateAggression(s)
		o.publish(ctx, r)
		if r.TriggerNext {
			v := questionnaire.VerifyEfficiency(s, scoring.Buying)
			o.publish(ctx, v)
			if v.TriggerNext {
				o.advise(ctx, s)
				return models.LeadSucceeded
			}
			// an inefficient market blocks the lead outright
			return models.LeadExpired
		}
	}

	if attempt >= o.cfg.MaxAttempts {
		return models.LeadExpired
	}
	return models.LeadActive
}

func (o *Orchestrator) advise(ctx context.Context, s *models.Snapshot) {
	o.publish(ctx, questionnaire.GenerateAdvice(s))
}

func (o *Orchestrator) publish(ctx context.Context, r *models.StageReport) {
	o.metrics.RecordStageEvaluation(r.Stage, r.Passed, r.TotalPoints)
	if err := o.sink.PublishReport(ctx, r); err != nil {
		o.metrics.RecordError("report_publish")
		o.log.Error("publish stage report", logger.String("stage", r.Stage), logger.Error(err))
	}
	o.sink.Log(fmt.Sprintf("[%s] %s (%.2f pts)", r.Stage, r.Status, r.TotalPoints), r.Severity)
}

// Chains returns a copy of the current chain records.
func (o *Orchestrator) Chains() []models.LeadState {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.LeadState, 0, len(o.chains))
	for _, chain := range []models.ChainID{models.ChainQ1, models.ChainQ3} {
		if st, ok := o.chains[chain]; ok {
			out = append(out, *st)
		}
	}
	return out
}
