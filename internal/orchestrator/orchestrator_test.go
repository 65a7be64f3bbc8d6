package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeadPull/internal/domain/models"
	"LeadPull/internal/questionnaire"
	"LeadPull/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSource struct {
	mu sync.Mutex
	s  *models.Snapshot
}

func (f *fakeSource) Snapshot() *models.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSource) set(s *models.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.s = s
}

type fakeSink struct {
	mu      sync.Mutex
	reports []*models.StageReport
	lines   []string
}

func (f *fakeSink) PublishReport(_ context.Context, r *models.StageReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeSink) Log(msg string, _ models.Severity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, msg)
}

func (f *fakeSink) stages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, r.Stage)
	}
	return out
}

type fakeMetrics struct {
	mu          sync.Mutex
	transitions []string
}

func (f *fakeMetrics) RecordTradeIngested(string)                  {}
func (f *fakeMetrics) RecordCandleBuilt(string)                    {}
func (f *fakeMetrics) RecordLastPrice(string, float64)             {}
func (f *fakeMetrics) RecordStageEvaluation(string, bool, float64) {}
func (f *fakeMetrics) RecordError(string)                          {}
func (f *fakeMetrics) RecordLatency(string, float64)               {}

func (f *fakeMetrics) RecordLeadTransition(chain, phase string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, chain+":"+phase)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

// baseSnapshot passes the Q2 survey but fails both confirmation chains:
// strong volumes and a lopsided book with no breach, no CVD trend and no
// trend structure.
func baseSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Symbol:      "BTCUSDT",
		Taken:       1700000000000,
		Price:       100,
		CurrVolume:  200,
		AvgVolume:   100,
		Vol24h:      300,
		VolPrevHour: 100,
		RSI:         60,
		EMA: models.EMASet{
			EMA20:  models.EMAPair{Prev: 100, Last: 100},
			EMA50:  models.EMAPair{Prev: 100, Last: 100},
			EMA200: models.EMAPair{Prev: 100, Last: 100},
		},
		CVDSeries: []float64{1, 1, 1, 1},
		BidVolume: 30,
		AskVolume: 10,
		SRLevels: map[models.Horizon]models.SRLevel{
			models.HorizonShort: {Support: 90, Resistance: 110},
		},
		NearestSR: 110,
	}
}

// q1Snapshot additionally passes the Q1 breakthrough chain while Q3 keeps
// failing: historical breach, bullish RSI corridor, stacked flat EMAs.
func q1Snapshot() *models.Snapshot {
	s := baseSnapshot()
	s.EMA = models.EMASet{
		EMA20:  models.EMAPair{Prev: 101, Last: 101},
		EMA50:  models.EMAPair{Prev: 105, Last: 105},
		EMA200: models.EMAPair{Prev: 110, Last: 110},
	}
	s.SRLevels = map[models.Horizon]models.SRLevel{
		models.HorizonShort: {Support: 90, Resistance: 110, Breached: true},
	}
	s.NearestSR = 90
	return s
}

// q3BlockedSnapshot passes Q3 aggression but fails the Q4 efficiency
// verification: no market cap, no book quotes, neutral RSI.
func q3BlockedSnapshot() *models.Snapshot {
	s := baseSnapshot()
	s.RSI = 50
	s.CVDSeries = []float64{1, 2, 3, 4}
	s.EMA.EMA20 = models.EMAPair{Prev: 100, Last: 101}
	s.SRLevels = map[models.Horizon]models.SRLevel{
		models.HorizonShort: {Support: 80, Resistance: 95},
	}
	return s
}

func newTestOrchestrator(t *testing.T, src *fakeSource) (*Orchestrator, *fakeSink, *fakeClock, *fakeMetrics) {
	t.Helper()
	sink := &fakeSink{}
	clock := newFakeClock()
	metrics := &fakeMetrics{}
	o := New(src, sink, metrics, newTestLogger(t), Config{
		SurveyInterval: 10 * time.Minute,
		TickInterval:   5 * time.Second,
		RetryInterval:  5 * time.Minute,
		MaxAttempts:    3,
	}, WithClock(clock))
	return o, sink, clock, metrics
}

func TestSurveyDeferredWithoutTrades(t *testing.T) {
	src := &fakeSource{s: &models.Snapshot{Symbol: "BTCUSDT"}}
	o, sink, _, _ := newTestOrchestrator(t, src)

	r := o.Survey(context.Background())

	assert.Nil(t, r)
	assert.Empty(t, sink.stages())
	assert.Empty(t, o.Chains())
}

func TestSurveyFailDoesNotArm(t *testing.T) {
	s := baseSnapshot()
	s.CurrVolume = 0
	s.Vol24h = 0
	s.BidVolume = 0
	src := &fakeSource{s: s}
	o, sink, _, _ := newTestOrchestrator(t, src)

	r := o.Survey(context.Background())

	require.NotNil(t, r)
	assert.False(t, r.TriggerNext)
	assert.Equal(t, []string{questionnaire.StageQ2}, sink.stages())
	assert.Empty(t, o.Chains())
}

func TestSurveyPassArmsBothChains(t *testing.T) {
	src := &fakeSource{s: baseSnapshot()}
	o, _, _, metrics := newTestOrchestrator(t, src)

	r := o.Survey(context.Background())

	require.NotNil(t, r)
	require.True(t, r.TriggerNext)
	chains := o.Chains()
	require.Len(t, chains, 2)
	for _, st := range chains {
		assert.Equal(t, models.LeadActive, st.Phase)
		assert.Zero(t, st.Attempts)
	}
	assert.ElementsMatch(t, []string{"q1:active", "q3:active"}, metrics.transitions)
}

func TestTickRespectsRetryInterval(t *testing.T) {
	src := &fakeSource{s: baseSnapshot()}
	o, sink, clock, _ := newTestOrchestrator(t, src)
	ctx := context.Background()

	o.Survey(ctx)
	armed := len(sink.stages())

	// the first attempt runs on the very next tick after arming
	clock.advance(5 * time.Second)
	o.Tick(ctx)
	first := len(sink.stages())
	assert.Greater(t, first, armed)

	// within the retry window nothing more runs
	clock.advance(4 * time.Minute)
	o.Tick(ctx)
	assert.Len(t, sink.stages(), first)

	clock.advance(time.Minute)
	o.Tick(ctx)
	assert.Greater(t, len(sink.stages()), first)

	byChain := map[models.ChainID]models.LeadState{}
	for _, st := range o.Chains() {
		byChain[st.Chain] = st
	}
	assert.Equal(t, 2, byChain[models.ChainQ1].Attempts)
	assert.Equal(t, 2, byChain[models.ChainQ3].Attempts)
}

func TestChainsExpireAfterAttemptBudget(t *testing.T) {
	src := &fakeSource{s: baseSnapshot()}
	o, _, clock, metrics := newTestOrchestrator(t, src)
	ctx := context.Background()

	o.Survey(ctx)
	for i := 0; i < 3; i++ {
		clock.advance(5 * time.Minute)
		o.Tick(ctx)
	}

	for _, st := range o.Chains() {
		assert.Equal(t, models.LeadExpired, st.Phase)
		assert.Equal(t, 3, st.Attempts)
	}

	// a further tick must not run a fourth attempt
	clock.advance(5 * time.Minute)
	o.Tick(ctx)
	for _, st := range o.Chains() {
		assert.Equal(t, 3, st.Attempts)
	}
	assert.Contains(t, metrics.transitions, "q1:expired")
	assert.Contains(t, metrics.transitions, "q3:expired")
}

func TestChainsRetryIndependently(t *testing.T) {
	src := &fakeSource{s: baseSnapshot()}
	o, sink, clock, _ := newTestOrchestrator(t, src)
	ctx := context.Background()

	o.Survey(ctx)
	src.set(q1Snapshot())
	clock.advance(5 * time.Minute)
	o.Tick(ctx)

	byChain := map[models.ChainID]models.LeadState{}
	for _, st := range o.Chains() {
		byChain[st.Chain] = st
	}
	assert.Equal(t, models.LeadSucceeded, byChain[models.ChainQ1].Phase)
	assert.Equal(t, models.LeadActive, byChain[models.ChainQ3].Phase)
	assert.Contains(t, sink.stages(), questionnaire.StageQ5, "a succeeded chain ends in advice")

	// Q3 keeps retrying while Q1 stays terminal
	clock.advance(5 * time.Minute)
	o.Tick(ctx)
	for _, st := range o.Chains() {
		byChain[st.Chain] = st
	}
	assert.Equal(t, 1, byChain[models.ChainQ1].Attempts)
	assert.Equal(t, 2, byChain[models.ChainQ3].Attempts)
}

func TestLowEfficiencyBlocksAggressionChain(t *testing.T) {
	src := &fakeSource{s: baseSnapshot()}
	o, sink, clock, _ := newTestOrchestrator(t, src)
	ctx := context.Background()

	o.Survey(ctx)
	src.set(q3BlockedSnapshot())
	clock.advance(5 * time.Minute)
	o.Tick(ctx)

	byChain := map[models.ChainID]models.LeadState{}
	for _, st := range o.Chains() {
		byChain[st.Chain] = st
	}
	assert.Equal(t, models.LeadExpired, byChain[models.ChainQ3].Phase)
	assert.Equal(t, 1, byChain[models.ChainQ3].Attempts, "blocked chains do not retry")

	stages := sink.stages()
	assert.Contains(t, stages, questionnaire.StageQ4)
	assert.NotContains(t, stages, questionnaire.StageQ5)
}

func TestNewSurveyRearmsExpiredChains(t *testing.T) {
	src := &fakeSource{s: baseSnapshot()}
	o, _, clock, _ := newTestOrchestrator(t, src)
	ctx := context.Background()

	o.Survey(ctx)
	for i := 0; i < 3; i++ {
		clock.advance(5 * time.Minute)
		o.Tick(ctx)
	}
	o.Survey(ctx)

	for _, st := range o.Chains() {
		assert.Equal(t, models.LeadActive, st.Phase)
		assert.Zero(t, st.Attempts)
	}
}
