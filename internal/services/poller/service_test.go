package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/a-linden/genboard-tui/internal/models"
)

type genResult struct {
	records []models.GenerationRecord
	err     error
}

type genCall struct {
	tier  models.Tier
	reply chan genResult
}

type usageResult struct {
	records []models.ModelUsageRecord
	err     error
}

type usageCall struct {
	reply chan usageResult
}

// fakeClient blocks each fetch until the test replies, so tests control
// when every in-flight request resolves.
type fakeClient struct {
	genCalls   chan genCall
	usageCalls chan usageCall
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		genCalls:   make(chan genCall, 10),
		usageCalls: make(chan usageCall, 10),
	}
}

func (f *fakeClient) FetchGenerations(_ context.Context, tier models.Tier) ([]models.GenerationRecord, error) {
	call := genCall{tier: tier, reply: make(chan genResult)}
	f.genCalls <- call
	r := <-call.reply
	return r.records, r.err
}

func (f *fakeClient) FetchModelsUsage(_ context.Context) ([]models.ModelUsageRecord, error) {
	call := usageCall{reply: make(chan usageResult)}
	f.usageCalls <- call
	r := <-call.reply
	return r.records, r.err
}

// testConfig uses long intervals so only explicit kicks trigger fetches
// after the initial ones.
func testConfig() Config {
	return Config{
		GenerationsInterval: time.Hour,
		ModelsInterval:      time.Hour,
		InitialTier:         models.TierAll,
	}
}

func awaitGenCall(t *testing.T, f *fakeClient) genCall {
	t.Helper()
	select {
	case call := <-f.genCalls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for generations fetch")
		return genCall{}
	}
}

func awaitUsageCall(t *testing.T, f *fakeClient) usageCall {
	t.Helper()
	select {
	case call := <-f.usageCalls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for models usage fetch")
		return usageCall{}
	}
}

func awaitEvent(t *testing.T, s *Service) Event {
	t.Helper()
	select {
	case event := <-s.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poller event")
		return Event{}
	}
}

func expectNoEvent(t *testing.T, s *Service, within time.Duration) {
	t.Helper()
	select {
	case event := <-s.Events():
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(within):
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func genRecords(tier models.Tier, counts ...int64) []models.GenerationRecord {
	records := make([]models.GenerationRecord, len(counts))
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i, c := range counts {
		records[i] = models.GenerationRecord{
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
			UserTier:  tier,
			Count:     c,
		}
	}
	return records
}

func TestService_InitialFetch(t *testing.T) {
	fake := newFakeClient()
	svc := New(fake, testConfig())
	defer func() { _ = svc.Close() }()

	// Both channels fetch immediately on start.
	genFetch := awaitGenCall(t, fake)
	if genFetch.tier != models.TierAll {
		t.Errorf("initial generations tier = %q, want all", genFetch.tier)
	}
	if !svc.Generations().IsLoading {
		t.Error("generations IsLoading should be true while fetch is outstanding")
	}

	usageFetch := awaitUsageCall(t, fake)
	if !svc.ModelsUsage().IsLoading {
		t.Error("models usage IsLoading should be true while fetch is outstanding")
	}

	genFetch.reply <- genResult{records: genRecords(models.TierAll, 5, 9)}
	usageFetch.reply <- usageResult{records: []models.ModelUsageRecord{
		{Model: "gpt-a", Requests: 10, Failures: 1, SuccessRate: 90, AvgDuration: 120},
	}}

	// One update per channel, in resolution order.
	seen := map[Channel]bool{}
	for range 2 {
		event := awaitEvent(t, svc)
		if event.Type != EventUpdated {
			t.Fatalf("expected EventUpdated, got %+v", event)
		}
		seen[event.Channel] = true
	}
	if !seen[ChannelGenerations] || !seen[ChannelModelsUsage] {
		t.Errorf("missing channel updates: %v", seen)
	}

	gens := svc.Generations()
	if gens.IsLoading || gens.Err != nil {
		t.Errorf("generations state after success: %+v", gens)
	}
	if len(gens.Data) != 2 || gens.Data[1].Count != 9 {
		t.Errorf("unexpected generations data: %+v", gens.Data)
	}

	usage := svc.ModelsUsage()
	if usage.IsLoading || usage.Err != nil || len(usage.Data) != 1 {
		t.Errorf("models usage state after success: %+v", usage)
	}
}

func TestService_DeduplicatesInFlightFetches(t *testing.T) {
	fake := newFakeClient()
	svc := New(fake, testConfig())
	defer func() { _ = svc.Close() }()

	firstFetch := awaitGenCall(t, fake)

	// Two refresh triggers while the fetch is outstanding must not start
	// a second call for the same key.
	svc.RefreshGenerations()
	svc.RefreshGenerations()

	select {
	case <-fake.genCalls:
		t.Fatal("duplicate generations fetch started while one was in flight")
	case <-time.After(150 * time.Millisecond):
	}

	firstFetch.reply <- genResult{records: genRecords(models.TierAll, 1)}
	event := awaitEvent(t, svc)
	if event.Type != EventUpdated || event.Channel != ChannelGenerations {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestService_StaleTierResultDiscarded(t *testing.T) {
	fake := newFakeClient()
	svc := New(fake, testConfig())
	defer func() { _ = svc.Close() }()

	allFetch := awaitGenCall(t, fake)
	usageFetch := awaitUsageCall(t, fake)
	usageFetch.reply <- usageResult{}
	if event := awaitEvent(t, svc); event.Channel != ChannelModelsUsage {
		t.Fatalf("expected models usage update, got %+v", event)
	}

	// Change the filter while the "all" fetch is still in flight.
	svc.SetTier(models.TierPro)
	if got := svc.Tier(); got != models.TierPro {
		t.Fatalf("Tier() = %q, want pro", got)
	}
	if !svc.Generations().IsLoading {
		t.Error("generations should be loading after tier change")
	}

	proFetch := awaitGenCall(t, fake)
	if proFetch.tier != models.TierPro {
		t.Fatalf("new fetch tier = %q, want pro", proFetch.tier)
	}

	// The stale "all" response resolves after the filter change; it must
	// not be applied or emit an update.
	allFetch.reply <- genResult{records: genRecords(models.TierAll, 999)}
	expectNoEvent(t, svc, 150*time.Millisecond)

	gens := svc.Generations()
	if len(gens.Data) != 0 {
		t.Errorf("stale data applied: %+v", gens.Data)
	}
	if !gens.IsLoading {
		t.Error("stale resolution must not clear loading for the active key")
	}

	proFetch.reply <- genResult{records: genRecords(models.TierPro, 7)}
	event := awaitEvent(t, svc)
	if event.Type != EventUpdated || event.Tier != models.TierPro {
		t.Fatalf("unexpected event %+v", event)
	}

	gens = svc.Generations()
	if len(gens.Data) != 1 || gens.Data[0].Count != 7 || gens.Data[0].UserTier != models.TierPro {
		t.Errorf("expected pro data only, got %+v", gens.Data)
	}
	if gens.IsLoading {
		t.Error("loading should clear after the active key resolves")
	}
}

func TestService_SetTierSameKeyIsNoop(t *testing.T) {
	fake := newFakeClient()
	svc := New(fake, testConfig())
	defer func() { _ = svc.Close() }()

	fetch := awaitGenCall(t, fake)
	fetch.reply <- genResult{records: genRecords(models.TierAll, 3)}
	awaitEvent(t, svc)

	svc.SetTier(models.TierAll)
	if gens := svc.Generations(); len(gens.Data) != 1 {
		t.Error("setting the same tier must not invalidate data")
	}
}

func TestService_FailurePreservesLastGoodData(t *testing.T) {
	fake := newFakeClient()
	svc := New(fake, testConfig())
	defer func() { _ = svc.Close() }()

	fetch := awaitUsageCall(t, fake)
	fetch.reply <- usageResult{records: []models.ModelUsageRecord{
		{Model: "gpt-a", Requests: 10, Failures: 0, SuccessRate: 100, AvgDuration: 90},
	}}
	genFetch := awaitGenCall(t, fake)
	genFetch.reply <- genResult{}

	for range 2 {
		awaitEvent(t, svc)
	}

	svc.RefreshModelsUsage()
	fetch = awaitUsageCall(t, fake)
	fetch.reply <- usageResult{err: errors.New("backend down")}

	event := awaitEvent(t, svc)
	if event.Type != EventError || event.Channel != ChannelModelsUsage {
		t.Fatalf("expected models usage error event, got %+v", event)
	}

	usage := svc.ModelsUsage()
	if usage.Err == nil {
		t.Error("Err should be set after failure")
	}
	if len(usage.Data) != 1 || usage.Data[0].Model != "gpt-a" {
		t.Errorf("last good data was not preserved: %+v", usage.Data)
	}
	if usage.IsLoading {
		t.Error("IsLoading should clear on failed resolution")
	}
}

func TestService_ErrorNotificationDeduplicated(t *testing.T) {
	fake := newFakeClient()
	svc := New(fake, testConfig())
	defer func() { _ = svc.Close() }()

	usageFetch := awaitUsageCall(t, fake)
	usageFetch.reply <- usageResult{}

	// First failure notifies.
	fetch := awaitGenCall(t, fake)
	fetch.reply <- genResult{err: errors.New("tick 1 failure")}

	sawError := false
	for range 2 {
		event := awaitEvent(t, svc)
		if event.Type == EventError && event.Channel == ChannelGenerations {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("expected a generations error event")
	}

	// Second consecutive failure for the same key must not notify again.
	svc.RefreshGenerations()
	fetch = awaitGenCall(t, fake)
	fetch.reply <- genResult{err: errors.New("tick 2 failure")}
	expectNoEvent(t, svc, 150*time.Millisecond)

	waitFor(t, func() bool { return svc.Generations().Err != nil }, "Err not set after repeat failure")

	// Recovery, then a fresh failure notifies once more.
	svc.RefreshGenerations()
	fetch = awaitGenCall(t, fake)
	fetch.reply <- genResult{records: genRecords(models.TierAll, 2)}
	if event := awaitEvent(t, svc); event.Type != EventUpdated {
		t.Fatalf("expected recovery update, got %+v", event)
	}
	if err := svc.Generations().Err; err != nil {
		t.Errorf("Err should clear on success, got %v", err)
	}

	svc.RefreshGenerations()
	fetch = awaitGenCall(t, fake)
	fetch.reply <- genResult{err: errors.New("tick 3 failure")}
	if event := awaitEvent(t, svc); event.Type != EventError {
		t.Fatalf("expected new error event after recovery, got %+v", event)
	}
}

func TestService_ResultsApplyInResolutionOrder(t *testing.T) {
	fake := newFakeClient()
	svc := New(fake, testConfig())
	defer func() { _ = svc.Close() }()

	first := awaitGenCall(t, fake)
	usage := awaitUsageCall(t, fake)
	usage.reply <- usageResult{}
	awaitEvent(t, svc)

	first.reply <- genResult{records: genRecords(models.TierAll, 1)}
	awaitEvent(t, svc)

	// Issue a second fetch and resolve it; its data wins because it
	// resolved last, regardless of issue timing.
	svc.RefreshGenerations()
	second := awaitGenCall(t, fake)
	second.reply <- genResult{records: genRecords(models.TierAll, 42)}
	awaitEvent(t, svc)

	gens := svc.Generations()
	if len(gens.Data) != 1 || gens.Data[0].Count != 42 {
		t.Errorf("latest resolution did not win: %+v", gens.Data)
	}
}

func TestService_CloseStopsPolling(t *testing.T) {
	fake := newFakeClient()
	cfg := testConfig()
	cfg.GenerationsInterval = 20 * time.Millisecond
	cfg.ModelsInterval = 20 * time.Millisecond
	svc := New(fake, cfg)

	// Drain and resolve the initial fetches.
	awaitGenCall(t, fake).reply <- genResult{}
	awaitUsageCall(t, fake).reply <- usageResult{}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close twice is fine.
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	// Drain anything already started, then expect silence.
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case call := <-fake.genCalls:
			call.reply <- genResult{}
		case call := <-fake.usageCalls:
			call.reply <- usageResult{}
		case <-deadline:
			return
		}
	}
}
