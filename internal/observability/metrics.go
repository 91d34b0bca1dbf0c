package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// Metrics is the process-wide registry exposed in Prometheus text format.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	completions    *CounterVec
	entryCompleted *CounterVec
	rewardGate     *CounterVec
	distributions  *CounterVec
	entriesCreated *CounterVec
	batchRecompute *CounterVec
	recomputeTime  *HistogramVec
	sideEffects    *CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("asg_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"asg_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:    NewGauge("asg_api_inflight_requests", "In-flight API requests."),
		completions:    NewCounterVec("asg_task_completions_total", "Task completion requests by outcome.", []string{"outcome", "carry_over"}),
		entryCompleted: NewCounterVec("asg_ledger_entries_completed_total", "Ledger entries that reached Completed.", []string{"carry_over"}),
		rewardGate:     NewCounterVec("asg_reward_gate_total", "Reward gate evaluations by result.", []string{"result"}),
		distributions:  NewCounterVec("asg_batch_distributions_total", "Batch distributions by status.", []string{"status"}),
		entriesCreated: NewCounterVec("asg_ledger_entries_created_total", "Ledger entries created by source.", []string{"source"}),
		batchRecompute: NewCounterVec("asg_batch_recompute_total", "Batch aggregate recomputations by status.", []string{"status"}),
		recomputeTime: NewHistogramVec(
			"asg_batch_recompute_duration_seconds",
			"Batch aggregate recomputation latency.",
			[]string{},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		),
		sideEffects: NewCounterVec("asg_side_effect_failures_total", "Swallowed side-effect failures by kind.", []string{"kind"}),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.completions, m.entryCompleted, m.rewardGate,
		m.distributions, m.entriesCreated,
		m.batchRecompute, m.recomputeTime, m.sideEffects,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

// ObserveCompletion records a CompleteTask outcome: "recorded" or "duplicate".
func (m *Metrics) ObserveCompletion(outcome string, carryOver, entryCompleted bool) {
	if m == nil {
		return
	}
	co := boolLabel(carryOver)
	m.completions.Inc(outcome, co)
	if entryCompleted {
		m.entryCompleted.Inc(co)
	}
}

func (m *Metrics) ObserveRewardGate(result string) {
	if m != nil {
		m.rewardGate.Inc(result)
	}
}

func (m *Metrics) ObserveDistribution(status string, created int) {
	if m == nil {
		return
	}
	m.distributions.Inc(status)
	if created > 0 {
		m.entriesCreated.Add(float64(created), "distribution")
	}
}

func (m *Metrics) IncLazyEntry() {
	if m != nil {
		m.entriesCreated.Inc("lazy")
	}
}

func (m *Metrics) ObserveBatchRecompute(status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.batchRecompute.Inc(status)
	if status == "ok" {
		m.recomputeTime.Observe(dur.Seconds())
	}
}

func (m *Metrics) IncSideEffectFailure(kind string) {
	if m != nil {
		m.sideEffects.Inc(kind)
	}
}

func (m *Metrics) RewardGateCount(result string) float64 {
	if m == nil {
		return 0
	}
	return m.rewardGate.Value(result)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
