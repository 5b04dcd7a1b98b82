// Package collector records finished episodes and writes them to an
// Excel workbook.
package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/opd-ai/go-maritime/pkg/event"
)

// Sheet names in the report workbook.
const (
	EpisodesSheet = "Episodes"
	SummarySheet  = "Summary"
)

// EpisodeSummary is one finished episode.
type EpisodeSummary struct {
	EpisodeID    string
	Outcome      string
	Ticks        int
	Return       float64
	GoalDistance float64
	LayoutHash   uint64
	EndedAt      time.Time
}

// Summary aggregates recorded episodes.
type Summary struct {
	Episodes    int
	Successes   int
	Collisions  int
	TimeLimits  int
	SuccessRate float64
	MeanReturn  float64
	MeanTicks   float64
}

// EpisodeRecorder collects EpisodeEnded events.
type EpisodeRecorder struct {
	mu       sync.Mutex
	episodes []EpisodeSummary
	bus      *event.Bus
	sub      event.SubscriptionID
	now      func() time.Time
}

// NewEpisodeRecorder subscribes to EpisodeEnded on bus. A nil bus gives a
// recorder fed only through Record.
func NewEpisodeRecorder(bus *event.Bus) *EpisodeRecorder {
	r := &EpisodeRecorder{bus: bus, now: time.Now}
	if bus != nil {
		r.sub = bus.Subscribe(event.EpisodeEnded, r.handle)
	}
	return r
}

func (r *EpisodeRecorder) handle(e event.Event) {
	ended, ok := e.(*event.EpisodeEndedEvent)
	if !ok {
		return
	}
	r.Record(EpisodeSummary{
		EpisodeID:    ended.EpisodeID,
		Outcome:      ended.Outcome,
		Ticks:        ended.Ticks,
		Return:       ended.Return,
		GoalDistance: ended.GoalDistance,
		LayoutHash:   ended.LayoutHash,
	})
}

// Record appends s, stamping EndedAt when it is zero.
func (r *EpisodeRecorder) Record(s EpisodeSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.EndedAt.IsZero() {
		s.EndedAt = r.now()
	}
	r.episodes = append(r.episodes, s)
}

// Stop unsubscribes from the bus. Recorded episodes are kept.
func (r *EpisodeRecorder) Stop() {
	if r.bus != nil {
		r.bus.Unsubscribe(r.sub)
		r.bus = nil
	}
}

// Episodes returns a copy of the recorded episodes in arrival order.
func (r *EpisodeRecorder) Episodes() []EpisodeSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EpisodeSummary(nil), r.episodes...)
}

// Summary aggregates the recorded episodes.
func (r *EpisodeRecorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{Episodes: len(r.episodes)}
	if s.Episodes == 0 {
		return s
	}
	var totalReturn float64
	var totalTicks int
	for _, ep := range r.episodes {
		switch ep.Outcome {
		case event.OutcomeSuccess:
			s.Successes++
		case event.OutcomeCollision:
			s.Collisions++
		case event.OutcomeTimeLimit:
			s.TimeLimits++
		}
		totalReturn += ep.Return
		totalTicks += ep.Ticks
	}
	n := float64(s.Episodes)
	s.SuccessRate = float64(s.Successes) / n
	s.MeanReturn = totalReturn / n
	s.MeanTicks = float64(totalTicks) / n
	return s
}

// DefaultReportPath names a timestamped workbook under dir.
func DefaultReportPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("episodes_%s.xlsx", time.Now().Format("20060102_150405")))
}

// SaveReport writes an Episodes sheet with one row per episode and a
// Summary sheet, creating the parent directory if needed.
func (r *EpisodeRecorder) SaveReport(path string) error {
	episodes := r.Episodes()
	summary := r.Summary()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(EpisodesSheet)
	if err != nil {
		return fmt.Errorf("create %s sheet: %w", EpisodesSheet, err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", SummarySheet, err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	header := []interface{}{"Episode", "Outcome", "Ticks", "Return", "Goal Distance", "Layout Hash", "Ended At"}
	if err := f.SetSheetRow(EpisodesSheet, "A1", &header); err != nil {
		return err
	}
	for i, ep := range episodes {
		row := []interface{}{
			ep.EpisodeID,
			ep.Outcome,
			ep.Ticks,
			ep.Return,
			ep.GoalDistance,
			fmt.Sprintf("%016x", ep.LayoutHash),
			ep.EndedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(EpisodesSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	rows := [][]interface{}{
		{"Episodes", summary.Episodes},
		{"Successes", summary.Successes},
		{"Collisions", summary.Collisions},
		{"Time Limits", summary.TimeLimits},
		{"Success Rate", summary.SuccessRate},
		{"Mean Return", summary.MeanReturn},
		{"Mean Ticks", summary.MeanTicks},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
