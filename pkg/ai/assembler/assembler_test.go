package assembler

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"nexora-campus-be/pkg/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKB struct {
	snippets []knowledge.Snippet
	err      error
	delay    time.Duration
}

func (f fakeKB) Search(ctx context.Context, _ string, _ int) ([]knowledge.Snippet, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.snippets, f.err
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
}

func TestAssembleFiltersAndOrders(t *testing.T) {
	colombo, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)

	kb := fakeKB{snippets: []knowledge.Snippet{
		{Source: "low.md", Score: 0.1},
		{Source: "mid.md", Score: 0.5},
		{Source: "top.md", Score: 0.9},
	}}
	a := New(kb, Config{Location: colombo, TopK: 5, Threshold: 0.3}).WithClock(fixedClock)

	qc := a.Assemble(context.Background(), "nexora datathon", "s1", "")
	assert.False(t, qc.Degraded)
	require.Len(t, qc.Snippets(), 2)
	assert.Equal(t, "top.md", qc.Snippets()[0].Source)
	assert.Equal(t, "mid.md", qc.Snippets()[1].Source)
	assert.Equal(t, "Asia/Colombo", qc.CurrentTime.Location().String())
	assert.Equal(t, 15, qc.CurrentTime.Hour())

	// Callers cannot reorder the frozen snippets.
	s := qc.Snippets()
	s[0], s[1] = s[1], s[0]
	assert.Equal(t, "top.md", qc.Snippets()[0].Source)
}

func TestAssembleDegraded(t *testing.T) {
	tests := []struct {
		name string
		kb   knowledge.Searcher
	}{
		{name: "timeout", kb: fakeKB{delay: time.Second}},
		{name: "unavailable", kb: fakeKB{err: knowledge.ErrUnavailable}},
		{name: "failure", kb: fakeKB{err: errors.New("index corrupt")}},
		{name: "no kb", kb: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.kb, Config{Timeout: 20 * time.Millisecond}).WithClock(fixedClock)
			qc := a.Assemble(context.Background(), "hi", "s", "")
			assert.True(t, qc.Degraded)
			assert.False(t, qc.HasSnippets())
			assert.False(t, qc.CurrentTime.IsZero())
		})
	}
}

func TestAssembleEmptyIsNotDegraded(t *testing.T) {
	a := New(fakeKB{snippets: []knowledge.Snippet{{Source: "weak.md", Score: 0.05}}}, Config{Threshold: 0.3})
	qc := a.Assemble(context.Background(), "hi", "s", "")
	assert.False(t, qc.Degraded)
	assert.False(t, qc.HasSnippets())
}

func TestDateTime(t *testing.T) {
	dt := NewDateTime(fixedClock())
	assert.Equal(t, "2025-06-14", dt.Date)
	assert.Equal(t, "Saturday", dt.DayOfWeek)
	assert.True(t, dt.IsWeekend)
	assert.Equal(t, "Saturday, June 14, 2025 at 09:30 AM", dt.FormattedReadable)
	assert.Equal(t, 24, dt.WeekNumber)
}
