package campus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticTool(name ToolName, domain Domain, kind Kind, payload Payload, err error) Descriptor {
	return NewDescriptor(name, domain, kind, string(name), func(context.Context, Args) (Payload, error) {
		return payload, err
	})
}

func TestRegistrySelect(t *testing.T) {
	reg, err := NewRegistry(
		staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, Events{}, nil),
		staticTool(ToolSearchEvents, DomainEvents, KindSearch, Events{}, nil),
		staticTool(ToolFetchExamResults, DomainExam, KindFetchAll, ExamResults{}, nil),
	)
	require.NoError(t, err)

	d, ok := reg.Select(DomainEvents, KindSearch)
	require.True(t, ok)
	assert.Equal(t, ToolSearchEvents, d.Name)

	// No search variant registered for exams: falls back to fetch-all.
	d, ok = reg.Select(DomainExam, KindSearch)
	require.True(t, ok)
	assert.Equal(t, ToolFetchExamResults, d.Name)

	_, ok = reg.Select(DomainBus, KindFetchAll)
	assert.False(t, ok)
	assert.False(t, reg.HasDomain(DomainBus))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, Events{}, nil),
		staticTool(ToolFetchEvents, DomainBus, KindFetchAll, BusRoutes{}, nil),
	)
	assert.Error(t, err)

	_, err = NewRegistry(
		staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, Events{}, nil),
		staticTool("other_events", DomainEvents, KindFetchAll, Events{}, nil),
	)
	assert.Error(t, err)
}

func TestRegistryReplaceIsAtomic(t *testing.T) {
	reg, err := NewRegistry(staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, Events{}, nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, ok := reg.Select(DomainEvents, KindFetchAll)
				assert.True(t, ok)
			}
		}()
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, reg.Replace(
			staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, Events{}, nil),
			staticTool(ToolFetchMenu, DomainCafeteria, KindFetchAll, Menu{}, nil),
		))
	}
	wg.Wait()

	// A failed replace leaves the previous mapping installed.
	assert.Error(t, reg.Replace(staticTool("", DomainBus, KindFetchAll, nil, nil)))
	assert.True(t, reg.HasDomain(DomainCafeteria))
}

func TestDescriptorInvoke(t *testing.T) {
	tests := []struct {
		name        string
		desc        Descriptor
		args        Args
		wantSuccess bool
		wantErr     string
	}{
		{
			name:        "success",
			desc:        staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, Events{{Name: "Hackathon"}}, nil),
			wantSuccess: true,
		},
		{
			name:    "error is captured",
			desc:    staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, nil, errors.New("boom")),
			wantErr: "boom",
		},
		{
			name:    "nil payload is malformed",
			desc:    staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, nil, nil),
			wantErr: ErrMalformedRecord.Error(),
		},
		{
			name:    "personal domain without user",
			desc:    staticTool(ToolFetchExamResults, DomainExam, KindFetchAll, ExamResults{}, nil),
			wantErr: ErrUserIDRequired.Error(),
		},
		{
			name:    "unimplemented tool",
			desc:    NewDescriptor("fetch_schedule", DomainEvents, KindFetchAll, "placeholder", nil),
			wantErr: ErrNotImplemented.Error(),
		},
		{
			name: "panic is recovered",
			desc: NewDescriptor(ToolFetchMenu, DomainCafeteria, KindFetchAll, "", func(context.Context, Args) (Payload, error) {
				panic("bad")
			}),
			wantErr: "tool fetch_cafeteria_menu panicked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.desc.Invoke(context.Background(), tt.args)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.Equal(t, tt.desc.Name, res.ToolName)
		})
	}
}

func TestRegistryInvokeCounts(t *testing.T) {
	reg, err := NewRegistry(staticTool(ToolFetchEvents, DomainEvents, KindFetchAll, Events{}, nil))
	require.NoError(t, err)

	res := reg.Invoke(context.Background(), "missing", Args{})
	assert.False(t, res.Success)
	assert.Equal(t, int64(0), reg.Invocations())

	res = reg.Invoke(context.Background(), ToolFetchEvents, Args{})
	assert.True(t, res.Success)
	assert.Equal(t, int64(1), reg.Invocations())
}
