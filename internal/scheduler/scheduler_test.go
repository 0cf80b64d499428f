package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/i474232898/cep-lookup/internal/history"
	"github.com/i474232898/cep-lookup/internal/store"
)

type countingMaintainer struct {
	calls int
	err   error
}

func (m *countingMaintainer) Maintain(context.Context) error {
	m.calls++
	return m.err
}

func TestRun_MaintainsAndChecksHistory(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, history.DefaultKey, "corrupt"))

	core, logs := observer.New(zap.DebugLevel)
	m := &countingMaintainer{err: errors.New("locked")}
	s := New(time.Hour, m, history.NewStore(kv, ""), zap.New(core))

	s.run(ctx)

	assert.Equal(t, 1, m.calls)
	assert.Equal(t, 1, logs.FilterMessage("scheduler: store maintenance failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("scheduler: search history check failed").Len())
}

func TestRun_HealthyHistory(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, history.DefaultKey, `["01310000"]`))

	core, logs := observer.New(zap.DebugLevel)
	s := New(time.Hour, nil, history.NewStore(kv, ""), zap.New(core))
	s.run(ctx)

	entries := logs.FilterMessage("scheduler: search history ok").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["entries"])
}

func TestStartStop(t *testing.T) {
	s := New(time.Hour, nil, nil, nil)
	require.NoError(t, s.Start())
	s.Stop()

	disabled := New(0, nil, nil, nil)
	require.NoError(t, disabled.Start())
	disabled.Stop()
}
