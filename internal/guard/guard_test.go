package guard

import (
	"bytes"
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/onepass/internal/logger"
)

type exitRecorder struct {
	calls atomic.Int32
	code  atomic.Int32
}

func (r *exitRecorder) exit(code int) {
	r.code.Store(int32(code))
	r.calls.Add(1)
}

func TestStateFlags(t *testing.T) {
	s := NewState()
	assert.False(t, s.InputInFlight())
	assert.False(t, s.OperationInFlight())

	s.BeginInput()
	assert.True(t, s.InputInFlight())
	s.EndInput()
	assert.False(t, s.InputInFlight())

	s.BeginOperation()
	assert.True(t, s.OperationInFlight())
	s.EndOperation()
	assert.False(t, s.OperationInFlight())
}

func TestHandle_InputInFlightExitsImmediately(t *testing.T) {
	s := NewState()
	s.BeginInput()
	s.BeginOperation()
	rec := &exitRecorder{}
	h := NewHandler(s, WithExit(rec.exit), WithInterval(time.Hour))

	start := time.Now()
	outcome := h.Handle(syscall.SIGINT)

	assert.Equal(t, OutcomeImmediate, outcome)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Equal(t, int32(ExitInterrupted), rec.code.Load())
}

func TestHandle_InputInFlightRestoresTerminal(t *testing.T) {
	s := NewState()
	s.BeginInput()
	var restored atomic.Int32
	s.SetRestore(func() { restored.Add(1) })

	rec := &exitRecorder{}
	h := NewHandler(s, WithExit(rec.exit))

	assert.Equal(t, OutcomeImmediate, h.Handle(syscall.SIGINT))
	assert.Equal(t, int32(1), restored.Load())
	assert.Equal(t, int32(1), rec.calls.Load())

	// restore runs at most once
	s.Restore()
	assert.Equal(t, int32(1), restored.Load())
}

func TestState_RestoreCleared(t *testing.T) {
	s := NewState()
	called := false
	s.SetRestore(func() { called = true })
	s.SetRestore(nil)
	s.Restore()
	assert.False(t, called)
}

func TestHandle_IdleExitsWithoutWaiting(t *testing.T) {
	rec := &exitRecorder{}
	h := NewHandler(NewState(), WithExit(rec.exit), WithInterval(time.Hour))

	assert.Equal(t, OutcomeCleared, h.Handle(syscall.SIGTERM))
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestHandle_WaitsForOperationToClear(t *testing.T) {
	s := NewState()
	s.BeginOperation()
	rec := &exitRecorder{}
	h := NewHandler(s, WithExit(rec.exit), WithAttempts(50), WithInterval(10*time.Millisecond))

	go func() {
		time.Sleep(30 * time.Millisecond)
		s.EndOperation()
	}()

	assert.Equal(t, OutcomeCleared, h.Handle(syscall.SIGINT))
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestHandle_TimesOutWithWarning(t *testing.T) {
	s := NewState()
	s.BeginOperation()
	rec := &exitRecorder{}

	var buf bytes.Buffer
	log := logger.NewLogger("test", &buf, zerolog.DebugLevel)
	h := NewHandler(s,
		WithExit(rec.exit),
		WithAttempts(3),
		WithInterval(5*time.Millisecond),
		WithLogger(log),
		WithRecoveryHint("onepass recover -l x"),
	)

	start := time.Now()
	outcome := h.Handle(syscall.SIGINT)

	assert.Equal(t, OutcomeTimedOut, outcome)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "onepass recover -l x")
}

func TestListen_CancelsContextAndHandles(t *testing.T) {
	s := NewState()
	exited := make(chan int, 1)
	h := NewHandler(s, WithExit(func(code int) { exited <- code }))

	ctx, stop := h.Listen(context.Background(), syscall.SIGUSR1)
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case code := <-exited:
		assert.Equal(t, ExitInterrupted, code)
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not run")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestListen_SecondSignalExitsWithoutWaiting(t *testing.T) {
	s := NewState()
	s.BeginOperation()
	var restored atomic.Int32
	s.SetRestore(func() { restored.Add(1) })

	exited := make(chan int, 2)
	h := NewHandler(s,
		WithExit(func(code int) { exited <- code }),
		WithAttempts(1000),
		WithInterval(10*time.Millisecond),
	)

	ctx, stop := h.Listen(context.Background(), syscall.SIGUSR1)
	defer stop()
	defer s.EndOperation()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("first signal not delivered")
	}

	// the first signal is still waiting on the operation
	select {
	case <-exited:
		t.Fatal("exited while the operation was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case code := <-exited:
		assert.Equal(t, ExitInterrupted, code)
	case <-time.After(5 * time.Second):
		t.Fatal("second signal was ignored")
	}
	assert.True(t, s.OperationInFlight())
	assert.Equal(t, int32(1), restored.Load())
}

func TestListen_StopReleasesContext(t *testing.T) {
	h := NewHandler(NewState(), WithExit(func(int) { t.Error("exit must not be called") }))

	ctx, stop := h.Listen(context.Background(), syscall.SIGUSR2)
	stop()
	stop()

	assert.Error(t, ctx.Err())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "immediate", OutcomeImmediate.String())
	assert.Equal(t, "cleared", OutcomeCleared.String())
	assert.Equal(t, "timed out", OutcomeTimedOut.String())
}
