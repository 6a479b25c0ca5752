// Package guard keeps an interrupt from cutting a vault rewrite short.
//
// State is the shared record of what the process is doing: blocked on
// operator input, or inside a vault operation. The command path raises and
// lowers the flags; the signal Handler only reads them. When a signal
// arrives during input the process exits at once, since nothing can be
// half written. Otherwise the handler waits a bounded time for the
// operation to finish, and if it never does, tells the operator to run the
// recovery command before exiting anyway.
//
// This is best effort. A kill that lands between truncating the vault and
// finishing the write still leaves a short file; the journal covers that case.
package guard

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/illarion/onepass/internal/logger"
)

const (
	DefaultAttempts = 5
	DefaultInterval = time.Second

	// ExitInterrupted is the conventional status for a SIGINT exit
	ExitInterrupted = 130
)

// State holds the two process-wide flags read by the signal handler
type State struct {
	input     atomic.Bool
	operation atomic.Bool

	mu      sync.Mutex
	restore func()
}

// NewState returns an idle state
func NewState() *State {
	return &State{}
}

// BeginInput marks that the process is blocked waiting on the operator
func (s *State) BeginInput() { s.input.Store(true) }

// EndInput clears the input flag
func (s *State) EndInput() { s.input.Store(false) }

// InputInFlight reports whether the process is waiting on the operator
func (s *State) InputInFlight() bool { return s.input.Load() }

// BeginOperation marks that a vault operation may be touching the file
func (s *State) BeginOperation() { s.operation.Store(true) }

// EndOperation returns the state to idle after an operation completes or fails
func (s *State) EndOperation() { s.operation.Store(false) }

// OperationInFlight reports whether a vault operation is running
func (s *State) OperationInFlight() bool { return s.operation.Load() }

// SetRestore registers fn to put the terminal back before an immediate exit.
// Pass nil once the terminal is back to normal.
func (s *State) SetRestore(fn func()) {
	s.mu.Lock()
	s.restore = fn
	s.mu.Unlock()
}

// Restore runs and clears the registered terminal restore, if any
func (s *State) Restore() {
	s.mu.Lock()
	fn := s.restore
	s.restore = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Outcome describes how the handler ended the process
type Outcome int

const (
	// OutcomeImmediate: interrupted while waiting on input
	OutcomeImmediate Outcome = iota
	// OutcomeCleared: the running operation finished within the wait
	OutcomeCleared
	// OutcomeTimedOut: the operation was still running after the wait
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeImmediate:
		return "immediate"
	case OutcomeCleared:
		return "cleared"
	case OutcomeTimedOut:
		return "timed out"
	}
	return "unknown"
}

// Handler applies the bounded-wait policy when a termination signal arrives
type Handler struct {
	state    *State
	attempts int
	interval time.Duration
	log      *logger.Logger
	exit     func(code int)
	hint     string

	once sync.Once
}

// Option configures a Handler
type Option func(*Handler)

// WithAttempts sets how many intervals to wait for an operation to finish
func WithAttempts(n int) Option {
	return func(h *Handler) { h.attempts = n }
}

// WithInterval sets the polling interval
func WithInterval(d time.Duration) Option {
	return func(h *Handler) { h.interval = d }
}

// WithLogger sets the logger used for the timeout warning
func WithLogger(l *logger.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithExit replaces os.Exit
func WithExit(exit func(code int)) Option {
	return func(h *Handler) { h.exit = exit }
}

// WithRecoveryHint sets the command the timeout warning tells the operator to run
func WithRecoveryHint(hint string) Option {
	return func(h *Handler) { h.hint = hint }
}

// NewHandler creates a handler reading the given state
func NewHandler(state *State, opts ...Option) *Handler {
	h := &Handler{
		state:    state,
		attempts: DefaultAttempts,
		interval: DefaultInterval,
		log:      logger.Nop(),
		exit:     os.Exit,
		hint:     "onepass recover",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs the interrupt policy for sig and then exits the process
func (h *Handler) Handle(sig os.Signal) Outcome {
	log := h.log.With().Str("signal", sig.String()).Logger()

	if h.state.InputInFlight() {
		log.Debug().Msg("interrupted during input")
		h.state.Restore()
		h.exit(ExitInterrupted)
		return OutcomeImmediate
	}

	for i := 0; i < h.attempts; i++ {
		if !h.state.OperationInFlight() {
			log.Debug().Int("waited", i).Msg("no vault operation in flight")
			h.exit(ExitInterrupted)
			return OutcomeCleared
		}
		log.Info().Msg("waiting for vault operation to finish")
		time.Sleep(h.interval)
	}

	if !h.state.OperationInFlight() {
		h.exit(ExitInterrupted)
		return OutcomeCleared
	}

	log.Warn().
		Dur("waited", time.Duration(h.attempts)*h.interval).
		Str("recover", h.hint).
		Msgf("vault operation did not finish; the vault file may be incomplete, run '%s' to restore it", h.hint)
	h.exit(ExitInterrupted)
	return OutcomeTimedOut
}

// Listen installs the handler for SIGINT and SIGTERM (or the given signals).
// The returned context is cancelled on the first signal, before the policy runs,
// so operations that have not started writing can bail out early.
// A second signal while the policy is still waiting exits at once.
func (h *Handler) Listen(ctx context.Context, signals ...os.Signal) (context.Context, func()) {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			cancel()
			go h.forceOnRepeat(ch, done)
			h.once.Do(func() { h.Handle(sig) })
		case <-done:
		}
	}()

	stop := func() {
		signal.Stop(ch)
		select {
		case <-done:
		default:
			close(done)
		}
		cancel()
	}
	return ctx, stop
}

func (h *Handler) forceOnRepeat(ch <-chan os.Signal, done <-chan struct{}) {
	select {
	case sig := <-ch:
		h.log.Warn().Str("signal", sig.String()).Msg("interrupted again, exiting without waiting")
		h.state.Restore()
		h.exit(ExitInterrupted)
	case <-done:
	}
}
