// Package hook installs the process-exit hook that tears the grid down when
// the supervising process is interrupted.
//
// Every installed hook in the process shares one signal subscription. When a
// watched signal arrives, the callbacks of all hooks watching it run first
// and the signal is re-raised once afterwards, so no supervisor is skipped
// because another one let the process die.
package hook

import (
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
)

// DefaultSignals are the termination signals the hook intercepts.
var DefaultSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// Callback runs when a watched signal arrives. It must not block for long:
// the process terminates once every callback has returned.
type Callback func(sig os.Signal)

// Option configures an ExitHook.
type Option func(*ExitHook)

// WithSignals replaces DefaultSignals.
func WithSignals(sigs ...os.Signal) Option {
	return func(h *ExitHook) {
		h.signals = sigs
	}
}

// WithReraise replaces the action taken after the callbacks. The default
// restores the default handler and sends the signal to the own process.
// When several hooks fire together, the most recently installed one's
// action runs, once.
func WithReraise(fn func(os.Signal)) Option {
	return func(h *ExitHook) {
		h.reraise = fn
	}
}

// ExitHook runs a callback once when the process receives a termination
// signal, then lets the signal take its default effect.
type ExitHook struct {
	log      *slog.Logger
	callback Callback
	signals  []os.Signal
	reraise  func(os.Signal)
	reg      *registry

	fireOnce sync.Once
}

// New creates an exit hook. Call Install to start watching.
func New(log *slog.Logger, callback Callback, opts ...Option) *ExitHook {
	h := &ExitHook{
		log:      log.With("component", "exit_hook"),
		callback: callback,
		signals:  DefaultSignals,
		reraise:  reraise,
		reg:      global,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Install starts watching for the configured signals. It is idempotent.
func (h *ExitHook) Install() {
	if h.reg.add(h) {
		h.log.Debug("Exit hook installed", "signals", h.signals)
	}
}

// Uninstall stops watching. Once no hook watches a signal it regains its
// previous behavior.
func (h *ExitHook) Uninstall() {
	if h.reg.remove(h) {
		h.log.Debug("Exit hook uninstalled")
	}
}

// Fire runs this hook alone as if sig had been delivered: the callback, then
// the reraise action. Only the first call has any effect.
func (h *ExitHook) Fire(sig os.Signal) {
	if h.run(sig) {
		h.Uninstall()
		h.reraise(sig)
	}
}

// run invokes the callback once and reports whether this call did so.
func (h *ExitHook) run(sig os.Signal) bool {
	ran := false

	h.fireOnce.Do(func() {
		ran = true

		h.log.Info("Termination signal received", "signal", sig)

		if h.callback != nil {
			h.callback(sig)
		}
	})

	return ran
}

func (h *ExitHook) watches(sig os.Signal) bool {
	return slices.Contains(h.signals, sig)
}

// global is the registry every hook joins unless a test substitutes one.
var global = newRegistry()

// registry fans one signal subscription out to every installed hook.
type registry struct {
	mu    sync.Mutex
	hooks []*ExitHook // install order
	sigCh chan os.Signal
}

func newRegistry() *registry {
	return &registry{}
}

func (r *registry) add(h *ExitHook) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.hooks, h) {
		return false
	}

	r.hooks = append(r.hooks, h)
	r.resubscribeLocked()

	return true
}

func (r *registry) remove(h *ExitHook) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.hooks, h)
	if i < 0 {
		return false
	}

	r.hooks = slices.Delete(r.hooks, i, i+1)
	r.resubscribeLocked()

	return true
}

// resubscribeLocked points the subscription at the signals still watched.
// The new channel is registered before the old one is stopped, so a watched
// signal is never left to its default action in between.
// Caller must hold r.mu.
func (r *registry) resubscribeLocked() {
	old := r.sigCh
	r.sigCh = nil

	var sigs []os.Signal

	for _, h := range r.hooks {
		for _, sig := range h.signals {
			if !slices.Contains(sigs, sig) {
				sigs = append(sigs, sig)
			}
		}
	}

	if len(sigs) > 0 {
		r.sigCh = make(chan os.Signal, len(sigs))
		signal.Notify(r.sigCh, sigs...)

		go r.loop(r.sigCh)
	}

	if old != nil {
		signal.Stop(old)
		close(old)
	}
}

func (r *registry) loop(sigCh <-chan os.Signal) {
	for sig := range sigCh {
		r.dispatch(sig)
	}
}

// dispatch runs the callback of every hook watching sig, in install order,
// then removes those hooks and re-raises sig once.
func (r *registry) dispatch(sig os.Signal) {
	r.mu.Lock()

	var fired []*ExitHook

	for _, h := range r.hooks {
		if h.watches(sig) {
			fired = append(fired, h)
		}
	}
	r.mu.Unlock()

	if len(fired) == 0 {
		return
	}

	ran := false

	for _, h := range fired {
		if h.run(sig) {
			ran = true
		}
	}

	r.mu.Lock()
	r.hooks = slices.DeleteFunc(r.hooks, func(h *ExitHook) bool { return slices.Contains(fired, h) })
	r.resubscribeLocked()
	r.mu.Unlock()

	if ran {
		fired[len(fired)-1].reraise(sig)
	}
}

// reraise restores the default disposition and delivers sig again so the
// process ends the way it would have without the hook.
func reraise(sig os.Signal) {
	signal.Reset(sig)

	proc, err := os.FindProcess(os.Getpid())
	if err == nil {
		err = proc.Signal(sig)
	}

	if err != nil {
		os.Exit(1)
	}
}
