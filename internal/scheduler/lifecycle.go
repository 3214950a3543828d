package scheduler

import (
	"context"
	"sync"
	"time"

	"medication-reminders/internal/platform/logger"

	"github.com/jonboulle/clockwork"
)

const (
	ReasonResume    = "resume"
	ReasonFocus     = "focus"
	ReasonClockJump = "clock_jump"
)

// Resyncer reconstruye todos los timers desde el estado guardado.
type Resyncer interface {
	ResyncAll(ctx context.Context, reason string) error
}

type MonitorOptions struct {
	// Tiempo mínimo oculto para que volver a primer plano fuerce un resync.
	ResumeThreshold time.Duration
	FocusDebounce   time.Duration
	// Periodo del heartbeat que detecta suspensiones del proceso.
	HeartbeatInterval time.Duration
}

func DefaultMonitorOptions() MonitorOptions {
	return MonitorOptions{
		ResumeThreshold:   2 * time.Minute,
		FocusDebounce:     time.Second,
		HeartbeatInterval: 30 * time.Second,
	}
}

// LifecycleMonitor dispara resyncs completos ante señales de que los timers pudieron quedar
// desfasados: vuelta a primer plano tras un rato oculto, foco, o un salto del reloj de pared.
type LifecycleMonitor struct {
	clock  clockwork.Clock
	resync Resyncer
	opts   MonitorOptions
	log    logger.Logger

	mu          sync.Mutex
	hiddenAt    map[string]time.Time // por cliente
	focusCancel context.CancelFunc
	lastBeat    time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

func NewLifecycleMonitor(resync Resyncer, clock clockwork.Clock, opts MonitorOptions, log logger.Logger) *LifecycleMonitor {
	def := DefaultMonitorOptions()
	if opts.ResumeThreshold <= 0 {
		opts.ResumeThreshold = def.ResumeThreshold
	}
	if opts.FocusDebounce <= 0 {
		opts.FocusDebounce = def.FocusDebounce
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = def.HeartbeatInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &LifecycleMonitor{
		clock:      clock,
		resync:     resync,
		opts:       opts,
		log:        log,
		hiddenAt:   make(map[string]time.Time),
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

// Hidden registra el paso a segundo plano de client. Llamadas repetidas conservan el primer instante.
func (m *LifecycleMonitor) Hidden(client string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hiddenAt[client]; !ok {
		m.hiddenAt[client] = m.clock.Now()
	}
}

// Visible registra la vuelta a primer plano de client. Devuelve true si ese cliente estuvo
// oculto al menos ResumeThreshold y se hizo un resync.
func (m *LifecycleMonitor) Visible(ctx context.Context, client string) bool {
	m.mu.Lock()
	hiddenAt, ok := m.hiddenAt[client]
	delete(m.hiddenAt, client)
	m.mu.Unlock()

	if !ok {
		return false
	}
	away := m.clock.Since(hiddenAt)
	if away < m.opts.ResumeThreshold {
		return false
	}

	m.log.Info("resuming after background", map[string]any{"client": client, "away": away.String()})
	m.run(ctx, ReasonResume)
	return true
}

// Focus agenda un resync tras FocusDebounce. Un foco nuevo reinicia la espera.
func (m *LifecycleMonitor) Focus() {
	m.mu.Lock()
	if m.focusCancel != nil {
		m.focusCancel()
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.focusCancel = cancel
	m.mu.Unlock()

	timer := m.clock.NewTimer(m.opts.FocusDebounce)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
		m.run(m.baseCtx, ReasonFocus)
	}()
}

// Run late cada HeartbeatInterval hasta que ctx se cancele. Si entre dos latidos pasó mucho
// más tiempo de pared que el esperado (host dormido, proceso congelado) resincroniza.
func (m *LifecycleMonitor) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.opts.HeartbeatInterval)
	defer ticker.Stop()

	m.mu.Lock()
	m.lastBeat = m.clock.Now()
	m.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.beat(ctx, m.clock.Now())
		}
	}
}

// beat devuelve true si detectó un salto y resincronizó.
func (m *LifecycleMonitor) beat(ctx context.Context, now time.Time) bool {
	m.mu.Lock()
	last := m.lastBeat
	m.lastBeat = now
	m.mu.Unlock()

	if last.IsZero() {
		return false
	}
	// Round(0) descarta la lectura monotónica: interesa el reloj de pared.
	gap := now.Round(0).Sub(last.Round(0))
	if gap <= m.opts.HeartbeatInterval+m.opts.ResumeThreshold {
		return false
	}

	m.log.Warn("wall clock jump detected", map[string]any{"gap": gap.String()})
	m.run(ctx, ReasonClockJump)
	return true
}

// Close cancela un foco pendiente y espera a que termine.
func (m *LifecycleMonitor) Close() {
	m.baseCancel()
	m.wg.Wait()
}

func (m *LifecycleMonitor) run(ctx context.Context, reason string) {
	if err := m.resync.ResyncAll(ctx, reason); err != nil {
		m.log.Error("resync failed", map[string]any{"reason": reason, "error": err})
	}
}
