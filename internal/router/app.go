package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"medication-reminders/internal/adapters/auth/jwtauth"
	"medication-reminders/internal/adapters/auth/odin"
	"medication-reminders/internal/adapters/email/smtp"
	"medication-reminders/internal/adapters/push/fcm"
	mem "medication-reminders/internal/adapters/storage/memory"
	pg "medication-reminders/internal/adapters/storage/postgres"
	"medication-reminders/internal/adapters/storage/sqlite"
	"medication-reminders/internal/coordinator"
	"medication-reminders/internal/domain/medications"
	"medication-reminders/internal/domain/notifications"
	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/platform/config"
	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/platform/metrics"
	"medication-reminders/internal/ports/auth"
	"medication-reminders/internal/ports/contacts"
	"medication-reminders/internal/scheduler"

	"github.com/jonboulle/clockwork"
)

// App agrupa el handler HTTP y las piezas con ciclo de vida propio.
type App struct {
	Handler     http.Handler
	Coordinator *coordinator.Coordinator
	Scheduler   *scheduler.Scheduler
	Monitor     *scheduler.LifecycleMonitor
	Metrics     *metrics.Metrics

	log     logger.Logger
	closers []func() error
}

// Build arma storage, auth, transportes, scheduler y coordinador según cfg.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	return build(ctx, cfg, log, clockwork.NewRealClock())
}

func build(ctx context.Context, cfg *config.Config, log logger.Logger, clock clockwork.Clock) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("reminder tz: %w", err)
	}
	now := func() time.Time { return clock.Now().In(loc) }

	app := &App{Metrics: metrics.New(), log: log}

	medRepo, remRepo, err := app.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	verifier, resolver, registry, err := buildAuth(cfg, log)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	push, email := buildTransports(ctx, cfg, log)
	dispatcher := notifications.NewDispatcher(push, email, log, app.Metrics)

	remSvc := reminders.NewService(remRepo, log).WithClock(now)
	medSvc := medications.NewService(medRepo, nil, log).WithClock(now)

	// El scheduler necesita al coordinador como FireHandler y viceversa.
	var coord *coordinator.Coordinator
	sched := scheduler.New(scheduler.FireFunc(func(ctx context.Context, slot scheduler.Slot, firedAt time.Time) {
		coord.ReminderDue(ctx, slot, firedAt)
	}), scheduler.Options{
		Clock:    clock,
		Location: loc,
		Logger:   log,
		Metrics:  app.Metrics,
	})
	coord = coordinator.New(coordinator.Deps{
		Store:       remSvc,
		Timers:      sched,
		Medications: medSvc,
		Dispatcher:  dispatcher,
		Contacts:    resolver,
		Logger:      log,
		Metrics:     app.Metrics,
		Now:         now,
	})
	medSvc.SetHooks(coord)

	monitor := scheduler.NewLifecycleMonitor(coord, clock, scheduler.MonitorOptions{
		ResumeThreshold:   cfg.ResumeThreshold,
		FocusDebounce:     cfg.FocusDebounce,
		HeartbeatInterval: cfg.HeartbeatInterval,
	}, log)

	app.Coordinator = coord
	app.Scheduler = sched
	app.Monitor = monitor
	app.Handler = NewRouter(Options{
		AuthVerifier:     verifier,
		Logger:           log,
		Metrics:          app.Metrics,
		Medications:      medSvc,
		Reminders:        remSvc,
		MedicationOwners: medicationOwners{svc: medSvc},
		Coordinator:      coord,
		Monitor:          monitor,
		Dispatcher:       dispatcher,
		Push:             push,
		Email:            email,
		Contacts:         resolver,
		Registry:         registry,
	})
	return app, nil
}

// medicationOwners traduce el not-found de medications al de reminders.
type medicationOwners struct {
	svc *medications.Service
}

func (o medicationOwners) OwnerOf(ctx context.Context, medicationID string) (string, error) {
	owner, err := o.svc.OwnerOf(ctx, medicationID)
	if errors.Is(err, medications.ErrNotFound) {
		return "", reminders.ErrMedicationNotFound
	}
	return owner, err
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (medications.Repository, reminders.Repository, error) {
	switch {
	case cfg.DatabaseDSN != "":
		db, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := pg.Migrate(ctx, db); err != nil {
			_ = a.Close()
			return nil, nil, err
		}
		a.log.Info("storage: postgres", nil)
		return pg.NewMedicationsRepo(db), pg.NewRemindersRepo(db), nil

	case cfg.SQLitePath != "":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.log.Info("storage: sqlite", map[string]any{"path": cfg.SQLitePath})
		return sqlite.NewMedicationsRepo(db), sqlite.NewRemindersRepo(db), nil

	default:
		a.log.Info("storage: in-memory", nil)
		return mem.NewMedicationRepo(), mem.NewReminderRepo(), nil
	}
}

// buildAuth elige verificador y fuente de contactos. Sin JWT ni Odin queda el modo dev:
// header X-Debug-User-ID y contactos en memoria editables vía PUT /me/contact.
func buildAuth(cfg *config.Config, log logger.Logger) (auth.AuthVerifier, contacts.Resolver, contacts.Registry, error) {
	var (
		verifier auth.AuthVerifier
		resolver contacts.Resolver
		registry contacts.Registry
	)

	if cfg.OdinBaseURL != "" {
		client, err := odin.NewClient(odin.Config{BaseURL: cfg.OdinBaseURL, APIKey: cfg.OdinAPIKey})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("odin client: %w", err)
		}
		verifier = odin.NewVerifier(client)
		resolver = client
	} else {
		registry = mem.NewContactRegistry()
		resolver = registry
	}

	// JWT local tiene prioridad para verificar; los contactos siguen viniendo de Odin si está.
	if cfg.JWTSecret != "" {
		v, err := jwtauth.NewVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, nil, nil, err
		}
		verifier = v
	}

	if verifier == nil {
		log.Warn("auth: dev mode, X-Debug-User-ID accepted", nil)
	}
	return verifier, resolver, registry, nil
}

// buildTransports nunca falla: un transporte que no arranca deja su canal sin configurar.
func buildTransports(ctx context.Context, cfg *config.Config, log logger.Logger) (*notifications.PushChannel, *notifications.EmailChannel) {
	var pushSender notifications.PushSender
	if cfg.FCMCredentialsFile != "" {
		s, err := fcm.New(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			log.Warn("push transport disabled", map[string]any{"error": err})
		} else {
			pushSender = s
		}
	}

	var emailSender notifications.EmailSender
	if cfg.SMTPHost != "" {
		s, err := smtp.New(smtp.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if err != nil {
			log.Warn("email transport disabled", map[string]any{"error": err})
		} else {
			emailSender = s
		}
	}

	return notifications.NewPushChannel(pushSender), notifications.NewEmailChannel(emailSender)
}

// Start reconstruye los timers desde los medicamentos activos y arranca el heartbeat.
// Un resync fallido se loguea; el servicio arranca igual.
func (a *App) Start(ctx context.Context) {
	if err := a.Coordinator.ResyncAll(ctx, coordinator.ReasonStartup); err != nil {
		a.log.Error("startup resync failed", map[string]any{"error": err})
	}
	go a.Monitor.Run(ctx)
}

// Close detiene monitor y timers y cierra el storage.
func (a *App) Close() error {
	if a.Monitor != nil {
		a.Monitor.Close()
	}
	if a.Scheduler != nil {
		a.Scheduler.Close()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
