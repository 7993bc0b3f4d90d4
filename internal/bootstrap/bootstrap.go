package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bzrsoft/bzr-portal/internal/config"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
	"github.com/bzrsoft/bzr-portal/internal/core/usecase"
	"github.com/bzrsoft/bzr-portal/internal/infrastructure/mailer/relay"
	"github.com/bzrsoft/bzr-portal/internal/infrastructure/queue/nats"
	"github.com/bzrsoft/bzr-portal/internal/infrastructure/repository/postgres"
	"github.com/bzrsoft/bzr-portal/internal/infrastructure/resilience"
	"github.com/bzrsoft/bzr-portal/internal/observability/logging"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Queue       ports.SweepQueue
	Obligations ports.ObligationRepository
	SyncUC      ports.ObligationSyncer
	NotifyUC    ports.DeadlineNotifier
	Reader      ports.ObligationReader
	Assessments ports.AssessmentService
	Injuries    ports.InjuryService

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	log := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(log)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	obligations := postgres.NewObligationRepository(db)
	sources := postgres.NewSourceRecordRepository(db)
	directory := postgres.NewCompanyRepository(db)
	assessmentRepo := postgres.NewAssessmentRepository(db)
	injuryRepo := postgres.NewInjuryReportRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Executor: executor,
		Logger:   log,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sweep queue: %w", err)
	}

	mailer := relay.New(cfg.MailRelayURL, cfg.MailFrom).WithExecutor(executor)

	syncUC := usecase.NewSyncObligationsUseCase(sources, obligations, log)
	notifyUC := usecase.NewNotifyDeadlinesUseCase(obligations, directory, mailer, log).
		WithHorizon(cfg.NotifyHorizonDays)
	reader := usecase.NewObligationQueries(obligations)
	assessments := usecase.NewAssessmentsUseCase(assessmentRepo)
	injuries := usecase.NewInjuriesUseCase(injuryRepo)

	return &App{
		Config: cfg,
		Log:    log,

		Queue:       queue,
		Obligations: obligations,
		SyncUC:      syncUC,
		NotifyUC:    notifyUC,
		Reader:      reader,
		Assessments: assessments,
		Injuries:    injuries,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
