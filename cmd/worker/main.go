package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bzrsoft/bzr-portal/internal/bootstrap"
	"github.com/bzrsoft/bzr-portal/internal/config"
	"github.com/bzrsoft/bzr-portal/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, serviceName, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	sweepMetrics := metrics.NewSweepMetrics(serviceName)
	go serveMetrics(app, cfg.WorkerMetricsPort, sweepMetrics)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.SweepCron, func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		fullSweep(runCtx, app, sweepMetrics)
	})
	if err != nil {
		log.Fatalf("invalid sweep schedule %q: %v", cfg.SweepCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app.Log.Info("worker_started", "schedule", cfg.SweepCron, "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeSweepRequested(ctx, func(handlerCtx context.Context, companyID string) error {
		sweepCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()
		return companySweep(sweepCtx, app, sweepMetrics, companyID)
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

// fullSweep refreshes obligations for every onboarded company, then runs
// the notifier over the whole book.
func fullSweep(ctx context.Context, app *bootstrap.App, sweepMetrics *metrics.SweepMetrics) {
	start := time.Now()
	sweepMetrics.StartSweep()

	syncResult, syncErr := app.SyncUC.SyncAll(ctx)
	sweepMetrics.RecordSyncOutcome(serviceName, syncResult.Created, syncResult.Expired)
	if syncErr != nil {
		app.Log.Error("scheduled_sync_failed", "error", syncErr)
	}

	notifyResult, notifyErr := app.NotifyUC.Run(ctx, time.Now())
	sweepMetrics.RecordNotifications(serviceName, notifyResult.Sent, notifyResult.Failed)
	if notifyErr != nil {
		app.Log.Error("scheduled_notify_failed", "error", notifyErr)
	}

	err := syncErr
	if err == nil {
		err = notifyErr
	}
	sweepMetrics.FinishSweep(serviceName, "schedule", time.Since(start), err)

	app.Log.Info("scheduled_sweep_done",
		"created", syncResult.Created,
		"skipped", syncResult.Skipped,
		"expired", syncResult.Expired,
		"sent", notifyResult.Sent,
		"failed", notifyResult.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// companySweep handles one on-demand request from the API: resync the
// company, then run the notifier so fresh deadlines get their reminders
// without waiting for the next schedule tick.
func companySweep(ctx context.Context, app *bootstrap.App, sweepMetrics *metrics.SweepMetrics, companyID string) error {
	start := time.Now()
	sweepMetrics.StartSweep()

	syncResult, err := app.SyncUC.SyncCompany(ctx, companyID)
	sweepMetrics.RecordSyncOutcome(serviceName, syncResult.Created, syncResult.Expired)
	if err != nil {
		sweepMetrics.FinishSweep(serviceName, "request", time.Since(start), err)
		return err
	}

	notifyResult, notifyErr := app.NotifyUC.Run(ctx, time.Now())
	sweepMetrics.RecordNotifications(serviceName, notifyResult.Sent, notifyResult.Failed)
	sweepMetrics.FinishSweep(serviceName, "request", time.Since(start), notifyErr)

	app.Log.Info("company_sweep_done",
		"company_id", companyID,
		"created", syncResult.Created,
		"skipped", syncResult.Skipped,
		"expired", syncResult.Expired,
		"sent", notifyResult.Sent,
		"failed", notifyResult.Failed,
	)
	return notifyErr
}

func serveMetrics(app *bootstrap.App, port string, sweepMetrics *metrics.SweepMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", sweepMetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	app.Log.Info("worker_metrics_listening", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		app.Log.Error("worker_metrics_server_error", "error", err)
	}
}
