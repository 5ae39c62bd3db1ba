package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/apps"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	metricsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/metrics"
)

func main() {
	conf := core.NewConfig()
	logger := apps.NewLogger("WORKER : ", conf)

	if conf.Redis.URL == "" {
		logger.Fatal(apps.NewConfigError("redisURL", "required: without redis the API delivers the invites itself").Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := apps.NewBackends(ctx, conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	defer func() { _ = backends.Close() }()

	core.ParseEmailTemplates(conf, logger)
	mailSvc := apps.NewMailService(conf, logger)
	metrics := metricsvc.New()

	// the worker's metrics & expvars share the debug server
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	worker := invite.NewWorker(apps.NewInviteService(conf, mailSvc, backends), backends.Queue, logger, func(o invite.Outcome) {
		metrics.ObserveInvite(string(o))
	})

	logger.Info(fmt.Sprintf("Worker started : version %q", conf.Build))
	if err = worker.Run(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("worker error: %v", err), err)
	}
	logger.Info("Worker stopped")
}
