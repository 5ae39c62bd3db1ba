package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/apps"
	echoapi "github.com/Meghashree-V/smart-surveillance-system-for-campus/apps/api/echo"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/attendance"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	metricsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/metrics"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/database"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/redisdb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	ctx := context.Background()
	conf := core.NewConfig()
	logger := apps.NewLogger("API : ", conf)
	dbLogger := apps.NewLogger("DB : ", conf)

	// set up DB
	db, err := apps.OpenDB(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(context.Background()); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	backends, err := apps.NewBackends(ctx, conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	defer func() { _ = backends.Close() }()

	media, err := apps.NewMediaStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up media store: %v", err), err)
	}

	validate, translator := apps.NewValidator()
	metrics := metricsvc.New()

	// set up services
	mailSvc := apps.NewMailService(conf, logger)
	inviteSvc := apps.NewInviteService(conf, mailSvc, backends)
	usrSvc := user.NewService(database.NewUserRepository(db), mailSvc, validate)
	stdSvc := student.NewService(database.NewStudentRepository(db), media, inviteSvc, validate, logger, student.Options{
		MaxVideoSize:        conf.Media.MaxVideoSize,
		RegistrationBaseURL: conf.Invite.RegistrationBaseURL,
	})
	authSvc := auth.NewService(backends.Sessions, conf.Server.JWTExpirationDelta)
	authSvc.Register(auth.RoleAdmin, usrSvc.AdminFinder())
	authSvc.Register(auth.RoleCC, usrSvc.MemberFinder(auth.RoleCC))
	authSvc.Register(auth.RoleTeacher, usrSvc.MemberFinder(auth.RoleTeacher))
	authSvc.Register(auth.RoleStudent, stdSvc.Finder())

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(conf, logger)

	// without redis the invites are delivered by this process
	if backends.InProcess() {
		worker := invite.NewWorker(inviteSvc, backends.Queue, logger, func(o invite.Outcome) {
			metrics.ObserveInvite(string(o))
		})
		workerCtx, stopWorker := context.WithCancel(ctx)
		defer stopWorker()
		go func() {
			if err := worker.Run(workerCtx); err != nil {
				logger.Error("invite worker stopped", err)
			}
		}()
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(db.Driver)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	healthChecks := map[string]echoapi.HealthCheck{"store": db.Healthy}
	if !backends.InProcess() {
		healthChecks["redis"] = func(ctx context.Context) error { return redisdb.Healthy(ctx, backends.Redis) }
	}

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Metrics:       metrics,
			Validate:      validate,
			Translator:    translator,
			HealthChecks:  healthChecks,
			MediaDir:      apps.LocalMediaDir(conf),
			AuthSvc:       authSvc,
			UserSvc:       usrSvc,
			StudentSvc:    stdSvc,
			AttendanceSvc: attendance.NewService(database.NewAttendanceRepository(db)),
			EventSvc:      event.NewService(database.NewEventRepository(db), media, validate, conf.Media.MaxDocumentSize),
			InviteSvc:     inviteSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
