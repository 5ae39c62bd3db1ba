package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/attendance"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	metricsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/metrics"
)

type (
	// HealthCheck reports whether a dependency is reachable.
	HealthCheck func(ctx context.Context) error

	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Metrics        *metricsvc.Metrics
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
		HealthChecks   map[string]HealthCheck
		MediaDir       string // served under /media when set

		AuthSvc       *auth.Service
		UserSvc       user.Service
		StudentSvc    student.Service
		AttendanceSvc *attendance.Service
		EventSvc      event.Service
		InviteSvc     *invite.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwtConf  middleware.JWTConfig
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		jwtConf:  newJWTConfig(deps.Conf.SecretKey),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Logger.SetLevel(log.ERROR)
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.deps.Metrics != nil {
		s.app.Use(metricsMiddleware(s.deps.Metrics))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf.AppName))
	s.app.GET("/healthz", healthz(s.deps.HealthChecks))
	if s.deps.Metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
	}
	if s.deps.MediaDir != "" {
		s.app.Static("/media", s.deps.MediaDir)
	}

	limiter := newRateLimiter(conf.Server.RateLimit, conf.Server.RateBurst).middleware()

	// authed: valid JWT + live session; rotated: authed + temporary password already changed
	authed := chain(middleware.JWTWithConfig(s.jwtConf), sessionMiddleware(s.deps.AuthSvc))
	rotated := chain(authed, passwordRotationMiddleware)

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, authed, limiter, s.jwtConf, s.deps)
	registerUserAPI(v1, rotated, s.deps.UserSvc, s.deps.Validate)
	registerStudentAPI(v1, rotated, limiter, s.deps.StudentSvc, s.deps.Validate)
	registerTimetableAPI(v1, rotated, s.deps.StudentSvc, conf.Media.MaxDocumentSize)
	registerAttendanceAPI(v1, rotated, s.deps.AttendanceSvc, s.deps.Validate)
	registerEventAPI(v1, rotated, s.deps.EventSvc)
	registerInviteAPI(v1, limiter, s.deps.InviteSvc)
}

// Start serves until the server is shut down. Listen errors are reported on Errors().
func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(appName string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+appName+" API!")
	}
}

func healthz(checks map[string]HealthCheck) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		code := http.StatusOK
		status := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx.Request().Context()); err != nil {
				code = http.StatusServiceUnavailable
				status[name] = err.Error()
				continue
			}
			status[name] = "ok"
		}
		return ctx.JSON(code, echo.Map{"healthy": code == http.StatusOK, "checks": status})
	}
}

// chain composes mws so that the first one runs first.
func chain(mws ...echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
