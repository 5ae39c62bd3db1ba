package echoapi

import (
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	metricsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/metrics"
)

const contextTokenKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
// Id is the session id, Subject the user id.
type Claims struct {
	jwt.StandardClaims
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
}

func newJWTConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func sessionClaims(sess auth.Session, issuer string) *Claims {
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sess.ID,
			Issuer:    issuer,
			Subject:   sess.UserID,
			ExpiresAt: sess.ExpiresAt.Unix(),
			IssuedAt:  sess.CreatedAt.Unix(),
		},
		Role:     sess.UserType,
		Username: sess.Username,
	}
}

// generateToken generates a signed JWT token string representing the session Claims.
func generateToken(conf middleware.JWTConfig, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(conf.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextSession(ctx echo.Context) (auth.Session, error) {
	if sess, ok := auth.FromContext(ctx.Request().Context()); ok {
		return sess, nil
	}
	return auth.Session{}, errUnauthorized
}

// sessionMiddleware resolves the live session of the JWT and stores it in the request context.
// Logged out (or expired) sessions are rejected even when the token itself is still valid.
func sessionMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			req := ctx.Request()
			sess, err := svc.Verify(req.Context(), claims.Id)
			if err != nil {
				if errors.Cause(err) == auth.ErrSessionNotFound {
					return errSessionExpired
				}
				return errors.Wrap(err, "verifying session")
			}
			if sess.UserType != claims.Role || sess.UserID != claims.Subject {
				return errUnauthorized
			}
			ctx.SetRequest(req.WithContext(auth.NewContext(req.Context(), sess)))
			return next(ctx)
		}
	}
}

// passwordRotationMiddleware keeps users on a temporary password out until they change it.
func passwordRotationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getContextSession(ctx)
		if err != nil {
			return err
		}
		if sess.MustChangePassword {
			return errPasswordChangeRequired
		}
		return next(ctx)
	}
}

type authApi struct {
	svc      *auth.Service
	userSvc  user.Service
	metrics  *metricsvc.Metrics
	validate *validator.Validate
	jwtConf  middleware.JWTConfig
	issuer   string
}

func registerAuthAPI(
	g *echo.Group,
	authed echo.MiddlewareFunc,
	limiter echo.MiddlewareFunc,
	jwtConf middleware.JWTConfig,
	deps ServerDeps,
) {
	api := authApi{
		svc:      deps.AuthSvc,
		userSvc:  deps.UserSvc,
		metrics:  deps.Metrics,
		validate: deps.Validate,
		jwtConf:  jwtConf,
		issuer:   deps.Conf.AppName,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login, limiter)

	// authed endpoints: reachable with a temporary password
	ag.POST("/logout", api.logout, authed)
	ag.GET("/session", api.session, authed)
	ag.POST("/change-password", api.changePassword, authed, roleMiddleware(auth.RoleAdmin, auth.RoleCC, auth.RoleTeacher))
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Login(ctx.Request().Context(), data.UserType, data.Username, data.Password)
	if api.metrics != nil && auth.IsValidRole(data.UserType) {
		api.metrics.ObserveLogin(data.UserType, err == nil)
	}
	if err != nil {
		if errors.Cause(err) == core.ErrInvalidCredentials {
			return err
		}
		return errors.Wrap(err, "logging in")
	}
	return api.sessionResponse(ctx, sess)
}

func (api *authApi) sessionResponse(ctx echo.Context, sess auth.Session) error {
	token, err := generateToken(api.jwtConf, sessionClaims(sess, api.issuer))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Session: sess})
}

func (api *authApi) logout(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Logout(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) session(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// changePassword lifts the password rotation requirement of the current session; a fresh token is returned.
func (api *authApi) changePassword(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data user.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}

	reqCtx := ctx.Request().Context()
	if err = api.userSvc.ChangePassword(reqCtx, sess.UserType, sess.Username, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	if sess, err = api.svc.PasswordChanged(reqCtx, sess.ID); err != nil {
		return errors.Wrap(err, "updating session")
	}
	return api.sessionResponse(ctx, sess)
}
