package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
)

var (
	errUnauthorized           = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errSessionExpired         = echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	errHttpForbidden          = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errPasswordChangeRequired = echo.NewHTTPError(http.StatusForbidden, "password change required")
	errMethodNotAllowed       = echo.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed")
	errRateLimited            = echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
)

type knownError struct {
	code    int
	message string // defaults to the error text
}

// knownErrors are domain errors with a dedicated status.
var knownErrors = map[error]knownError{
	core.ErrUnsupportedFileType: {code: http.StatusUnsupportedMediaType},
	core.ErrFileTooLarge:        {code: http.StatusRequestEntityTooLarge},
	core.ErrInvalidCredentials:  {code: http.StatusUnauthorized},
	auth.ErrSessionNotFound:     {code: http.StatusUnauthorized, message: "session expired"},
	user.ErrNotFound:            {code: http.StatusNotFound},
	student.ErrNotFound:         {code: http.StatusNotFound},
	event.ErrNotFound:           {code: http.StatusNotFound},
	event.ErrNotOwner:           {code: http.StatusForbidden, message: "permission denied"},
	invite.ErrMissingFields:     {code: http.StatusBadRequest, message: "Missing required fields"},
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if known, ok := knownErrors[cause]; ok {
				code = known.code
				message = known.message
				if known.message == "" {
					message = cause.Error()
				}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			if cause == core.ErrEmailDelivery {
				msg = cause.Error()
			}
			message = msg

			args := []interface{}{errors.Wrap(err, msg), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Path(),
			}}
			if sess, ok := auth.FromContext(ctx.Request().Context()); ok {
				args = append(args, sess)
			}
			logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
