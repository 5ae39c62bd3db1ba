package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/attendance"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{
		svc:      svc,
		validate: validate,
	}

	ag := g.Group("/attendance/auto-marked", authed)
	ag.GET("", api.query, roleMiddleware(auth.RoleTeacher, auth.RoleAdmin))
	ag.POST("", api.create, roleMiddleware(auth.RoleAdmin))
}

// query lists the records of the logged in teacher. Admins pick the teacher with `?teacher=`.
func (api *attendanceApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	teacher := sess.Username
	if sess.Is(auth.RoleAdmin) {
		if teacher = queryParam(ctx, "teacher"); teacher == "" {
			return core.NewFieldError("teacher", "teacher is a required query parameter")
		}
	}

	recs, err := api.svc.ListForTeacher(ctx.Request().Context(), teacher)
	if err != nil {
		return errors.Wrap(err, "listing attendance records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	rec, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, rec)
}
