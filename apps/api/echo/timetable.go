package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/timetable"
)

type timetableApi struct {
	studentSvc student.Service
	maxSize    int64
}

func registerTimetableAPI(g *echo.Group, authed echo.MiddlewareFunc, studentSvc student.Service, maxSize int64) {
	api := timetableApi{
		studentSvc: studentSvc,
		maxSize:    maxSize,
	}
	g.POST("/timetables", api.upload, authed, roleMiddleware(auth.RoleCC, auth.RoleAdmin))
}

// upload parses the multipart `file` timetable and maps its subjects to the stored students.
func (api *timetableApi) upload(ctx echo.Context) error {
	var files formFiles
	defer files.close()
	f, err := files.get(ctx, "file")
	if err != nil {
		return err
	}
	if f == nil {
		return core.NewFieldError("file", "a timetable file is required")
	}

	entries, err := timetable.Parse(*f, api.maxSize)
	if err != nil {
		return errors.Wrap(err, "parsing timetable")
	}
	stds, err := api.studentSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, TimetableResponse{Entries: entries, Mappings: timetable.Map(stds, entries)})
}

type TimetableResponse struct {
	Entries  []timetable.Entry          `json:"entries"`
	Mappings []timetable.StudentMapping `json:"mappings"`
}
