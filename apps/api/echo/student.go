package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
)

var errStdNotFoundInCtx = errors.New("student object not found in echo.Context")

type studentApi struct {
	svc      student.Service
	validate *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	authed echo.MiddlewareFunc,
	limiter echo.MiddlewareFunc,
	svc student.Service,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/students")

	// un-authed endpoints
	sg.POST("/register", api.register, limiter)

	sg.GET("/me", api.me, authed, roleMiddleware(auth.RoleStudent))

	// class coordinator endpoints
	cg := sg.Group("", authed, roleMiddleware(auth.RoleCC, auth.RoleAdmin))
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	dg := cg.Group("/:id", studentMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

// register handles the multipart self-registration form: fields plus the `video` file.
func (api *studentApi) register(ctx echo.Context) error {
	var data student.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}

	var files formFiles
	defer files.close()
	video, err := files.get(ctx, "video")
	if err != nil {
		return err
	}
	data.Video = video

	std, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{ID: std.ID, Student: std})
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	stds, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	if stds == nil {
		stds = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, stds)
}

func (api *studentApi) me(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	std, err := api.svc.Get(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(std, api.validate); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), std, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func studentMiddleware(svc student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			std, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding student")
			}
			ctx.Set("object", std)
			return next(ctx)
		}
	}
}

type RegisterResponse struct {
	ID      string          `json:"id"`
	Student student.Student `json:"student"`
}
