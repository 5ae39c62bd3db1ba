package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
)

type eventApi struct {
	svc event.Service
}

func registerEventAPI(g *echo.Group, authed echo.MiddlewareFunc, svc event.Service) {
	api := eventApi{svc: svc}

	eg := g.Group("/events", authed)
	eg.GET("", api.query, roleMiddleware(auth.RoleStudent, auth.RoleCC, auth.RoleAdmin))
	eg.POST("", api.create, roleMiddleware(auth.RoleStudent))

	// detail endpoints
	eg.GET("/:id", api.retrieve, roleMiddleware(auth.RoleStudent, auth.RoleCC, auth.RoleAdmin))
	eg.DELETE("/:id", api.destroy, roleMiddleware(auth.RoleStudent))
	eg.POST("/:id/review", api.review, roleMiddleware(auth.RoleCC, auth.RoleAdmin))
}

// Handlers

// create handles the multipart request form: fields plus the `permissionLetter` & `selfie` files.
func (api *eventApi) create(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data event.NewRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	var files formFiles
	defer files.close()
	if data.PermissionLetter, err = files.get(ctx, "permissionLetter"); err != nil {
		return err
	}
	if data.Selfie, err = files.get(ctx, "selfie"); err != nil {
		return err
	}

	req, err := api.svc.Create(ctx.Request().Context(), sess.Username, data)
	if err != nil {
		return errors.Wrap(err, "creating event request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

// query lists the requests of the logged in student; reviewers see them all.
func (api *eventApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	filter := event.Filter{Status: queryParam(ctx, "status")}
	if sess.Is(auth.RoleStudent) {
		filter.StudentUsn = sess.Username
	}

	reqs, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing event requests")
	}
	if reqs == nil {
		reqs = []event.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	req, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding event request")
	}
	if sess.Is(auth.RoleStudent) && req.StudentUsn != sess.Username {
		return event.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *eventApi) review(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data event.Review
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Review")
	}

	req, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), sess.Username, data)
	if err != nil {
		return errors.Wrap(err, "reviewing event request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), sess.Username); err != nil {
		return errors.Wrap(err, "deleting event request")
	}
	return ctx.NoContent(http.StatusNoContent)
}
