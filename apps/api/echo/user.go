package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
)

var errMbrNotFoundInCtx = errors.New("member object not found in echo.Context")

type userApi struct {
	svc      user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, authed echo.MiddlewareFunc, svc user.Service, validate *validator.Validate) {
	api := userApi{
		svc:      svc,
		validate: validate,
	}

	ug := g.Group("/users", authed, roleMiddleware(auth.RoleAdmin))
	ug.GET("", api.query)
	ug.POST("", api.create)

	// detail endpoints
	dg := ug.Group("/:role/:id", memberMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/reset-password", api.resetPassword)
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mbr, mbrs, err := api.svc.CreateMember(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating member")
	}
	return ctx.JSON(http.StatusCreated, CreateMemberResponse{User: mbr, Users: mbrs})
}

func (api *userApi) query(ctx echo.Context) error {
	mbrs, err := api.svc.ListMembers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing members")
	}
	if mbrs == nil {
		mbrs = []user.Member{}
	}
	return ctx.JSON(http.StatusOK, mbrs)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	mbr, ok := ctx.Get("object").(user.Member)
	if !ok {
		return errors.Wrap(errMbrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *userApi) update(ctx echo.Context) error {
	mbr, ok := ctx.Get("object").(user.Member)
	if !ok {
		return errors.Wrap(errMbrNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	if err := data.Validate(mbr, api.validate); err != nil {
		return err
	}

	mbr, err := api.svc.UpdateMember(ctx.Request().Context(), mbr, data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	mbr, ok := ctx.Get("object").(user.Member)
	if !ok {
		return errors.Wrap(errMbrNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.DeleteMember(ctx.Request().Context(), mbr.Role, mbr.ID); err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	mbr, ok := ctx.Get("object").(user.Member)
	if !ok {
		return errors.Wrap(errMbrNotFoundInCtx, "retrieving object from context")
	}
	mbr, tempPwd, err := api.svc.ResetTempPassword(ctx.Request().Context(), mbr.Role, mbr.ID)
	if err != nil {
		return errors.Wrap(err, "resetting temporary password")
	}
	return ctx.JSON(http.StatusOK, ResetPasswordResponse{User: mbr, TempPassword: tempPwd})
}

func memberMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			mbr, err := svc.GetMember(ctx.Request().Context(), ctx.Param("role"), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding member")
			}
			ctx.Set("object", mbr)
			return next(ctx)
		}
	}
}

type (
	LoginRequest struct {
		UserType string `json:"userType" validate:"required"`
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token   string       `json:"token"`
		Session auth.Session `json:"session"`
	}

	CreateMemberResponse struct {
		User  user.Member   `json:"user"`
		Users []user.Member `json:"users"`
	}

	ResetPasswordResponse struct {
		User         user.Member `json:"user"`
		TempPassword string      `json:"tempPassword"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.UserType = core.CleanString(lr.UserType, true /* lower */)
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}
