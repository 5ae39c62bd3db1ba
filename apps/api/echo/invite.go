package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
)

type inviteApi struct {
	svc *invite.Service
}

func registerInviteAPI(g *echo.Group, limiter echo.MiddlewareFunc, svc *invite.Service) {
	api := inviteApi{svc: svc}
	g.Any("/invites/send", api.send, limiter)
}

// send emails a registration invite right away.
func (api *inviteApi) send(ctx echo.Context) error {
	if ctx.Request().Method != http.MethodPost {
		return errMethodNotAllowed
	}

	var data invite.Invite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Invite")
	}
	if err := api.svc.Send(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "sending invite")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Invite sent"})
}
