package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/transport"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
)

// maxUpload bounds multipart image uploads.
const maxUpload = 10 << 20

type ProfileHTTP struct {
	Svc *service.ProfileService
}

func (h *ProfileHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.me")

	userID, err := currentUser(c, l, "me")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return fail(l, "me", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.patch")

	userID, err := currentUser(c, l, "profile_patch")
	if err != nil {
		return err
	}
	var req transport.PatchProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "profile_patch", "invalid body", err)
	}

	p, err := h.Svc.Update(ctx, userID, service.ProfilePatch{
		FullName: req.FullName,
		Location: req.Location,
		FarmSize: req.FarmSize,
		Bio:      req.Bio,
	})
	if err != nil {
		return fail(l, "profile_patch", err)
	}

	l.Info("profile_patch_success")
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHTTP) PushToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.push_token")

	userID, err := currentUser(c, l, "push_token")
	if err != nil {
		return err
	}
	var req transport.PushTokenRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "push_token", "invalid body", err)
	}
	if err := h.Svc.SetPushToken(ctx, userID, req.Token); err != nil {
		return fail(l, "push_token", err)
	}

	l.Info("push_token_success", "cleared", req.Token == "")
	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHTTP) Avatar(c echo.Context) error {
	return h.upload(c, "avatar", h.Svc.UploadAvatar)
}

func (h *ProfileHTTP) FieldPicture(c echo.Context) error {
	return h.upload(c, "field_picture", h.Svc.UploadFieldPicture)
}

func (h *ProfileHTTP) upload(c echo.Context, op string, put uploadFunc) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile."+op)

	userID, err := currentUser(c, l, op)
	if err != nil {
		return err
	}
	src, closeFn, err := formImage(c)
	if err != nil {
		return badRequest(l, op, "missing image file", err)
	}
	defer closeFn()

	p, err := put(ctx, userID, src)
	if err != nil {
		return fail(l, op, err)
	}

	l.Info(op + "_success")
	return c.JSON(http.StatusOK, p)
}
