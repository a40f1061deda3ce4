package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/notify"
	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/util"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
)

type NotificationHTTP struct {
	Svc *service.NotificationService
	Hub *notify.Hub
}

func (h *NotificationHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.list")

	userID, err := currentUser(c, l, "notifications")
	if err != nil {
		return err
	}
	limit := util.ParseIntDefault(c.QueryParam("limit"), service.DefaultAlertLimit)
	offset := util.ParseIntDefault(c.QueryParam("offset"), 0)

	items, err := h.Svc.List(ctx, userID, limit, offset)
	if err != nil {
		return fail(l, "notifications", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *NotificationHTTP) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.unread_count")

	userID, err := currentUser(c, l, "unread_count")
	if err != nil {
		return err
	}
	n, err := h.Svc.UnreadCount(ctx, userID)
	if err != nil {
		return fail(l, "unread_count", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

func (h *NotificationHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_read")

	userID, err := currentUser(c, l, "mark_read")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "mark_read", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.MarkRead(ctx, userID, id); err != nil {
		return fail(l, "mark_read", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHTTP) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_all_read")

	userID, err := currentUser(c, l, "mark_all_read")
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkAllRead(ctx, userID)
	if err != nil {
		return fail(l, "mark_all_read", err)
	}

	l.Info("mark_all_read_success", "updated", n)
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Stream upgrades to a websocket that receives the user's alerts as they
// are stored. It returns when the client goes away.
func (h *NotificationHTTP) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.stream")

	userID, err := currentUser(c, l, "stream")
	if err != nil {
		return err
	}
	conn, err := notify.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		l.Warn("stream_error", "status", http.StatusBadRequest, "reason", "websocket upgrade failed", "error", err)
		return nil
	}

	l.Info("stream_open", "user_id", userID)
	h.Hub.Serve(userID, conn)
	l.Info("stream_closed", "user_id", userID)
	return nil
}

// Push is the admin relay to a user's device.
func (h *NotificationHTTP) Push(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.push")

	var req service.PushInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "push", "invalid body", err)
	}
	res, err := h.Svc.SendPush(ctx, req)
	if err != nil {
		return fail(l, "push", err)
	}

	l.Info("push_success", "delivered", res.Success)
	return c.JSON(http.StatusOK, res)
}
