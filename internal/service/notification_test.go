package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/pkg/pushclient"
)

func TestSendPush(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	user := e.profile(t, models.RoleBuyer, "+221770000001")

	_, err := e.notifier.SendPush(ctx, PushInput{UserID: user.ID.String(), Title: "t"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Missing user_id, title, or message", Message(err))

	_, err = e.notifier.SendPush(ctx, PushInput{UserID: "nope", Title: "t", Message: "m"})
	assert.ErrorIs(t, err, ErrValidation)

	res, err := e.notifier.SendPush(ctx, PushInput{UserID: user.ID.String(), Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "No push token for user", res.Message)

	res, err = e.notifier.SendPush(ctx, PushInput{UserID: uuid.NewString(), Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "No push token for user", res.Message)

	token := "ExponentPushToken[abc]"
	require.NoError(t, e.repo.SetPushToken(ctx, user.ID, &token))
	res, err = e.notifier.SendPush(ctx, PushInput{UserID: user.ID.String(), Title: "Commande", Message: "Payée", Data: map[string]any{"k": "v"}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, e.push.sent, 1)
	assert.Equal(t, token, e.push.sent[0].To)
	assert.Equal(t, "Payée", e.push.sent[0].Body)
}

func TestSendPush_DeviceNotRegisteredClearsToken(t *testing.T) {
	t.Parallel()

	var got pushclient.Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"status":"error","message":"not a valid token","details":{"error":"DeviceNotRegistered"}}}`))
	}))
	t.Cleanup(srv.Close)

	e := newEnv(t)
	e.notifier.Push = pushclient.NewClient(srv.URL)
	ctx := context.Background()
	user := e.profile(t, models.RoleFarmer, "+221770000002")
	token := "ExponentPushToken[stale]"
	require.NoError(t, e.repo.SetPushToken(ctx, user.ID, &token))

	_, err := e.notifier.SendPush(ctx, PushInput{UserID: user.ID.String(), Title: "t", Message: "m"})
	assert.ErrorIs(t, err, pushclient.ErrDeviceNotRegistered)
	assert.Equal(t, token, got.To)

	p, err := e.repo.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, p.ExpoPushToken)
}

func TestEmitAndRead(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()

	alerts := make([]models.Alert, 0, 3)
	for i := 0; i < 3; i++ {
		alerts = append(alerts, models.Alert{UserID: user, Type: models.AlertNewOrder, Title: "Nouvelle commande", Message: "m"})
	}
	require.NoError(t, e.notifier.Emit(ctx, alerts...))
	require.NoError(t, e.notifier.Emit(ctx))
	assert.Equal(t, 3, e.stream.count(user))

	unread, err := e.notifier.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	page, err := e.notifier.List(ctx, user, 1000, -5)
	require.NoError(t, err)
	require.Len(t, page, 3)

	require.NoError(t, e.notifier.MarkRead(ctx, user, page[0].ID))
	assert.ErrorIs(t, e.notifier.MarkRead(ctx, uuid.New(), page[1].ID), ErrNotFound)

	n, err := e.notifier.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	unread, err = e.notifier.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
