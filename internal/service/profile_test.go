package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/storage"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{G: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProfileService(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	s := &ProfileService{Repo: e.repo, Media: storage.NewLocal(t.TempDir(), "http://media.test/")}
	ctx := context.Background()
	farmer := e.profile(t, models.RoleFarmer, "+221770000010")
	buyer := e.profile(t, models.RoleBuyer, "+221770000011")

	bio := "  Maraîcher à Thiès  "
	p, err := s.Update(ctx, farmer.ID, ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Maraîcher à Thiès", p.Bio)

	blank := ""
	_, err = s.Update(ctx, farmer.ID, ProfilePatch{Location: &blank})
	assert.Equal(t, msgFarmerLocation, Message(err))
	_, err = s.Update(ctx, buyer.ID, ProfilePatch{Location: &blank})
	assert.NoError(t, err)
	_, err = s.Update(ctx, buyer.ID, ProfilePatch{FullName: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetPushToken(ctx, buyer.ID, "ExponentPushToken[x]"))
	got, err := s.Get(ctx, buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ExpoPushToken)
	require.NoError(t, s.SetPushToken(ctx, buyer.ID, " "))
	got, err = s.Get(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ExpoPushToken)
	assert.ErrorIs(t, s.SetPushToken(ctx, uuid.New(), "t"), ErrNotFound)

	p, err = s.UploadAvatar(ctx, farmer.ID, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.AvatarURL, "http://media.test/avatars/"+farmer.ID.String()+"/"), p.AvatarURL)

	p, err = s.UploadFieldPicture(ctx, farmer.ID, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Contains(t, p.FieldPictureURL, "/field-pictures/")

	_, err = s.UploadAvatar(ctx, farmer.ID, strings.NewReader("plain text"))
	assert.ErrorIs(t, err, ErrValidation)
}
