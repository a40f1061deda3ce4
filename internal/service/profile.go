package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/internal/storage"
)

const msgProfileNotFound = "Profil introuvable"

type ImageStore interface {
	Put(bucket, owner string, src io.Reader) (*storage.Object, error)
}

type ProfileService struct {
	Repo  *repo.GormRepo
	Media ImageStore
}

type ProfilePatch struct {
	FullName *string
	Location *string
	FarmSize *string
	Bio      *string
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := s.Repo.GetProfile(ctx, id)
	return p, fromRepo(err, msgProfileNotFound)
}

func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, in ProfilePatch) (*models.Profile, error) {
	patch := map[string]any{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, fail(ErrValidation, "Le nom complet est requis.")
		}
		patch["full_name"] = name
	}
	if in.Location != nil {
		patch["location"] = strings.TrimSpace(*in.Location)
	}
	if in.FarmSize != nil {
		patch["farm_size"] = strings.TrimSpace(*in.FarmSize)
	}
	if in.Bio != nil {
		patch["bio"] = strings.TrimSpace(*in.Bio)
	}

	if loc, ok := patch["location"]; ok && loc == "" {
		cur, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.Role == models.RoleFarmer {
			return nil, fail(ErrValidation, msgFarmerLocation)
		}
	}

	p, err := s.Repo.UpdateProfile(ctx, id, patch)
	return p, fromRepo(err, msgProfileNotFound)
}

// SetPushToken registers the device token; an empty token unregisters.
func (s *ProfileService) SetPushToken(ctx context.Context, id uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	var t *string
	if token != "" {
		t = &token
	}
	return fromRepo(s.Repo.SetPushToken(ctx, id, t), msgProfileNotFound)
}

func (s *ProfileService) UploadAvatar(ctx context.Context, id uuid.UUID, src io.Reader) (*models.Profile, error) {
	return s.upload(ctx, id, storage.BucketAvatars, "avatar_url", src)
}

func (s *ProfileService) UploadFieldPicture(ctx context.Context, id uuid.UUID, src io.Reader) (*models.Profile, error) {
	return s.upload(ctx, id, storage.BucketFieldPictures, "field_picture_url", src)
}

func (s *ProfileService) upload(ctx context.Context, id uuid.UUID, bucket, column string, src io.Reader) (*models.Profile, error) {
	obj, err := putImage(s.Media, bucket, id, src)
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.UpdateProfile(ctx, id, map[string]any{column: obj.URL})
	return p, fromRepo(err, msgProfileNotFound)
}

func putImage(media ImageStore, bucket string, owner uuid.UUID, src io.Reader) (*storage.Object, error) {
	if media == nil {
		return nil, errors.New("media storage not configured")
	}
	obj, err := media.Put(bucket, owner.String(), src)
	if err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return nil, failWrap(ErrValidation, "Le fichier doit être une image.", err)
		}
		return nil, err
	}
	return obj, nil
}
