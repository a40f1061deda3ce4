// Package storage keeps uploaded images in named buckets on local disk and
// hands back their public URLs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	BucketAvatars       = "avatars"
	BucketFieldPictures = "field-pictures"
	BucketProductImages = "product-images"

	maxWidth   = 1280
	thumbWidth = 300
)

var (
	ErrUnknownBucket = errors.New("unknown bucket")
	ErrNotAnImage    = errors.New("not an image")
)

var buckets = map[string]struct{}{
	BucketAvatars:       {},
	BucketFieldPictures: {},
	BucketProductImages: {},
}

type Object struct {
	Bucket   string `json:"bucket"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
}

type Local struct {
	Dir       string
	PublicURL string
}

func NewLocal(dir, publicURL string) *Local {
	return &Local{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/")}
}

// Put decodes src, stores a copy no wider than maxWidth plus a thumbnail,
// and names the file under owner so each user writes to their own folder.
func (s *Local) Put(bucket, owner string, src io.Reader) (*Object, error) {
	if _, ok := buckets[bucket]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, bucket)
	}

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	name := uuid.NewString() + ".jpg"
	rel := filepath.ToSlash(filepath.Join(owner, name))
	full := filepath.Join(s.Dir, bucket, owner, name)
	thumb := filepath.Join(s.Dir, bucket, "thumb", owner, name)

	for _, dir := range []string{filepath.Dir(full), filepath.Dir(thumb)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory: %w", err)
		}
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, full); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	if err := imaging.Save(imaging.Resize(img, thumbWidth, 0, imaging.Lanczos), thumb); err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}

	return &Object{
		Bucket:   bucket,
		Path:     rel,
		URL:      s.url(bucket, rel),
		ThumbURL: s.url(bucket, "thumb/"+rel),
	}, nil
}

func (s *Local) url(bucket, rel string) string {
	return s.PublicURL + "/" + bucket + "/" + rel
}
