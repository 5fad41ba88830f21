package products

import (
	"bytes"
	"context"
	"fmt"
	"io"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/gif":  {},
}

// ImageUploader stores product images and returns their public URLs.
// ObjectFromURL reports false for URLs it did not issue.
type ImageUploader interface {
	ObjectName(companyID int64, filename string) string
	Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, object string) error
	ObjectFromURL(url string) (string, bool)
}

// storedImage is an object written during the current request.
type storedImage struct {
	Object string
	URL    string
}

func imageURLs(stored []storedImage) []string {
	urls := make([]string, 0, len(stored))
	for _, img := range stored {
		urls = append(urls, img.URL)
	}
	return urls
}

// sniffImage returns the detected content type when it is an accepted image.
func sniffImage(upload ImageUpload) (string, error) {
	if len(upload.Data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Image %q is empty", upload.Filename))
	}
	mtype := mimetype.Detect(upload.Data)
	for m := mtype; m != nil; m = m.Parent() {
		if _, ok := allowedImageTypes[m.String()]; ok {
			return m.String(), nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Image %q has unsupported type %s", upload.Filename, mtype.String())).
		WithDetails(map[string]any{"allowed": []string{"image/png", "image/jpeg", "image/webp", "image/gif"}})
}

// storeImages checks every file first, then uploads them in order. A failed
// upload removes the objects already written by the same call.
func (s *service) storeImages(ctx context.Context, companyID int64, uploads []ImageUpload) ([]storedImage, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if s.images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
	}

	contentTypes := make([]string, len(uploads))
	for i, upload := range uploads {
		ct, err := sniffImage(upload)
		if err != nil {
			return nil, err
		}
		contentTypes[i] = ct
	}

	stored := make([]storedImage, 0, len(uploads))
	for i, upload := range uploads {
		object := s.images.ObjectName(companyID, upload.Filename)
		url, err := s.images.Upload(ctx, object, contentTypes[i], bytes.NewReader(upload.Data))
		if err != nil {
			s.discardImages(ctx, stored)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
		}
		stored = append(stored, storedImage{Object: object, URL: url})
	}
	return stored, nil
}

// discardImages removes objects uploaded for a write that did not commit.
func (s *service) discardImages(ctx context.Context, stored []storedImage) {
	for _, img := range stored {
		s.deleteObject(ctx, img.Object)
	}
}

// releaseImages removes the bucket objects behind urls that are no longer
// referenced. URLs this storage did not issue are left alone.
func (s *service) releaseImages(ctx context.Context, urls []string) {
	if s.images == nil {
		return
	}
	for _, u := range urls {
		if object, ok := s.images.ObjectFromURL(u); ok {
			s.deleteObject(ctx, object)
		}
	}
}

func (s *service) deleteObject(ctx context.Context, object string) {
	if err := s.images.Delete(ctx, object); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"object": object, "error": err.Error()}), "product image cleanup failed")
	}
}
