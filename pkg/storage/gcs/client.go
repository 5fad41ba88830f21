package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

const pingTimeout = 5 * time.Second

// ErrNotConfigured is returned when uploads are attempted without a bucket.
var ErrNotConfigured = errors.New("gcs bucket not configured")

// Client uploads product images to a single bucket through the JSON API.
type Client struct {
	svc           *storage.Service
	bucket        string
	prefix        string
	publicBaseURL string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds a storage client from the configured credentials and verifies
// the bucket is reachable. An endpoint override disables authentication so that
// local emulators work.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.Endpoint != "":
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	opts = append(opts, option.WithScopes(storage.DevstorageReadWriteScope))

	client, err := newClient(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func newClient(ctx context.Context, cfg config.GCSConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, ErrNotConfigured
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}
	return &Client{
		svc:           svc,
		bucket:        cfg.BucketName,
		prefix:        strings.Trim(cfg.ObjectPrefix, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// ObjectName builds a collision-free object path under the company's prefix,
// keeping the extension of the uploaded file.
func (c *Client) ObjectName(companyID int64, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	name := fmt.Sprintf("%d/%s%s", companyID, uuid.NewString(), ext)
	if c == nil || c.prefix == "" {
		return name
	}
	return c.prefix + "/" + name
}

// PublicURL returns the browser-facing URL of an object.
func (c *Client) PublicURL(object string) string {
	segments := strings.Split(object, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, url.PathEscape(c.bucket), strings.Join(segments, "/"))
}

// ObjectFromURL reverses PublicURL. It reports false for URLs outside the bucket.
func (c *Client) ObjectFromURL(raw string) (string, bool) {
	if c == nil || c.bucket == "" {
		return "", false
	}
	prefix := fmt.Sprintf("%s/%s/", c.publicBaseURL, url.PathEscape(c.bucket))
	rest, ok := strings.CutPrefix(raw, prefix)
	if !ok || rest == "" {
		return "", false
	}
	segments := strings.Split(rest, "/")
	for i, seg := range segments {
		unescaped, err := url.PathUnescape(seg)
		if err != nil || unescaped == "" {
			return "", false
		}
		segments[i] = unescaped
	}
	return strings.Join(segments, "/"), true
}

// Upload streams the object into the bucket and returns its public URL.
func (c *Client) Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error) {
	if c == nil || c.svc == nil {
		return "", ErrNotConfigured
	}
	if object == "" {
		return "", errors.New("object name is required")
	}

	obj := &storage.Object{Name: object, ContentType: contentType}
	if _, err := c.svc.Objects.Insert(c.bucket, obj).
		Media(body, googleapi.ContentType(contentType)).
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("uploading %s: %w", object, err)
	}
	return c.PublicURL(object), nil
}

// Delete removes an object. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, object string) error {
	if c == nil || c.svc == nil {
		return ErrNotConfigured
	}
	err := c.svc.Objects.Delete(c.bucket, object).Context(ctx).Do()
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting %s: %w", object, err)
	}
	return nil
}

// Ping lists at most one object, which requires storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.svc.Objects.List(c.bucket).MaxResults(1).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs object check failed: %w", err)
	}
	return nil
}

// IsNotFound reports whether the API answered 404.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
