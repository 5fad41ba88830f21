package gcs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeBucket struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/upload/storage/v1/b/media/o"):
		body, _ := io.ReadAll(r.Body)
		name := r.URL.Query().Get("name")
		if name == "" {
			// multipart uploads carry the object metadata in the first part
			name = extractName(string(body))
		}
		f.uploaded[name] = string(body)
		_ = json.NewEncoder(w).Encode(map[string]any{"bucket": "media", "name": name})
	case r.Method == http.MethodGet && r.URL.Path == "/storage/v1/b/media/o":
		_ = json.NewEncoder(w).Encode(map[string]any{"kind": "storage#objects"})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/storage/v1/b/media/o/"):
		name := strings.TrimPrefix(r.URL.Path, "/storage/v1/b/media/o/")
		if _, ok := f.uploaded[name]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
			return
		}
		delete(f.uploaded, name)
		f.deleted = append(f.deleted, name)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"no route"}}`))
	}
}

func extractName(body string) string {
	start := strings.Index(body, `"name":"`)
	if start < 0 {
		return ""
	}
	rest := body[start+len(`"name":"`):]
	return rest[:strings.Index(rest, `"`)]
}

func newTestClient(t *testing.T) (*Client, *fakeBucket) {
	t.Helper()
	fake := &fakeBucket{uploaded: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := newClient(context.Background(), config.GCSConfig{
		BucketName:    "media",
		ObjectPrefix:  "/products/",
		PublicBaseURL: "https://cdn.example.com/",
	}, option.WithEndpoint(srv.URL+"/storage/v1/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client, fake
}

func TestUploadAndDelete(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	url, err := client.Upload(ctx, "products/3/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/media/products/3/a.png", url)
	require.Contains(t, fake.uploaded["products/3/a.png"], "png-bytes")

	require.NoError(t, client.Delete(ctx, "products/3/a.png"))
	require.NoError(t, client.Delete(ctx, "products/3/missing.png"), "missing objects are ignored")
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := newClient(context.Background(), config.GCSConfig{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestObjectName(t *testing.T) {
	client := &Client{prefix: "products"}
	name := client.ObjectName(42, `C:\Users\me\Photo.JPG`)
	require.True(t, strings.HasPrefix(name, "products/42/"), name)
	require.True(t, strings.HasSuffix(name, ".jpg"), name)
	require.NotEqual(t, name, client.ObjectName(42, "Photo.JPG"))

	var nilClient *Client
	require.True(t, strings.HasPrefix(nilClient.ObjectName(1, "x.png"), "1/"))
}

func TestPublicURLEscapesSegments(t *testing.T) {
	client := &Client{bucket: "media", publicBaseURL: "https://storage.googleapis.com"}
	require.Equal(t, "https://storage.googleapis.com/media/a%20b/c.png", client.PublicURL("a b/c.png"))
}

func TestNilClientUpload(t *testing.T) {
	var client *Client
	_, err := client.Upload(context.Background(), "x", "image/png", strings.NewReader(""))
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestObjectFromURLReversesPublicURL(t *testing.T) {
	client := &Client{bucket: "media", publicBaseURL: "https://cdn.example.com"}

	object, ok := client.ObjectFromURL(client.PublicURL("products/3/a b.png"))
	require.True(t, ok)
	require.Equal(t, "products/3/a b.png", object)

	_, ok = client.ObjectFromURL("https://elsewhere.test/media/products/3/a.png")
	require.False(t, ok)
	_, ok = client.ObjectFromURL("https://cdn.example.com/media/")
	require.False(t, ok)

	var nilClient *Client
	_, ok = nilClient.ObjectFromURL("https://cdn.example.com/media/a.png")
	require.False(t, ok)
}
