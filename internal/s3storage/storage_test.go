package s3storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/reporte/internal/config"
)

func TestParseRef(t *testing.T) {
	bucket, key, err := ParseRef("s3://evidencias/os-77/antes/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "evidencias", bucket)
	assert.Equal(t, "os-77/antes/1.jpg", key)

	for _, bad := range []string{"", "evidencias/1.jpg", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := ParseRef(bad)
		assert.ErrorIs(t, err, ErrBadRef, bad)
	}
}

func TestObjectFilename(t *testing.T) {
	store, err := New(&config.Config{S3Endpoint: "localhost:9000", S3AccessKey: "k", S3SecretKey: "s"})
	require.NoError(t, err)

	obj, err := store.Object("s3://evidencias/os-77/despues/tablero.png")
	require.NoError(t, err)
	assert.Equal(t, "tablero.png", obj.Filename())
	assert.Equal(t, "", obj.DeclaredType())

	_, err = store.Object("/tmp/tablero.png")
	assert.ErrorIs(t, err, ErrBadRef)
}

type storedObject struct {
	contentType string
	data        string
}

// newBucketServer answers object GET/HEAD requests for the given keys the way
// an S3 endpoint does, which is all the minio client needs for reads.
func newBucketServer(t *testing.T, objects map[string]storedObject) *Storage {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("location") {
			w.Header().Set("Content-Type", "application/xml")
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`))
			return
		}
		obj, ok := objects[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", obj.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
		w.Header().Set("ETag", `"0123456789abcdef"`)
		w.Header().Set("Last-Modified", time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write([]byte(obj.data))
		}
	}))
	t.Cleanup(srv.Close)

	store, err := New(&config.Config{
		S3Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		S3AccessKey: "k",
		S3SecretKey: "s",
		S3Region:    "us-east-1",
		S3UseSSL:    false,
	})
	require.NoError(t, err)
	return store
}

func TestObjectReadAll(t *testing.T) {
	store := newBucketServer(t, map[string]storedObject{
		"evidencias/os-77/antes/tablero.png":  {contentType: "image/png", data: "png-bytes"},
		"evidencias/os-77/despues/cierre.jpg": {contentType: "application/octet-stream", data: "jpg-bytes"},
	})

	typed, err := store.Object("s3://evidencias/os-77/antes/tablero.png")
	require.NoError(t, err)
	data, err := typed.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", typed.DeclaredType())

	untyped, err := store.Object("s3://evidencias/os-77/despues/cierre.jpg")
	require.NoError(t, err)
	data, err = untyped.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jpg-bytes", string(data))
	assert.Equal(t, "", untyped.DeclaredType())
	assert.Equal(t, "cierre.jpg", untyped.Filename())
}

func TestObjectReadAllMissing(t *testing.T) {
	store := newBucketServer(t, map[string]storedObject{})

	obj, err := store.Object("s3://evidencias/no-existe.jpg")
	require.NoError(t, err)
	_, err = obj.ReadAll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "", obj.DeclaredType())
}
