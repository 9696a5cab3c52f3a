package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/reporte/internal/model"
	"github.com/dharsanguruparan/reporte/internal/payload"
)

func submission(target string) *payload.Submission {
	return &payload.Submission{
		Target: target,
		Payload: model.ReportPayload{
			Metadata: model.SubmissionMetadata{
				RequestMetadata: model.RequestMetadata{ID: "A1", Ciudad: "Bogotá"},
				SubmittedAt:     time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
			},
			DescripcionServicio:         "Mantenimiento",
			EquiposMaterialesInstalados: []model.EquipmentItem{},
		},
		Images: []model.ImageAttachment{
			{Category: model.CategoryAntes, Filename: "a.jpg", Bytes: []byte("a")},
			{Category: model.CategoryDurante, Filename: "b.jpg", Bytes: []byte("b")},
			{Category: model.CategoryDespues, Filename: "c.jpg", Bytes: []byte("c")},
		},
	}
}

func TestSendSurfacesResponseVerbatim(t *testing.T) {
	var gotDoc model.ReportPayload
	var gotFiles map[string]int
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotRequestID = r.Header.Get("X-Request-Id")
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("payload")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		assert.Equal(t, "payload.json", hdr.Filename)
		assert.Equal(t, "application/json", hdr.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(f).Decode(&gotDoc))

		gotFiles = map[string]int{}
		for field, files := range r.MultipartForm.File {
			gotFiles[field] = len(files)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"ok":true,"id":"rep-1"}`)
	}))
	defer srv.Close()

	res, err := New(time.Second).Send(context.Background(), submission(srv.URL+"/hook"))
	require.NoError(t, err)

	assert.True(t, res.Sent)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, `{"ok":true,"id":"rep-1"}`, res.Body)
	assert.Empty(t, res.Failure)
	assert.Equal(t, gotRequestID, res.RequestID)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, "Envío completado. Código de estado: 201", res.Summary())

	assert.Equal(t, "Bogotá", gotDoc.Metadata.Ciudad)
	assert.Equal(t, map[string]int{"payload": 1, "imagenesAntes": 1, "imagenesDurante": 1, "imagenesDespues": 1}, gotFiles)
}

func TestSendReportsErrorStatusAsSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "campo faltante", http.StatusBadRequest)
	}))
	defer srv.Close()

	res, err := New(time.Second).Send(context.Background(), submission(srv.URL))
	require.NoError(t, err)
	assert.True(t, res.Sent)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "campo faltante\n", res.Body)
	assert.False(t, res.Truncated)
}

func TestSendMarksTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write(bytes.Repeat([]byte("x"), MaxResponseBytes+10))
	}))
	defer srv.Close()

	res, err := New(5*time.Second).Send(context.Background(), submission(srv.URL))
	require.NoError(t, err)
	assert.True(t, res.Sent)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Body, MaxResponseBytes)
}

func TestSendTimeoutIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	res, err := New(50*time.Millisecond).Send(context.Background(), submission(srv.URL))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, res.Sent)
	assert.Zero(t, res.StatusCode)
	assert.NotEmpty(t, res.Failure)
	assert.Contains(t, res.Summary(), "Error al enviar el reporte: ")
}

func TestSendConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	res, err := New(time.Second).Send(context.Background(), submission(target))
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.NotEmpty(t, res.Failure)
}

func TestSendRejectsInvalidTarget(t *testing.T) {
	for _, target := range []string{"", "ftp://host/x"} {
		_, err := New(time.Second).Send(context.Background(), submission(target))
		var verrs payload.ValidationErrors
		require.ErrorAs(t, err, &verrs, target)
		assert.Equal(t, payload.ValidationErrors{"POSTURL inválida o ausente."}, verrs)
	}
}

func TestNewDefaultsTimeout(t *testing.T) {
	c := New(0)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}
