package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dharsanguruparan/reporte/internal/model"
)

const (
	// PayloadField is the part carrying the report document.
	PayloadField = "payload"
	// PayloadFilename is the filename announced for the document part.
	PayloadFilename = "payload.json"
	// JSONType is the media type of the document part.
	JSONType = "application/json"
	// FallbackType is used when an image's type cannot be determined.
	FallbackType = "application/octet-stream"
)

// Body is an encoded multipart request body.
type Body struct {
	Data        *bytes.Buffer
	ContentType string
}

// MarshalReport encodes the report as UTF-8 JSON, leaving non-ASCII text and
// HTML characters unescaped.
func MarshalReport(report model.ReportPayload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode frames the submission: the payload part first, then every image as
// a repeated part named after its category.
func (s *Submission) Encode() (*Body, error) {
	doc, err := MarshalReport(s.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writePart(mw, PayloadField, PayloadFilename, JSONType, doc); err != nil {
		return nil, err
	}
	for _, img := range s.Images {
		ct := MediaType(img.MimeType, img.Filename, img.Bytes)
		if err := writePart(mw, img.Category.FieldName(), img.Filename, ct, img.Bytes); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return &Body{Data: &buf, ContentType: mw.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writePart(mw *multipart.Writer, field, filename, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write part %s: %w", field, err)
	}
	return nil
}

// MediaType picks the Content-Type of an image part: the declared type, else
// a guess from the extension, else a sniffed image type, else octet-stream.
func MediaType(declared, filename string, data []byte) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	if len(data) > 0 {
		if m := mimetype.Detect(data); strings.HasPrefix(m.String(), "image/") {
			return m.String()
		}
	}
	return FallbackType
}
