package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/dharsanguruparan/reporte/internal/attachment"
	"github.com/dharsanguruparan/reporte/internal/config"
	"github.com/dharsanguruparan/reporte/internal/log"
	"github.com/dharsanguruparan/reporte/internal/model"
	"github.com/dharsanguruparan/reporte/internal/payload"
	"github.com/dharsanguruparan/reporte/internal/verification"
)

// FormField is the multipart part carrying the JSON form state.
const FormField = "form"

const missingTargetWarning = "No se recibió una POSTURL válida en la URL (?POSTURL=http(s)://...). El envío estará deshabilitado."

type sessionResponse struct {
	Metadata      model.RequestMetadata `json:"metadata"`
	PostURL       string                `json:"postUrl"`
	SubmitEnabled bool                  `json:"submitEnabled"`
	Warning       string                `json:"warning,omitempty"`
	Code          string                `json:"codigoVerificacion,omitempty"`
}

type errorsResponse struct {
	Errors []string `json:"errors"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	params := config.ParseParams(r.URL.Query())
	resp := sessionResponse{
		Metadata:      params.Metadata,
		PostURL:       params.PostURL,
		SubmitEnabled: params.SubmitEnabled(),
	}
	if !resp.SubmitEnabled {
		resp.Warning = missingTargetWarning
	}
	if s.cfg.ExposeCode {
		resp.Code = verification.Code(params.Metadata)
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	params := config.ParseParams(r.URL.Query())
	doc, err := payload.Template(params.Metadata, time.Now())
	if err != nil {
		log.Errorf("template: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, payload.TemplateFilename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// An invalid POSTURL is reported by Build together with every other rule.
	params := config.ParseParams(r.URL.Query())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "expecting multipart form", http.StatusBadRequest)
		return
	}
	form, images, err := readForm(ctx, mr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := s.builder.Build(params, form, images)
	if err != nil {
		var verrs payload.ValidationErrors
		if errors.As(err, &verrs) {
			respondErrors(w, r, verrs)
			return
		}
		log.Errorf("build submission: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	res, err := s.sender.Send(ctx, sub)
	if err != nil {
		var verrs payload.ValidationErrors
		if errors.As(err, &verrs) {
			respondErrors(w, r, verrs)
			return
		}
		log.Errorf("send submission: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !res.Sent {
		render.Status(r, http.StatusBadGateway)
	}
	render.JSON(w, r, res)
}

// readForm walks the multipart body: one JSON "form" part plus any number of
// image parts. Unknown parts are skipped. Images keep their arrival order.
func readForm(ctx context.Context, mr *multipart.Reader) (payload.Form, []model.ImageAttachment, error) {
	var (
		form    payload.Form
		gotForm bool
		sources = map[model.Category][]attachment.Source{}
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return form, nil, fmt.Errorf("failed to read upload: %w", err)
		}
		field := part.FormName()
		if field == FormField {
			err = json.NewDecoder(part).Decode(&form)
			part.Close()
			if err != nil {
				return form, nil, fmt.Errorf("invalid form part: %w", err)
			}
			gotForm = true
			continue
		}
		category, ok := model.CategoryForField(field)
		if !ok {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return form, nil, fmt.Errorf("failed to read %s: %w", field, err)
		}
		// Browsers send an empty, nameless part for an untouched file input.
		if part.FileName() == "" && len(data) == 0 {
			continue
		}
		declared := part.Header.Get("Content-Type")
		if declared == payload.FallbackType {
			declared = ""
		}
		sources[category] = append(sources[category], attachment.Bytes{
			Name: part.FileName(),
			Type: declared,
			Data: data,
		})
	}
	if !gotForm {
		return form, nil, errors.New("missing form part")
	}

	var images []model.ImageAttachment
	for _, c := range model.Categories {
		loaded, err := attachment.Load(ctx, c, sources[c]...)
		if err != nil {
			return form, nil, err
		}
		images = append(images, loaded...)
	}
	return form, images, nil
}

func respondErrors(w http.ResponseWriter, r *http.Request, errs payload.ValidationErrors) {
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, errorsResponse{Errors: errs})
}
