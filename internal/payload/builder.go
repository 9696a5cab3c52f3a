package payload

import (
	"strings"
	"time"

	"github.com/dharsanguruparan/reporte/internal/config"
	"github.com/dharsanguruparan/reporte/internal/model"
)

// Submission is a validated report ready to be framed and posted.
type Submission struct {
	Target  string
	Payload model.ReportPayload
	// Images are grouped by category (antes, durante, despues) and keep the
	// user's selection order inside each group.
	Images []model.ImageAttachment
}

// Builder turns form state into a Submission. Now stamps submittedAt and
// defaults to time.Now.
type Builder struct {
	Now func() time.Time
}

var defaultBuilder = Builder{}

// Build validates and assembles a submission with the current time.
func Build(params config.Params, form Form, images []model.ImageAttachment) (*Submission, error) {
	return defaultBuilder.Build(params, form, images)
}

// Build returns either a complete Submission or ValidationErrors listing
// every failed rule; it never returns both.
func (b Builder) Build(params config.Params, form Form, images []model.ImageAttachment) (*Submission, error) {
	items := touchedItems(form.Equipos)
	if errs := Validate(params, form, items, images); len(errs) > 0 {
		return nil, errs
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return &Submission{
		Target:  params.PostURL,
		Payload: NewReport(params.Metadata, form, items, now().UTC()),
		Images:  orderImages(images),
	}, nil
}

// NewReport assembles the canonical document. items are used as given.
func NewReport(meta model.RequestMetadata, form Form, items []model.EquipmentItem, submittedAt time.Time) model.ReportPayload {
	if items == nil {
		items = []model.EquipmentItem{}
	}
	return model.ReportPayload{
		Metadata: model.SubmissionMetadata{
			RequestMetadata: meta,
			SubmittedAt:     submittedAt.UTC(),
		},
		DescripcionServicio:         strings.TrimSpace(form.DescripcionServicio),
		EquiposMaterialesInstalados: items,
		TrabajoEnAlturas: model.HeightWorkInfo{
			Requiere: form.TrabajoEnAlturas.Seleccion == HeightYes,
			Detalles: strings.TrimSpace(form.TrabajoEnAlturas.Detalles),
		},
		ObservacionesGenerales:          strings.TrimSpace(form.ObservacionesGenerales),
		ActividadesPendientesONovedades: strings.TrimSpace(form.ActividadesPendientesONovedades),
	}
}

func orderImages(images []model.ImageAttachment) []model.ImageAttachment {
	out := make([]model.ImageAttachment, 0, len(images))
	for _, c := range model.Categories {
		for _, img := range images {
			if img.Category == c {
				out = append(out, img)
			}
		}
	}
	return out
}
