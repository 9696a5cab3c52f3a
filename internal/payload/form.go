// Package payload validates the technician's form, builds the canonical
// report document and frames it, together with the photos, into the
// multipart body that is posted to the client's endpoint.
package payload

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dharsanguruparan/reporte/internal/model"
)

// HeightSelection is the tri-state "work at height" control. The zero value
// means the technician has not answered yet.
type HeightSelection string

const (
	HeightUnset HeightSelection = ""
	HeightYes   HeightSelection = "si"
	HeightNo    HeightSelection = "no"
)

// HeightForm is the raw state of the work-at-height section.
type HeightForm struct {
	Seleccion HeightSelection `json:"seleccion"`
	Detalles  string          `json:"detalles"`
}

// UnmarshalJSON also accepts the report shape {"requiere": bool}, so a
// filled template can be read back as form state.
func (h *HeightForm) UnmarshalJSON(data []byte) error {
	var raw struct {
		Seleccion *HeightSelection `json:"seleccion"`
		Detalles  string           `json:"detalles"`
		Requiere  *bool            `json:"requiere"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = HeightForm{Detalles: raw.Detalles}
	switch {
	case raw.Seleccion != nil:
		h.Seleccion = *raw.Seleccion
	case raw.Requiere != nil && *raw.Requiere:
		h.Seleccion = HeightYes
	case raw.Requiere != nil:
		h.Seleccion = HeightNo
	}
	return nil
}

// Form is the raw form state handed over by the UI. Strings are taken as
// typed; trimming happens while building.
type Form struct {
	DescripcionServicio             string                `json:"descripcionServicio"`
	Equipos                         []model.EquipmentItem `json:"equiposMaterialesInstalados"`
	TrabajoEnAlturas                HeightForm            `json:"trabajoEnAlturas"`
	ObservacionesGenerales          string                `json:"observacionesGenerales"`
	ActividadesPendientesONovedades string                `json:"actividadesPendientesONovedades"`
	CodigoVerificacion              string                `json:"codigoVerificacion"`
}

// Document is the content of a form file: either bare form state or a filled
// report template, whose metadata block is kept apart.
type Document struct {
	Form
	Metadata *model.SubmissionMetadata `json:"metadata,omitempty"`
}

// DecodeDocument reads one Document and rejects fields neither shape knows.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode form: %w", err)
	}
	return doc, nil
}

// isBlank reports whether the row was never touched.
func isBlank(item model.EquipmentItem) bool {
	return item.Cantidad == 0 &&
		strings.TrimSpace(item.Nombre) == "" &&
		strings.TrimSpace(item.Unidad) == "" &&
		strings.TrimSpace(item.Marca) == "" &&
		strings.TrimSpace(item.Modelo) == "" &&
		strings.TrimSpace(item.Serial) == "" &&
		strings.TrimSpace(item.Observaciones) == ""
}

func trimItem(item model.EquipmentItem) model.EquipmentItem {
	return model.EquipmentItem{
		Nombre:        strings.TrimSpace(item.Nombre),
		Cantidad:      item.Cantidad,
		Unidad:        strings.TrimSpace(item.Unidad),
		Marca:         strings.TrimSpace(item.Marca),
		Modelo:        strings.TrimSpace(item.Modelo),
		Serial:        strings.TrimSpace(item.Serial),
		Observaciones: strings.TrimSpace(item.Observaciones),
	}
}

// touchedItems drops untouched rows and trims the rest, keeping order.
func touchedItems(items []model.EquipmentItem) []model.EquipmentItem {
	out := make([]model.EquipmentItem, 0, len(items))
	for _, item := range items {
		if isBlank(item) {
			continue
		}
		out = append(out, trimItem(item))
	}
	return out
}
