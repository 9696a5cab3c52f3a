package payload

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/dharsanguruparan/reporte/internal/model"
)

// TemplateFilename is the suggested name of the downloadable template.
const TemplateFilename = "reporte_servicio.json"

// Template renders an empty report for meta as indented JSON. It is a
// convenience export and skips validation entirely.
func Template(meta model.RequestMetadata, now time.Time) ([]byte, error) {
	report := NewReport(meta, Form{TrabajoEnAlturas: HeightForm{Seleccion: HeightNo}}, nil, now)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
