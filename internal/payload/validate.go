package payload

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dharsanguruparan/reporte/internal/config"
	"github.com/dharsanguruparan/reporte/internal/model"
	"github.com/dharsanguruparan/reporte/internal/verification"
)

// ValidationErrors lists every rule the form broke. Nothing is sent while it
// is non-empty.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "\n")
}

// validator.Validate caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("target", func(fl validator.FieldLevel) bool {
		return config.ValidateTarget(fl.Field().String()) == nil
	})
	return v
}

type formRules struct {
	Descripcion   string          `validate:"notblank"`
	Alturas       HeightSelection `validate:"oneof=si no"`
	Observaciones string          `validate:"notblank"`
	Actividades   string          `validate:"notblank"`
	Antes         int             `validate:"min=1"`
	Durante       int             `validate:"min=1"`
	Despues       int             `validate:"min=1"`
	PostURL       string          `validate:"target"`
}

type equipmentRules struct {
	Nombre   string  `validate:"notblank"`
	Cantidad float64 `validate:"gt=0"`
	Unidad   string  `validate:"notblank"`
}

var formMessages = map[string]string{
	"Descripcion":   "La descripción del servicio es obligatoria.",
	"Alturas":       "Indique si se realizó trabajo en alturas (sí/no).",
	"Observaciones": "Las observaciones generales son obligatorias.",
	"Actividades":   "Las actividades pendientes / novedades son obligatorias.",
	"Antes":         "Adjunte al menos una imagen en la categoría Antes.",
	"Durante":       "Adjunte al menos una imagen en la categoría Durante.",
	"Despues":       "Adjunte al menos una imagen en la categoría Después.",
	"PostURL":       config.ErrInvalidTarget.Error() + ".",
}

var equipmentMessages = map[string]string{
	"Nombre":   "el nombre es obligatorio.",
	"Cantidad": "la cantidad debe ser mayor que cero.",
	"Unidad":   "la unidad es obligatoria.",
}

const (
	codeMessage       = "El código de verificación no es válido."
	emptyImageMessage = "Imagen vacía en la categoría %s."
)

// Validate checks the form against every rule and returns all failures.
// items must already be the touched rows.
func Validate(params config.Params, form Form, items []model.EquipmentItem, images []model.ImageAttachment) ValidationErrors {
	var errs ValidationErrors

	counts := map[model.Category]int{}
	empty := map[model.Category]bool{}
	for _, img := range images {
		if img.Category.FieldName() == "" {
			errs = append(errs, fmt.Sprintf("Categoría de imagen desconocida: %q.", img.Category))
			continue
		}
		if len(img.Bytes) == 0 {
			empty[img.Category] = true
			continue
		}
		counts[img.Category]++
	}

	rules := formRules{
		Descripcion:   form.DescripcionServicio,
		Alturas:       form.TrabajoEnAlturas.Seleccion,
		Observaciones: form.ObservacionesGenerales,
		Actividades:   form.ActividadesPendientesONovedades,
		Antes:         counts[model.CategoryAntes],
		Durante:       counts[model.CategoryDurante],
		Despues:       counts[model.CategoryDespues],
		PostURL:       params.PostURL,
	}
	errs = append(errs, messages(validate.Struct(rules), "", formMessages)...)
	for _, c := range model.Categories {
		if empty[c] {
			errs = append(errs, fmt.Sprintf(emptyImageMessage, c.Label()))
		}
	}

	for i, item := range items {
		prefix := fmt.Sprintf("Equipo/Material #%d: ", i+1)
		row := equipmentRules{Nombre: item.Nombre, Cantidad: item.Cantidad, Unidad: item.Unidad}
		errs = append(errs, messages(validate.Struct(row), prefix, equipmentMessages)...)
	}

	if !verification.Matches(params.Metadata, form.CodigoVerificacion) {
		errs = append(errs, codeMessage)
	}
	return errs
}

func messages(err error, prefix string, table map[string]string) []string {
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{prefix + err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := table[fe.StructField()]
		if !ok {
			msg = fmt.Sprintf("%s no es válido.", fe.StructField())
		}
		out = append(out, prefix+msg)
	}
	return out
}
