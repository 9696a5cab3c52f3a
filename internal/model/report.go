// Package model contains the report document and the values that flow into
// it. The JSON names are the wire contract with the receiving endpoint.
package model

import (
	"time"
)

// RequestMetadata identifies the client the report is about. It is read once
// from the addressing parameters and never edited by the technician.
type RequestMetadata struct {
	ID            string `json:"id"`
	Ciudad        string `json:"ciudad"`
	NIT           string `json:"nit"`
	NombreEmpresa string `json:"nombreEmpresa"`
}

// EquipmentItem is one row of installed equipment or material.
type EquipmentItem struct {
	Nombre        string  `json:"nombre"`
	Cantidad      float64 `json:"cantidad"`
	Unidad        string  `json:"unidad"`
	Marca         string  `json:"marca"`
	Modelo        string  `json:"modelo"`
	Serial        string  `json:"serial"`
	Observaciones string  `json:"observaciones"`
}

// HeightWorkInfo records whether work at height was performed.
type HeightWorkInfo struct {
	Requiere bool   `json:"requiere"`
	Detalles string `json:"detalles"`
}

// SubmissionMetadata is RequestMetadata stamped with the submission instant.
type SubmissionMetadata struct {
	RequestMetadata
	SubmittedAt time.Time `json:"submittedAt"`
}

// ReportPayload is the canonical document sent as payload.json.
type ReportPayload struct {
	Metadata                        SubmissionMetadata `json:"metadata"`
	DescripcionServicio             string             `json:"descripcionServicio"`
	EquiposMaterialesInstalados     []EquipmentItem    `json:"equiposMaterialesInstalados"`
	TrabajoEnAlturas                HeightWorkInfo     `json:"trabajoEnAlturas"`
	ObservacionesGenerales          string             `json:"observacionesGenerales"`
	ActividadesPendientesONovedades string             `json:"actividadesPendientesONovedades"`
}

// Category is the upload slot an image was placed in.
type Category string

const (
	CategoryAntes   Category = "antes"
	CategoryDurante Category = "durante"
	CategoryDespues Category = "despues"
)

// Categories lists the slots in the order their parts are written.
var Categories = []Category{CategoryAntes, CategoryDurante, CategoryDespues}

// FieldName is the multipart field name used for images of this category.
func (c Category) FieldName() string {
	switch c {
	case CategoryAntes:
		return "imagenesAntes"
	case CategoryDurante:
		return "imagenesDurante"
	case CategoryDespues:
		return "imagenesDespues"
	}
	return ""
}

// Label is the human facing name of the slot.
func (c Category) Label() string {
	switch c {
	case CategoryAntes:
		return "Antes"
	case CategoryDurante:
		return "Durante"
	case CategoryDespues:
		return "Después"
	}
	return string(c)
}

// CategoryForField maps a multipart field name back to its category.
func CategoryForField(field string) (Category, bool) {
	for _, c := range Categories {
		if c.FieldName() == field {
			return c, true
		}
	}
	return "", false
}

// ImageAttachment is one photo ready to be framed into the multipart body.
type ImageAttachment struct {
	Category Category
	Filename string
	MimeType string
	Bytes    []byte
}
