package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/dharsanguruparan/reporte/internal/model"
)

// ErrInvalidTarget is returned when POSTURL is missing or not an http(s) URL.
var ErrInvalidTarget = errors.New("POSTURL inválida o ausente")

// Params are the addressing parameters a report link carries. They are read
// once per session and never edited by the technician.
type Params struct {
	Metadata model.RequestMetadata
	// PostURL is the submission target after the https upgrade.
	PostURL string
}

// ParseParams reads the addressing parameters from an already percent-decoded
// query. Only the first value of a repeated key is used.
func ParseParams(q url.Values) Params {
	return Params{
		Metadata: model.RequestMetadata{
			ID:            strings.TrimSpace(q.Get("id")),
			Ciudad:        strings.TrimSpace(q.Get("ciudad")),
			NIT:           strings.TrimSpace(q.Get("nit")),
			NombreEmpresa: strings.TrimSpace(q.Get("nombreEmpresa")),
		},
		PostURL: UpgradeScheme(strings.TrimSpace(q.Get("POSTURL"))),
	}
}

// Values renders the parameters back into a query, e.g. to build a link.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("id", p.Metadata.ID)
	v.Set("ciudad", p.Metadata.Ciudad)
	v.Set("nit", p.Metadata.NIT)
	v.Set("nombreEmpresa", p.Metadata.NombreEmpresa)
	v.Set("POSTURL", p.PostURL)
	return v
}

// SubmitEnabled reports whether the submit action should be offered at all.
func (p Params) SubmitEnabled() bool {
	return ValidateTarget(p.PostURL) == nil
}

// UpgradeScheme rewrites http:// to https:// so redirects on the receiving
// side cannot turn the POST into a GET.
func UpgradeScheme(raw string) string {
	if len(raw) >= len("http://") && strings.EqualFold(raw[:len("http://")], "http://") {
		return "https://" + raw[len("http://"):]
	}
	return raw
}

// ValidateTarget checks that raw is an absolute http or https URL with a host.
func ValidateTarget(raw string) error {
	if raw == "" {
		return ErrInvalidTarget
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidTarget
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidTarget
	}
	if u.Host == "" {
		return ErrInvalidTarget
	}
	return nil
}
