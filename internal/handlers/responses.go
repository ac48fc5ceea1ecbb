package handlers

import (
	"time"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
)

type projectResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Prefix        string    `json:"prefix"`
	DefaultLocale string    `json:"defaultLocale"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Prefix:        p.Prefix,
		DefaultLocale: p.DefaultLocale,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toProjectResponses(projects []domain.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out
}

type localeResponse struct {
	Code      string    `json:"code"`
	Label     string    `json:"label,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

func toLocaleResponse(l domain.ProjectLocale) localeResponse {
	return localeResponse{
		Code:      l.Code,
		Label:     l.Label,
		IsDefault: l.IsDefault,
		CreatedAt: l.CreatedAt,
	}
}

func toLocaleResponses(locales []domain.ProjectLocale) []localeResponse {
	out := make([]localeResponse, 0, len(locales))
	for _, l := range locales {
		out = append(out, toLocaleResponse(l))
	}
	return out
}

type keyResponse struct {
	ID        string    `json:"id"`
	FullKey   string    `json:"fullKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toKeyResponse(k domain.Key) keyResponse {
	return keyResponse{
		ID:        k.ID,
		FullKey:   k.FullKey,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

// keyRowResponse is one row of the joined key list view. Value stays nullable
// so missing translations serialise as null rather than "".
type keyRowResponse struct {
	KeyID               string    `json:"keyId"`
	FullKey             string    `json:"fullKey"`
	Value               *string   `json:"value"`
	IsMachineTranslated bool      `json:"isMachineTranslated"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func toKeyRowResponses(rows []domain.KeyRow) []keyRowResponse {
	out := make([]keyRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, keyRowResponse{
			KeyID:               row.KeyID,
			FullKey:             row.FullKey,
			Value:               row.Value,
			IsMachineTranslated: row.IsMachineTranslated,
			UpdatedAt:           row.UpdatedAt,
		})
	}
	return out
}

type translationResponse struct {
	KeyID               string    `json:"keyId"`
	Locale              string    `json:"locale"`
	Value               *string   `json:"value"`
	IsMachineTranslated bool      `json:"isMachineTranslated"`
	UpdatedAt           time.Time `json:"updatedAt"`
	UpdatedBy           string    `json:"updatedBy,omitempty"`
	UpdatedSource       string    `json:"updatedSource,omitempty"`
}

func toTranslationResponse(t domain.Translation) translationResponse {
	return translationResponse{
		KeyID:               t.KeyID,
		Locale:              t.Locale,
		Value:               t.Value,
		IsMachineTranslated: t.IsMachineTranslated,
		UpdatedAt:           t.UpdatedAt,
		UpdatedBy:           t.UpdatedBy,
		UpdatedSource:       string(t.UpdatedSource),
	}
}

type jobResponse struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	Mode          string    `json:"mode"`
	TargetLocale  string    `json:"targetLocale"`
	KeyIDs        []string  `json:"keyIds,omitempty"`
	Status        string    `json:"status"`
	CompletedKeys int       `json:"completedKeys"`
	FailedKeys    int       `json:"failedKeys"`
	TotalKeys     int       `json:"totalKeys"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toJobResponse(j domain.TranslationJob) jobResponse {
	return jobResponse{
		ID:            j.ID,
		ProjectID:     j.ProjectID,
		Mode:          string(j.Mode),
		TargetLocale:  j.TargetLocale,
		KeyIDs:        j.KeyIDs,
		Status:        string(j.Status),
		CompletedKeys: j.CompletedKeys,
		FailedKeys:    j.FailedKeys,
		TotalKeys:     j.TotalKeys,
		CreatedBy:     j.CreatedBy,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func toJobResponses(jobs []domain.TranslationJob) []jobResponse {
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	return out
}
