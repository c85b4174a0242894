package visit

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
)

type CreateDTO struct {
	FacilityID          uuid.UUID      `json:"facility_id" validate:"required"`
	Kind                string         `json:"kind"`
	VisitedAt           time.Time      `json:"visited_at"`
	Comment             string         `json:"comment"`
	Payload             map[string]any `json:"payload"`
	AvailableProductIDs []uuid.UUID    `json:"available_product_ids"`
	TastedProductIDs    []uuid.UUID    `json:"tasted_product_ids"`
}

func (d *CreateDTO) Normalize() {
	d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
	if d.Kind == "" {
		d.Kind = string(KindVisit)
	}
	if d.VisitedAt.IsZero() {
		d.VisitedAt = time.Now()
	}
	d.Comment = strings.TrimSpace(d.Comment)
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}

	out := make(map[string]string)
	for _, err := range errs.(validator.ValidationErrors) {
		out[err.Field()] = err.Tag()
	}
	return out, false
}
