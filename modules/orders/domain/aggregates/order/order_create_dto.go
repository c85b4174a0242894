package order

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
)

type ItemDTO struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type CreateDTO struct {
	FacilityID uuid.UUID `json:"facility_id" validate:"required"`
	Comment    string    `json:"comment"`
	Items      []ItemDTO `json:"items" validate:"required,min=1,dive"`
}

func (d *CreateDTO) Normalize() {
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
