package product

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
)

type CreateDTO struct {
	Line     string `json:"line" validate:"required"`
	Flavor   string `json:"flavor" validate:"required"`
	Category string `json:"category" validate:"required,oneof=LINE_MARKER FLAVOR TOBACCO"`
	Price    string `json:"price" validate:"omitempty,numeric"`
}

func (d *CreateDTO) Normalize() {
	d.Line = strings.TrimSpace(d.Line)
	d.Flavor = strings.TrimSpace(d.Flavor)
	d.Category = strings.ToUpper(strings.TrimSpace(d.Category))
	d.Price = strings.TrimSpace(d.Price)
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
