package facility

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
)

type CreateDTO struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.Join(strings.Fields(d.Name), " ")
	d.Address = strings.Join(strings.Fields(d.Address), " ")
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		if strings.HasPrefix(d.Name, ServicePrefix) {
			return map[string]string{"Name": "reserved prefix"}, false
		}
		return map[string]string{}, true
	}

	out := make(map[string]string)
	for _, err := range errs.(validator.ValidationErrors) {
		out[err.Field()] = err.Tag()
	}
	return out, false
}
