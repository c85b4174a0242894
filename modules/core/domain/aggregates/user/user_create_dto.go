package user

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
)

type CreateDTO struct {
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ambassador admin"`
	ChatID   int64  `json:"chat_id"`
}

func (d *CreateDTO) Normalize() {
	d.FullName = strings.Join(strings.Fields(d.FullName), " ")
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
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
