package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	PoolKey   ContextKey = "pool"
	TxKey     ContextKey = "tx"
	UserKey   ContextKey = "user"
	LoggerKey ContextKey = "logger"
)

// Validate is the shared validator instance used by DTO Ok() methods.
var Validate = validator.New(validator.WithRequiredStructEnabled())
