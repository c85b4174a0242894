package composables

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
)

var ErrNoUser = errors.New("no user in context")

// AuthSubject is the authenticated caller as seen by middleware and
// controllers. The core user aggregate satisfies it.
type AuthSubject interface {
	ID() uuid.UUID
	IsAdmin() bool
}

func WithUser(ctx context.Context, user AuthSubject) context.Context {
	return context.WithValue(ctx, constants.UserKey, user)
}

func UseUser(ctx context.Context) (AuthSubject, error) {
	user, ok := ctx.Value(constants.UserKey).(AuthSubject)
	if !ok {
		return nil, ErrNoUser
	}
	return user, nil
}

// UseLogger returns the request-scoped field logger, falling back to the
// standard logger when the middleware did not run (tests, CLI paths).
func UseLogger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger
}
