// Package application wires modules together: services are registered by
// type, controllers attach themselves to the router, schema files accumulate
// in the migration registry.
package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/eventbus"
)

// Controller is anything that can attach routes to the root router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module registers its services and controllers against the application.
type Module interface {
	Register(app Application) error
	Name() string
}

type Application interface {
	Service(service any) any
	RegisterServices(services ...any)
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	Migrations() *SchemaRegistry
	Pool() *pgxpool.Pool
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:       opts.Pool,
		eventBus:   opts.EventBus,
		logger:     opts.Logger,
		services:   map[reflect.Type]any{},
		migrations: NewSchemaRegistry(),
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	services    map[reflect.Type]any
	controllers []Controller
	middleware  []mux.MiddlewareFunc
	migrations  *SchemaRegistry
}

// Service returns the registered service matching the given value's type.
// Panics when the service was never registered: a missing service is a
// programming error, not a runtime condition.
func (a *application) Service(service any) any {
	key := reflect.TypeOf(service)
	svc, ok := a.services[key]
	if !ok {
		panic(fmt.Sprintf("application: service %s is not registered", key))
	}
	return svc
}

func (a *application) RegisterServices(services ...any) {
	for _, s := range services {
		t := reflect.TypeOf(s)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		a.services[t] = s
	}
}

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) Controllers() []Controller         { return a.controllers }
func (a *application) Middleware() []mux.MiddlewareFunc  { return a.middleware }
func (a *application) Migrations() *SchemaRegistry       { return a.migrations }
func (a *application) Pool() *pgxpool.Pool               { return a.pool }
func (a *application) Logger() *logrus.Logger            { return a.logger }
func (a *application) EventPublisher() eventbus.EventBus { return a.eventBus }
