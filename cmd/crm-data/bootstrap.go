package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/eventbus"
)

type appHandles struct {
	conf *configuration.Configuration
	pool *pgxpool.Pool
	app  application.Application
}

// bootstrap loads configuration, connects to the database, registers all
// modules and applies their schema. The returned context carries the pool
// for repository calls.
func bootstrap(ctx context.Context) (context.Context, *appHandles, func(), error) {
	conf := configuration.Use()
	logger := conf.Logger()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return ctx, nil, nil, withCode(exitDB, fmt.Errorf("connect to database: %w", err))
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return ctx, nil, nil, withCode(exitDB, fmt.Errorf("load modules: %w", err))
	}
	if err := app.Migrations().Apply(ctx, pool); err != nil {
		pool.Close()
		return ctx, nil, nil, withCode(exitDBWrite, fmt.Errorf("apply schema: %w", err))
	}

	handles := &appHandles{conf: conf, pool: pool, app: app}
	cleanup := func() {
		pool.Close()
		conf.Unload()
	}
	return composables.WithPool(ctx, pool), handles, cleanup, nil
}
