package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"food-delivery-orders/catalog"
	"food-delivery-orders/config"
	"food-delivery-orders/handlers"
	"food-delivery-orders/middleware"
	"food-delivery-orders/routes"
	"food-delivery-orders/services"
	"food-delivery-orders/store"
)

type backend interface {
	store.Repository
	store.Closer
}

// app wires the configured store into the services.
type app struct {
	cfg  *config.Config
	log  *logrus.Logger
	repo backend
	ping func(ctx context.Context) error

	menu     *catalog.Menu
	orders   *services.OrderManager
	delivery *services.DeliveryManager
	users    *services.UserManager
}

func newApp(cfg *config.Config, log *logrus.Logger) (*app, error) {
	repo, ping, err := openStore(cfg.StoreDriver, cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(log),
		services.WithRand(services.NewRand(cfg.RandomSeed)),
		services.WithEstimateBounds(services.EstimateBounds{
			PrepMin:     cfg.PrepMin,
			PrepMax:     cfg.PrepMax,
			DeliveryMin: cfg.DeliveryMin,
			DeliveryMax: cfg.DeliveryMax,
		}),
	}
	menu := catalog.NewMenu(repo)
	return &app{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		ping:     ping,
		menu:     menu,
		orders:   services.NewOrderManager(repo, menu, opts...),
		delivery: services.NewDeliveryManager(repo, opts...),
		users:    services.NewUserManager(repo, opts...),
	}, nil
}

func openStore(driver string, cfg *config.Config, log *logrus.Logger) (backend, func(context.Context) error, error) {
	switch driver {
	case config.DriverJSON:
		fs, err := store.OpenFile(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.DataFile).Info("Using JSON file store")
		return fs, nil, nil
	case config.DriverSQLite:
		db, err := config.OpenDatabase(cfg.DBPath, log)
		if err != nil {
			return nil, nil, err
		}
		gs, err := store.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}
		ping := func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		return gs, ping, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", driver)
}

func (a *app) seed(ctx context.Context) error {
	res, err := services.Seed(ctx, a.menu, a.users)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if res.MenuItems > 0 || res.Users > 0 {
		a.log.WithFields(logrus.Fields{
			"menu_items": res.MenuItems,
			"users":      res.Users,
		}).Info("Sample data inserted")
	}
	return nil
}

func (a *app) router() *gin.Engine {
	if a.cfg.GinMode != "" {
		gin.SetMode(a.cfg.GinMode)
	}
	auth := middleware.NewAuth(a.cfg.JWTSecret)
	h := handlers.New(handlers.Deps{
		Orders:   a.orders,
		Delivery: a.delivery,
		Users:    a.users,
		Menu:     a.menu,
		Auth:     auth,
		Log:      a.log,
		Ping:     a.ping,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(a.log), middleware.CORS())
	routes.SetupRoutes(r, h, auth)
	return r
}

func (a *app) Close() error {
	return a.repo.Close()
}
