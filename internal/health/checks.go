package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/hellofresh/health-go/v5"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

type Endpoints struct {
	Products repository.ProductRepository
}

func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "catalog",
			Timeout:   time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				if endpoints.Products == nil {
					return errors.New("catalog is not loaded")
				}
				if len(endpoints.Products.GetCatalog(ctx).Products) == 0 {
					return errors.New("catalog has no products")
				}
				return nil
			},
		},
		{
			Name:      "payment-gateway",
			Timeout:   time.Second,
			SkipOnErr: true,
			Check: func(context.Context) error {
				return gatewayConfigured(cfg)
			},
		},
	}

	if cfg.Storage.Backend == config.StorageRedis {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(
				healthRedis.Config{
					DSN: cfg.RedisConnect.GetDSN(),
				},
			),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

// gatewayConfigured only checks settings; probing the provider would create
// wallets or sessions as a side effect.
func gatewayConfigured(cfg *config.Config) error {
	switch cfg.Gateway.Provider {
	case config.ProviderDVNet:
		if cfg.Gateway.Host == "" || cfg.Gateway.APIKey == "" {
			return errors.New("dvnet host or api key is not configured")
		}
	case config.ProviderStripe:
		if cfg.Stripe.APIKey == "" {
			return errors.New("stripe api key is not configured")
		}
	}
	return nil
}
