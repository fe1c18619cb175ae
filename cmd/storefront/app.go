package main

import (
	"fmt"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/session"
	"github.com/aaravmahajanofficial/storefront/pkg/dvnet"
	"github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/aaravmahajanofficial/storefront/web"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type app struct {
	catalog models.Catalog
	store   cache.Cache
	// memory is set when carts live in process memory and need sweeping.
	memory  cache.MemoryCache
	handler http.Handler
}

func newApp(cfg *config.Config) (*app, error) {
	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	a := &app{catalog: catalog}

	var payLimiter repository.RateLimitRepository

	switch cfg.Storage.Backend {
	case config.StorageRedis:
		client, err := repository.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		a.store = cache.NewRedisCache(client, cfg.Session.IdleTimeout)
		if cfg.RateConfig.MaxAttempts > 0 {
			payLimiter = repository.NewRedisRateLimitRepository(client, cfg.RateConfig, "pay_attempts")
		}
	default:
		a.memory = cache.NewMemoryCache(cfg.Session.IdleTimeout)
		a.store = a.memory
		if cfg.RateConfig.MaxAttempts > 0 {
			payLimiter = repository.NewMemoryRateLimitRepository(cfg.RateConfig)
		}
	}

	provider := newPaymentProvider(cfg)

	productRepo := repository.NewProductRepo(catalog)
	cartRepo := repository.NewCartRepo(a.store, cfg.Session.IdleTimeout, cfg.Storage.Timeout)

	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	paymentService := service.NewPaymentService(provider, cartService)

	sessions := session.NewManager(cfg.Session)
	// carts slide with the cookie, not only on cart routes
	sessions.OnActive(cartRepo.TouchCart)

	healthChecks, err := health.NewHealthHandler(cfg, &health.Endpoints{Products: productRepo})
	if err != nil {
		return nil, err
	}

	a.handler = newRouter(routes{
		products: handlers.NewProductHandler(productService),
		carts:    handlers.NewCartHandler(cartService),
		payments: handlers.NewPaymentHandler(paymentService),
		sessions: sessions,
		health:   healthChecks.Handler(),
		payLimit: payLimiter,
	}, cfg.CORS.AllowedOrigins)

	return a, nil
}

func loadCatalog(cfg config.Catalog) (models.Catalog, error) {
	if cfg.Path == "" {
		catalog, err := repository.LoadCatalog(web.DefaultCatalog())
		if err != nil {
			return models.Catalog{}, fmt.Errorf("bundled catalog: %w", err)
		}
		return catalog, nil
	}

	return repository.LoadCatalogFile(cfg.Path)
}

func newPaymentProvider(cfg *config.Config) service.PaymentURLProvider {
	if cfg.Gateway.Provider == config.ProviderStripe {
		client := stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Gateway.Timeout, "")
		return service.NewStripeProvider(client, service.StripeCheckoutOptions{
			Currency:   cfg.Gateway.Currency,
			SuccessURL: cfg.Gateway.SuccessURL,
			CancelURL:  cfg.Gateway.CancelURL,
		})
	}

	return service.NewDVNetProvider(dvnet.NewClient(cfg.Gateway.Host, cfg.Gateway.APIKey, cfg.Gateway.Timeout))
}

type routes struct {
	products *handlers.ProductHandler
	carts    *handlers.CartHandler
	payments *handlers.PaymentHandler
	sessions *session.Manager
	health   http.Handler
	// payLimit throttles payment link creation per session; nil disables it.
	payLimit middleware.Limiter
}

func (r routes) throttlePayments(h http.HandlerFunc) http.Handler {
	if r.payLimit == nil {
		return h
	}

	return middleware.RateLimit(r.payLimit, func(req *http.Request) string {
		id, _ := session.IDFromContext(req.Context())
		return id
	})(h)
}

func newRouter(r routes, corsOrigins []string) http.Handler {

	// every API route runs inside a session
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/products", r.products.ListProducts())
	apiMux.HandleFunc("GET /api/products/{id}", r.products.GetProduct())
	apiMux.HandleFunc("GET /api/cart", r.carts.GetCart())
	apiMux.HandleFunc("POST /api/cart/add", r.carts.AddItem())
	apiMux.HandleFunc("POST /api/cart/remove", r.carts.RemoveItem())
	apiMux.HandleFunc("POST /api/cart/clear", r.carts.ClearCart())
	apiMux.Handle("POST /api/pay-url", r.throttlePayments(r.payments.CreatePayURL()))
	apiMux.Handle("POST /api/checkout", r.throttlePayments(r.payments.Checkout()))

	routerMux := http.NewServeMux()
	routerMux.Handle("/api/", middleware.CORS(corsOrigins)(r.sessions.Middleware(apiMux)))
	routerMux.Handle("GET /health", r.health)
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("/", web.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	handler = metrics.Middleware(handler)

	return handler
}
