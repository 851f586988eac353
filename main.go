package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appCart "github.com/Zhima-Mochi/minishop-orders/internal/application/cart"
	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	appRefund "github.com/Zhima-Mochi/minishop-orders/internal/application/refund"
	"github.com/Zhima-Mochi/minishop-orders/internal/config"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/auth"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/email"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
	notificationworker "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/notification/worker"
	infraobs "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/pdf"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	log := zaplogger.Wrap(baseLogger)

	registry := prometrics.New("minishop_orders")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(observability.MUsecaseRequests,
			"Total number of use case invocations.", "use_case", "outcome"),
		observability.MHTTPRequests: registry.Counter(observability.MHTTPRequests,
			"Total number of HTTP requests.", "method", "route", "status"),
		observability.MEmailsSent: registry.Counter(observability.MEmailsSent,
			"Total number of customer emails sent.", "kind", "outcome"),
		observability.MStockReservations: registry.Counter(observability.MStockReservations,
			"Total number of stock reservation attempts.", "outcome"),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(observability.MUsecaseDuration,
			"Duration of use case execution in seconds.", nil, "use_case"),
		observability.MHTTPRequestDuration: registry.Histogram(observability.MHTTPRequestDuration,
			"Duration of HTTP requests in seconds.", nil, "method", "route", "status"),
	}
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), log, counters, histograms)

	productRepo := memory.NewProductRepository()
	cartRepo := memory.NewCartRepository()
	orderRepo := memory.NewOrderRepository()
	if cfg.Env == "dev" {
		seedCatalog(productRepo, log)
	}

	bus := outbox.NewBus(log)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	mailer := email.NewLogMailer(log)
	notificationWorker := notificationworker.New(bus, mailer, log)
	notificationWorker.Start()

	idGenerator := id.NewUUIDGenerator()
	renderer := pdf.NewInvoiceRenderer(cfg.Currency)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	cartService := appCart.NewService(cartRepo, productRepo, cfg.Currency, log)
	orderService := appOrder.NewService(orderRepo, cartRepo, productRepo, idGenerator,
		appOrder.Pricing{TaxRate: cfg.TaxRate, ShippingFee: cfg.ShippingFee}, tel)
	paymentService := appPayment.NewService(orderRepo, cartRepo, productRepo, renderer, mailer, bus, idGenerator, tel)
	refundService := appRefund.NewService(orderRepo, productRepo, bus, log)

	handler := httppresentation.NewHandler(cartService, orderService, paymentService, refundService, tokens, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		log.Info("http_server_stopped")
	}
}

// seedCatalog loads a small demo catalog for local runs.
func seedCatalog(repo *memory.ProductRepository, log observability.Logger) {
	seeds := []struct {
		id, name    string
		price, cost float64
		stock       int
	}{
		{"p1", "Wireless Mouse", 25.00, 11.00, 3},
		{"p2", "Mechanical Keyboard", 89.90, 42.50, 10},
		{"p3", "USB-C Hub", 39.99, 17.25, 25},
		{"p4", "Laptop Stand", 54.50, 23.00, 8},
	}
	for _, s := range seeds {
		product, err := domcatalog.NewProduct(s.id, s.name, s.price, s.cost, s.stock)
		if err != nil {
			log.Warn("seed_product_invalid", observability.F("product_id", s.id), observability.F("error", err.Error()))
			continue
		}
		if err := repo.Upsert(context.Background(), product); err != nil {
			log.Warn("seed_product_failed", observability.F("product_id", s.id), observability.F("error", err.Error()))
		}
	}
	log.Info("catalog_seeded", observability.F("products", len(seeds)))
}
