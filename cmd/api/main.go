package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/ports"
	"github.com/jhoicas/retail-stock-api/internal/application/sales"
	"github.com/jhoicas/retail-stock-api/internal/application/transfer"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/events"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/metrics"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/numbering"
	infrapdf "github.com/jhoicas/retail-stock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/retail-stock-api/internal/interfaces/http"
	"github.com/jhoicas/retail-stock-api/pkg/config"
	"github.com/jhoicas/retail-stock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	// Persistencia: PostgreSQL en despliegue, memoria para demos y desarrollo local.
	var txRunner inventory.TxRunner
	switch cfg.DB.Driver {
	case config.DriverMemory:
		txRunner = memory.NewStore()
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner = postgres.NewTxRunner(pool)
	}

	// Consecutivos de documentos: Redis si está configurado, si no en proceso.
	var numberer ports.DocumentNumberer
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		numberer = numbering.NewRedisNumberer(rdb, cfg.Redis.KeyPrefix)
	} else {
		numberer = numbering.NewSequence()
		log.Warn().Msg("REDIS_ADDR vacío: consecutivos en proceso")
	}

	var publisher ports.EventPublisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer kp.Close()
		publisher = kp
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	clamps := metrics.NewClampCounter(registry)

	ledger := inventory.NewStockLedger(log.Named("ledger"), clamps)
	applier := inventory.NewMovementApplier(ledger)

	saleUC := sales.NewSaleUseCase(txRunner, applier, numberer, publisher, infrapdf.NewReceiptGenerator(), log.Named("sales"))
	returnUC := sales.NewReturnUseCase(txRunner, applier, numberer, publisher, log.Named("returns"))
	transferUC := transfer.NewTransferUseCase(txRunner, applier, numberer, publisher, log.Named("transfers"), cfg.Inventory.CentralWarehouseID)
	queryUC := inventory.NewStockQueryUseCase(txRunner)
	replenishmentUC := inventory.NewReplenishmentUseCase(txRunner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.EnableDocs {
		if _, err := os.Stat("./docs/swagger.json"); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: "./docs/swagger.json",
				Path:     "docs",
				Title:    "Retail Stock API",
			}))
		} else {
			log.Warn().Msg("docs/swagger.json no encontrado: /docs deshabilitado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get(cfg.HTTP.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sales:         saleUC,
		Returns:       returnUC,
		Transfers:     transferUC,
		StockQuery:    queryUC,
		Replenishment: replenishmentUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
