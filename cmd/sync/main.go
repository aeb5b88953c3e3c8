package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appsync "github.com/jhoicas/kaspi-sync/internal/application/sync"
	"github.com/jhoicas/kaspi-sync/internal/domain/catalog"
	"github.com/jhoicas/kaspi-sync/internal/infrastructure/feed"
	"github.com/jhoicas/kaspi-sync/internal/infrastructure/moysklad"
	"github.com/jhoicas/kaspi-sync/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/kaspi-sync/internal/interfaces/http"
	"github.com/jhoicas/kaspi-sync/pkg/config"
	"github.com/jhoicas/kaspi-sync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.Level,
		File:  cfg.App.LogFile,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando servicio de sincronización")

	if !cfg.MoySklad.HasCredentials() {
		log.Warn().Msg("MS_LOGIN/MS_PASSWORD sin definir: las pasadas fallarán hasta configurarlos")
	}

	ctx := context.Background()

	// Diario de corridas opcional: sin DATABASE_URL el servicio corre igual.
	var journal appsync.RunJournal
	if cfg.DB.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		repo := postgres.NewRunJournalRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("esquema del diario de corridas")
		}
		journal = repo
	}

	client := moysklad.NewClient(cfg.MoySklad, log.Zerolog())
	assembler := appsync.NewAssembler(cfg.Feed, catalog.PriceConfig{
		PriceAttributeID: cfg.MoySklad.PriceAttributeID,
		KaspiPriceTypeID: cfg.MoySklad.KaspiPriceTypeID,
	}, log.Zerolog())
	builder := feed.NewBuilder()
	writer := feed.NewWriter(cfg.Feed.OutputDir, cfg.Feed.XMLFile, log.Zerolog())

	orchestrator := appsync.NewOrchestrator(appsync.OrchestratorDeps{
		Tokens:    client,
		Catalog:   client,
		Stock:     client,
		Assembler: assembler,
		Builder:   builder,
		Writer:    writer,
		Journal:   journal,
		Log:       log.Zerolog(),
		Interval:  cfg.Sync.Interval,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Control:   orchestrator,
		FeedPath:  writer.PrimaryPath(),
		JWTSecret: cfg.Control.JWTSecret,
		AppName:   cfg.App.Name,
	})

	loopCtx, cancelLoop := context.WithCancel(ctx)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		orchestrator.Loop(loopCtx)
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servicio...")

	cancelLoop()
	select {
	case <-loopDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("el ciclo de sincronización no terminó a tiempo")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("servicio detenido")
}
