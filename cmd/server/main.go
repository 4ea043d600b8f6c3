package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/skate-ticket-service/internal/config"
	"github.com/iliyamo/skate-ticket-service/internal/database"
	"github.com/iliyamo/skate-ticket-service/internal/handler"
	"github.com/iliyamo/skate-ticket-service/internal/i18n"
	"github.com/iliyamo/skate-ticket-service/internal/middleware"
	"github.com/iliyamo/skate-ticket-service/internal/queue"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
	"github.com/iliyamo/skate-ticket-service/internal/router"
	"github.com/iliyamo/skate-ticket-service/internal/service"
	"github.com/iliyamo/skate-ticket-service/internal/sms"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	messages, err := i18n.New(cfg.CatalogDir)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// Repositories
	tickets := repository.NewTicketRepo(db)
	sharpeners := repository.NewSharpenerRepo(db)
	tokens := repository.NewTokenRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	invites := repository.NewInvitationRepo(db)

	// Outbound integrations
	publisher := queue.NewPublisher(cfg.AMQPURL)
	provider := service.NewHTTPProvider(cfg.PaymentKey)
	sender := sms.New(cfg.SMSToken, cfg.SMSSender)

	// Lifecycle coordinators
	intake := service.NewIntake(tickets, publisher, cfg.PriceDKK, cfg.MinSkateSize, cfg.MaxSkateSize, cfg.BaseURL)
	recon := &service.Reconciler{Store: tickets, Provider: provider, Dispatch: publisher}
	claims := &service.Coordinator{Store: tickets, Dispatch: publisher, BaseURL: cfg.BaseURL}

	// The SMS consumer keeps itself connected through broker restarts.
	go func() {
		if err := queue.StartNotifyConsumer(cfg.AMQPURL, sender, messages); err != nil {
			log.Printf("notify-consumer stopped: %v", err)
		}
	}()

	// Handlers
	authH := handler.NewAuthHandler(cfg, sharpeners, tokens)
	ticketH := handler.NewTicketHandler(intake, recon, tickets, feedback)
	paymentH := handler.NewPaymentHandler(cfg, recon)
	sharpenerH := handler.NewSharpenerHandler(tickets, feedback, claims)
	inviteH := handler.NewInvitationHandler(cfg, invites, sharpeners, authH)

	e := echo.New()

	// Redis-backed token bucket for the public surface; degrades to a
	// pass-through when Redis is unreachable.
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, ticketH, paymentH, limiter)
	router.RegisterSharpener(e, sharpenerH, inviteH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
