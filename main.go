package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodiehub-api/auth"
	"foodiehub-api/config"
	"foodiehub-api/events"
	"foodiehub-api/handlers"
	"foodiehub-api/middleware"
	"foodiehub-api/payment"
	"foodiehub-api/routes"
	"foodiehub-api/seed"
	"foodiehub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg)
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	log.WithField("driver", cfg.DBDriver).Info("database connected and migrated")

	var verifier payment.Verifier = payment.NewSimulatedVerifier()
	if cfg.PaymentVerifierURL != "" {
		verifier = payment.NewRemoteVerifier(cfg.PaymentVerifierURL, cfg.PaymentTimeout, log)
	}

	var publisher events.Publisher = events.NewLogPublisher(log)
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		publisher = amqpPub
	}
	defer publisher.Close()

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := services.NewAccountService(db, tokens, log)
	catalog := services.NewCatalogService(db, log, cfg.PlaceholderImageBase)
	orders := services.NewOrderService(db, verifier, publisher, log,
		services.WithStrictDeliveryReads(cfg.StrictDeliveryReads))

	ctx := context.Background()
	if cfg.SeedCatalog {
		if _, err := seed.Catalog(ctx, catalog, log); err != nil {
			log.WithError(err).Error("auto-seeding failed")
		}
	}
	if err := seed.Admin(ctx, accounts, cfg.SeedAdminEmail, cfg.SeedAdminPassword, log); err != nil {
		log.WithError(err).Fatal("failed to create bootstrap admin")
	}

	h := handlers.New(accounts, catalog, orders, log)
	r := routes.NewRouter(h, middleware.NewGate(tokens), log, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"payments": verifierName(cfg),
			"events":   publisherName(cfg),
		}).Info("FoodieHub API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func verifierName(cfg config.Config) string {
	if cfg.PaymentVerifierURL != "" {
		return "remote"
	}
	return "simulated"
}

func publisherName(cfg config.Config) string {
	if cfg.AMQPURL != "" {
		return "amqp"
	}
	return "log"
}
