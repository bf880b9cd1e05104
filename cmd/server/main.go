package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"caredays/internal/applicant"
	"caredays/internal/attachment"
	"caredays/internal/children"
	"caredays/internal/draft"
	"caredays/internal/platform/config"
	"caredays/internal/platform/httpserver"
	"caredays/internal/platform/logger"
	"caredays/internal/platform/metrics"
	"caredays/internal/platform/middleware"
	"caredays/internal/platform/redis"
	"caredays/internal/publisher"
	"caredays/internal/submission"
	httptransport "caredays/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient == nil {
		log.Error("redis is required for draft storage; set REDIS_URL")
		os.Exit(1)
	}
	defer redisClient.Close()

	kafkaClient, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.KafkaBrokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		log.Error("kafka client failed", "error", err)
		os.Exit(1)
	}
	defer kafkaClient.Close()

	applicants := applicant.NewClient(cfg.LookupBaseURL, cfg.ClientTimeout, log)
	childrenLookup := children.NewClient(cfg.LookupBaseURL, cfg.ClientTimeout, log)
	attachmentStore := attachment.NewClient(cfg.AttachmentStoreBaseURL, cfg.ClientTimeout, attachment.DefaultRetryPolicy, log)
	attachments := attachment.NewService(attachmentStore, log)

	submissions, err := submission.NewService(
		applicants,
		childrenLookup,
		attachments,
		publisher.New(kafkaClient, log),
		log,
		submission.WithMetrics(metrics.New()),
	)
	if err != nil {
		log.Error("submission service wiring failed", "error", err)
		os.Exit(1)
	}

	drafts := draft.NewService(redisClient, cfg.DraftTTL)

	router := httptransport.NewRouter(httptransport.Handlers{
		Message:    httptransport.NewMessageHandler(submissions, log),
		Attachment: httptransport.NewAttachmentHandler(attachments, log),
		Draft:      httptransport.NewDraftHandler(drafts, log),
		Lookup:     httptransport.NewLookupHandler(applicants, childrenLookup, log),
	}, middleware.HMACValidator{SigningKey: []byte(cfg.JWTSigningKey)}, log)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
