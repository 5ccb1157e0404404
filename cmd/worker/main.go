package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"casemate-backend/internal/bootstrap"
	"casemate-backend/internal/extraction"
	"casemate-backend/internal/queue"
	"casemate-backend/internal/shared/config"
	"casemate-backend/internal/shared/telemetry"
)

const (
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()

	if strings.TrimSpace(os.Getenv("CM_SQS_QUEUE_URL")) == "" {
		log.Fatal("CM_SQS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := envInt("CM_WORKER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("CM_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	sqsClient, err := queue.NewSQSClient(ctx)
	if err != nil {
		log.Fatalf("queue client: %v", err)
	}

	app, err := bootstrap.BuildWorker(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	log.Printf("worker started queue=%s concurrency=%d", sqsClient.QueueURL(), concurrency)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		msgs, err := sqsClient.Receive(ctx, 10)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			log.Printf("receive message: %v", err)
			continue
		}

		for _, msg := range msgs {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m queue.ReceivedMessage) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, app, sqsClient, m)
			}(msg)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

func handleMessage(ctx context.Context, app *bootstrap.App, client *queue.SQSClient, msg queue.ReceivedMessage) {
	if msg.DecodeErr != nil {
		telemetry.Error("worker.extraction.decode_failed", map[string]any{
			"error": msg.DecodeErr.Error(),
		})
		// Malformed payloads cannot be retried; drop them.
		deleteMessage(ctx, client, msg, "", "")
		return
	}

	jobID := msg.Message.JobID
	requestID := msg.Message.RequestID
	if strings.TrimSpace(jobID) == "" {
		telemetry.Error("worker.extraction.missing_job_id", fields(jobID, requestID))
		deleteMessage(ctx, client, msg, jobID, requestID)
		return
	}

	telemetry.Info("worker.extraction.received", fields(jobID, requestID))

	jobCtx := extraction.WithRequestID(ctx, requestID)
	if err := app.ExtractionService.Process(jobCtx, jobID); err != nil {
		f := fields(jobID, requestID)
		f["error"] = err.Error()
		telemetry.Error("worker.extraction.failed", f)
		// Leave the message in the queue; the redrive policy decides
		// whether it is retried or dead-lettered.
		return
	}

	if deleteMessage(ctx, client, msg, jobID, requestID) {
		telemetry.Info("worker.extraction.completed", fields(jobID, requestID))
	}
}

func deleteMessage(ctx context.Context, client *queue.SQSClient, msg queue.ReceivedMessage, jobID, requestID string) bool {
	if msg.ReceiptHandle == "" {
		f := fields(jobID, requestID)
		f["error"] = "missing receipt handle"
		telemetry.Error("worker.extraction.delete_failed", f)
		return false
	}
	if err := client.Delete(ctx, msg.ReceiptHandle); err != nil {
		f := fields(jobID, requestID)
		f["error"] = err.Error()
		telemetry.Error("worker.extraction.delete_failed", f)
		return false
	}
	return true
}

func fields(jobID, requestID string) map[string]any {
	f := map[string]any{"job_id": jobID}
	if strings.TrimSpace(requestID) != "" {
		f["request_id"] = requestID
	}
	return f
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
