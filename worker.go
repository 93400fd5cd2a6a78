package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/adebayor/resumetable/internal/analyzer"
	"github.com/adebayor/resumetable/internal/database"
	"github.com/adebayor/resumetable/internal/models"
	"github.com/adebayor/resumetable/internal/queue"
)

type WorkerConfig struct {
	DB          *database.Queries
	Analyzer    *analyzer.Analyzer
	Producer    *queue.Producer
	RabbitMQUrl string
}

// failureReport is what gets persisted for a failed session so the UI
// has a message to show.
type failureReport struct {
	Error string `json:"error"`
}

func worker(id int, workerConfig *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()

	conn, err := amqp.Dial(workerConfig.RabbitMQUrl)
	if err != nil {
		log.Fatal("error dialling rabbitmq: " + err.Error())
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("error connecting to rabbitmq channel: " + err.Error())
	}
	defer ch.Close()

	if _, err := queue.DeclareSessionsQueue(ch); err != nil {
		log.Fatalf("%v", err)
	}

	msgs, err := ch.Consume(
		queue.SessionsQueue, // queue name
		"",                  // consumer tag
		true,                // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		log.Fatal("error consuming rabbitmq message: " + err.Error())
	}

	for msg := range msgs {
		session := models.Session{}
		if err := json.Unmarshal(msg.Body, &session); err != nil {
			log.Printf("error unmarshalling message body. err: %v", err)
			continue
		}
		log.Printf("worker %d processing session %s", id+1, session.ID)

		workerConfig.setStatus(session, models.StatusProcessing, "analysis started")

		if err := workerConfig.analyzeSession(session); err != nil {
			log.Printf("error analyzing session %s: %v", session.ID, err)
			workerConfig.saveReport(session, failureReport{Error: err.Error()})
			workerConfig.setStatus(session, models.StatusFailed, "analysis failed")
			continue
		}

		workerConfig.setStatus(session, models.StatusCompleted, "analysis completed")
	}
}

// analyzeSession runs the pipeline for one session and persists its
// report. Pipeline errors (nothing extracted, LLM failure) come back to
// the caller; a response without a parseable table is still a report.
func (workerConfig *WorkerConfig) analyzeSession(session models.Session) error {
	ctx := context.Background()

	resumes, err := workerConfig.DB.GetResumesBySession(ctx, session.ID)
	if err != nil {
		return errors.New("error getting resumes for session: " + err.Error())
	}

	report, err := workerConfig.Analyzer.Run(ctx, resumes)
	if err != nil {
		return err
	}

	return workerConfig.saveReport(session, report)
}

func (workerConfig *WorkerConfig) saveReport(session models.Session, report any) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return errors.New("failed to marshal report: " + err.Error())
	}

	// save rides out transient db failures; the analysis is already paid for
	for attempt := 1; ; attempt++ {
		err = workerConfig.DB.CreateOrUpdateAnalysesResults(context.Background(), database.CreateOrUpdateAnalysesResultsParams{
			Results:   reportJSON,
			SessionID: session.ID,
		})
		if err == nil || attempt >= 3 {
			break
		}
		log.Printf("retrying report save for session %s (attempt %d): %v", session.ID, attempt, err)
		time.Sleep(time.Duration(500*attempt) * time.Millisecond)
	}
	if err != nil {
		return errors.New("failed to save report after retries: " + err.Error())
	}
	return nil
}

// setStatus updates the session row and publishes a progress event.
// Update publishing is best effort.
func (workerConfig *WorkerConfig) setStatus(session models.Session, status, message string) {
	err := workerConfig.DB.UpdateSessionStatus(context.Background(), database.UpdateSessionStatusParams{
		Status: status,
		ID:     session.ID,
	})
	if err != nil {
		log.Printf("error updating session %s status to %s: %v", session.ID, status, err)
	}

	update := map[string]any{
		"session_id": session.ID,
		"status":     status,
		"message":    message,
		"timestamp":  time.Now(),
	}
	if err := workerConfig.Producer.PublishUpdate(session.ID.String(), update); err != nil {
		log.Println("failed to publish update:", err)
	}
}

func (workerConfig *WorkerConfig) StartConsumerWorkerPool(numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		log.Println("worker id ", i+1, "started")
		go worker(i, workerConfig, &wg)
	}
	wg.Wait() // block until all workers finish
}
