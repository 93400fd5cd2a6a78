package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/streadway/amqp"

	"github.com/adebayor/resumetable/internal/analyzer"
	"github.com/adebayor/resumetable/internal/api"
	"github.com/adebayor/resumetable/internal/database"
	"github.com/adebayor/resumetable/internal/extract"
	"github.com/adebayor/resumetable/internal/llm"
	"github.com/adebayor/resumetable/internal/queue"
	"github.com/adebayor/resumetable/internal/storage"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		log.Fatal("empty DB_URL in environment")
	}
	rabbitmqUrl := os.Getenv("RABBITMQ_URL")
	if rabbitmqUrl == "" {
		log.Fatal("empty RABBITMQ_URL in environment")
	}
	geminiApiKey := os.Getenv("GEMINI_API_KEY")
	if geminiApiKey == "" {
		log.Fatal("empty GEMINI_API_KEY in environment")
	}

	r2Config := storage.R2Config{
		AccountID: mustGetenv("R2_ACCOUNT_ID"),
		Bucket:    mustGetenv("R2_BUCKET"),
		AccessKey: mustGetenv("R2_ACCESS_KEY"),
		SecretKey: mustGetenv("R2_SECRET_KEY"),
	}

	db, err := sql.Open("postgres", dbUrl)
	if err != nil {
		log.Fatal("error opening db. err: ", err)
	}
	dbqueries := database.New(db)

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2Config.AccessKey, r2Config.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		log.Fatal("error creating aws config: ", err)
	}
	store := storage.New(awsConfig, r2Config)

	llmTimeout := time.Duration(getenvInt("LLM_TIMEOUT_SECONDS", 90)) * time.Second
	llmClient, err := llm.New(ctx, geminiApiKey, os.Getenv("GEMINI_MODEL"), llm.DefaultGenerationConfig, llmTimeout)
	if err != nil {
		log.Fatal("error creating gemini client: ", err)
	}

	conn, err := amqp.Dial(rabbitmqUrl)
	if err != nil {
		log.Fatalf("error connecting to RabbitMQ. err: %v", err)
	}
	producer := queue.NewProducer(conn)

	workerConfig := WorkerConfig{
		DB: dbqueries,
		Analyzer: &analyzer.Analyzer{
			Store:     store,
			Extractor: extract.Extractor{},
			LLM:       llmClient,
		},
		Producer:    producer,
		RabbitMQUrl: rabbitmqUrl,
	}

	numWorkers := getenvInt("WORKER_COUNT", 3)
	log.Printf("starting %d analysis workers", numWorkers)
	go workerConfig.StartConsumerWorkerPool(numWorkers)

	handler := api.NewHandler(dbqueries, producer, store)
	port := getenv("PORT", "8080")
	log.Printf("resumetable listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, api.NewRouter(handler)))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", k, err)
	}
	return n
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("empty %s in environment", k)
	}
	return v
}
