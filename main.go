package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"fieldkpi/database"
	"fieldkpi/handlers"
	repository "fieldkpi/repositories"
	routes "fieldkpi/routes"
	services "fieldkpi/services"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	// Get MongoDB credentials from environment variables
	username := os.Getenv("MONGO_USERNAME")
	password := os.Getenv("MONGO_PASSWORD")
	cluster := os.Getenv("MONGO_CLUSTER")
	appName := os.Getenv("MONGO_APP_NAME")
	jwtSecret := os.Getenv("JWT_SECRET")

	if username == "" || password == "" || cluster == "" || appName == "" {
		log.Fatal("Missing required environment variables")
	}

	// Build MongoDB Atlas connection string
	uri := fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
		username, password, cluster, appName)

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal("Failed to disconnect from MongoDB:", err)
		}
	}()

	// Set a timeout for the ping operation
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ping the primary to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}

	fmt.Println("Successfully connected to MongoDB Atlas!")

	// Check replica set status
	checkIfReplicaSet(client)

	db := client.Database("fieldkpi")

	fmt.Println("Creating database indexes...")
	if err := database.CreateIndexes(db); err != nil {
		log.Printf("Warning: Failed to create indexes: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := automationConfigFromEnv()

	// Repositories
	kpiRepo := repository.NewKPIRecordRepository(db)
	trainingRepo := repository.NewTrainingAssignmentRepository(db)
	auditRepo := repository.NewAuditScheduleRepository(db)
	notificationRepo := repository.NewNotificationLogRepository(db)

	// Services
	notifier := &services.LogNotifier{Logger: logger}
	trainingService := services.NewTrainingService(trainingRepo, cfg.TrainingDueDays, logger)
	auditService := services.NewAuditService(auditRepo, cfg.AuditLeadDays, cfg.ImmediateAuditLeadDays, logger)
	notificationService := services.NewNotificationService(notificationRepo, notifier, cfg.NotificationMaxRetries, logger)
	orchestrator := services.NewAutomationOrchestrator(kpiRepo, trainingService, auditService, notificationService, logger)
	kpiService := services.NewKPIService(kpiRepo, orchestrator, logger)

	// Handlers
	kpiHandler := handlers.NewKPIHandler(kpiService)
	trainingHandler := handlers.NewTrainingHandler(trainingService)
	auditHandler := handlers.NewAuditHandler(auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	mux := routes.SetupRoutes(kpiHandler, trainingHandler, auditHandler, notificationHandler, jwtSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	fmt.Printf("Server starting on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}

// automationConfigFromEnv reads provisioning offsets, falling back to the
// defaults when unset or malformed.
func automationConfigFromEnv() services.AutomationConfig {
	cfg := services.DefaultAutomationConfig()

	if v, err := strconv.Atoi(os.Getenv("TRAINING_DUE_DAYS")); err == nil && v > 0 {
		cfg.TrainingDueDays = v
	}
	if v, err := strconv.Atoi(os.Getenv("AUDIT_LEAD_DAYS")); err == nil && v > 0 {
		cfg.AuditLeadDays = v
	}
	if v, err := strconv.Atoi(os.Getenv("IMMEDIATE_AUDIT_LEAD_DAYS")); err == nil && v > 0 {
		cfg.ImmediateAuditLeadDays = v
	}
	if v, err := strconv.Atoi(os.Getenv("NOTIFICATION_MAX_RETRIES")); err == nil && v > 0 {
		cfg.NotificationMaxRetries = v
	}

	return cfg
}

func checkIfReplicaSet(client *mongo.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result bson.M
	// Use the newer "hello" command instead of deprecated "isMaster"
	err := client.Database("admin").RunCommand(ctx, bson.M{"hello": 1}).Decode(&result)

	if err != nil {
		fmt.Printf("Error checking replica set: %v\n", err)
		return false
	}

	if setName, exists := result["setName"]; exists {
		fmt.Printf("Part of replica set: %v\n", setName)
		return true
	}

	fmt.Println("Not part of a replica set")
	return false
}
