package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storemonitor/common"
	"storemonitor/config"
	"storemonitor/database"
	"storemonitor/handlers"
	"storemonitor/metrics"
	"storemonitor/rabbitmq"
	"storemonitor/services"
	"storemonitor/version"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "store-monitor"

func main() {
	cfg := config.Load()
	common.SetLogLevel(cfg.LogLevel)

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to create database connection: %v", err)
	}
	defer db.Close()

	if err := db.EnsureTables(context.Background()); err != nil {
		log.Fatalf("Failed to ensure tables: %v", err)
	}

	metrics.Register()

	observers := []services.Observer{services.LogObserver{}, metrics.ReportObserver{}}

	// Report events are optional, the service runs without a broker
	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.RabbitMQExchange, cfg.RabbitMQReportRoutingKey)
		if err != nil {
			log.Warnf("Failed to initialize RabbitMQ publisher: %v", err)
			log.Warn("Report events will not be published. Continuing without RabbitMQ...")
		} else {
			observers = append(observers, rabbitmq.ReportEventObserver{Publisher: publisher})
			log.Infof("RabbitMQ publisher initialized: exchange=%s, routing_key=%s", cfg.RabbitMQExchange, cfg.RabbitMQReportRoutingKey)
		}
	}

	svc := services.NewReportService(db, services.NewReportGenerator(db, db, db), observers...)
	h := handlers.NewHandlers(svc, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(h),
	}

	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	// Let running reports reach a terminal status before the pool closes
	svc.Wait()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warnf("Failed to close RabbitMQ publisher: %v", err)
		}
	}

	log.Info("Server exited")
}

func setupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	router.POST("/trigger_report", h.TriggerReport)
	router.GET("/get_report", h.GetReport)

	router.GET("/health", h.HealthCheck)
	router.GET("/help", handlers.Help)
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get(serviceName))
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
