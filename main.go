package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/craftloom/storefront-api/cart"
	"github.com/craftloom/storefront-api/models"
	"github.com/craftloom/storefront-api/payment"
	"github.com/craftloom/storefront-api/routes"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db := initDatabase(log)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartSnapshot{},
		&models.Order{},
		&models.OrderItem{},
		&models.TrackingEvent{},
	); err != nil {
		log.Fatal("auto-migrate failed", zap.Error(err))
	}

	gatewayCfg, err := payment.ConfigFromEnv()
	if err != nil {
		log.Fatal("gateway configuration invalid", zap.Error(err))
	}

	carts := cart.NewStore(db, log)
	gateway := payment.NewClient(gatewayCfg, log)
	coordinator := payment.NewCoordinator(db, gateway, carts, log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:          db,
		Carts:       carts,
		Coordinator: coordinator,
		GatewayCfg:  gatewayCfg,
		Log:         log,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info("server starting",
		zap.String("port", port),
		zap.String("gateway_mode", gatewayCfg.Mode))
	if err := r.Run(":" + port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase(log *zap.Logger) *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatal("db connection failed", zap.Error(err))
		}
		return db
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("db connection failed", zap.Error(err))
	}
	return db
}
