package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cineteca/cineteca-api/internal/auth"
	"github.com/cineteca/cineteca-api/internal/cart"
	"github.com/cineteca/cineteca-api/internal/catalog"
	"github.com/cineteca/cineteca-api/internal/checkout"
	"github.com/cineteca/cineteca-api/internal/config"
	"github.com/cineteca/cineteca-api/internal/database"
	"github.com/cineteca/cineteca-api/internal/handler"
	"github.com/cineteca/cineteca-api/internal/middleware"
	"github.com/cineteca/cineteca-api/internal/payment"
	"github.com/cineteca/cineteca-api/internal/queue"
	"github.com/cineteca/cineteca-api/internal/repository"
	"github.com/cineteca/cineteca-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the persistent cart plus response caching and rate
	// limiting.  A nil client disables all three.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; carts held in memory, caching and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	movies := repository.NewMovieRepo(db)
	sessions := repository.NewSessionRepo(db)
	seats := repository.NewSeatRepo(db)
	tickets := repository.NewTicketRepo(db)

	service := auth.NewService(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost,
		users, tokens, profiles)
	manager := auth.NewManager(service, profiles)
	manager.Start()
	defer manager.Close()

	var persister cart.Persister
	if rdb != nil {
		persister = cart.NewRedisPersister(rdb, 0)
	} else {
		persister = cart.NewMemoryPersister()
	}
	carts := cart.NewStore(persister)

	catalogClient := catalog.New(cfg.CatalogBaseURL, cfg.CatalogAPIKey, cfg.CatalogLang, &http.Client{
		Timeout: 10 * time.Second,
	})
	flows := checkout.NewController()
	gateway := payment.NewMockGateway(100 * time.Millisecond)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	responseCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.Register(e, manager, router.Handlers{
		Auth:     handler.NewAuthHandler(manager, service),
		Profile:  handler.NewProfileHandler(manager),
		Movies:   handler.NewMovieHandler(movies, sessions, catalogClient),
		Sessions: handler.NewSessionHandler(sessions, seats),
		Checkout: handler.NewCheckoutHandler(flows, sessions, movies, seats, tickets, gateway),
		Cart:     handler.NewCartHandler(carts, sessions, movies, seats, tickets, gateway),
		Tickets:  handler.NewTicketHandler(tickets),
		Admin:    handler.NewAdminHandler(movies, sessions, profiles, tickets),
	}, responseCache)

	// Purchase log consumer runs for the process lifetime and reconnects
	// on broker failures.
	go func() {
		if err := queue.StartPurchaseConsumer(); err != nil {
			log.Printf("purchase consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
