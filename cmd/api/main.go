package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/norraset/shopapi/internal/api"
	"github.com/norraset/shopapi/internal/cache"
	"github.com/norraset/shopapi/internal/config"
	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	rdb := cache.New(cfg.Redis.Addr)
	defer rdb.Close()

	statusCache := &cache.OrderStatus{Client: rdb, TTL: cfg.Redis.StatusCacheTTL}

	orders := &store.OrderStore{DB: db}
	shipping := &store.ShippingStore{DB: db}

	router := api.NewRouter(api.Handlers{
		Users: &api.UsersHandler{Store: &store.UserStore{DB: db}},
		Catalog: &api.CatalogHandler{
			Products:   &store.ProductStore{DB: db},
			Categories: &store.CategoryStore{DB: db},
			Sizes:      &store.SizeStore{DB: db},
		},
		Cart: &api.CartHandler{Store: &store.CartStore{DB: db}},
		Orders: &api.OrdersHandler{
			Orders:      orders,
			Shipping:    shipping,
			StatusCache: statusCache,
		},
		Payments: &api.PaymentsHandler{
			Store:       &store.PaymentStore{DB: db},
			StatusCache: statusCache,
		},
		Announcements: &api.AnnouncementsHandler{Store: &store.AnnouncementStore{DB: db}},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}
