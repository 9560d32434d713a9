package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/savannahsoft/shopfront/internal/admin"
	"github.com/savannahsoft/shopfront/internal/auth"
	"github.com/savannahsoft/shopfront/internal/config"
	"github.com/savannahsoft/shopfront/internal/httpx"
	ord "github.com/savannahsoft/shopfront/internal/order"
	"github.com/savannahsoft/shopfront/internal/payment"
)

func newRouter(cfg config.Config, orders ord.Repository, admins admin.Repository, gw ord.StatusFetcher) *gin.Engine {
	codec := auth.NewCodec(cfg.SessionSecret, cfg.SessionTTL)
	reconciler := ord.NewReconciler(gw, orders)
	deleter := ord.NewBulkDeleter(orders)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })

	r.POST("/orders", createOrderHandler(orders))
	r.GET("/orders/track/:code", trackOrderHandler(orders))
	r.GET("/payments/status", paymentStatusHandler(reconciler))

	adminGroup := r.Group("/admin", auth.SessionGuard(codec))
	adminGroup.POST("/login", adminLoginHandler(admins, codec, int(cfg.SessionTTL.Seconds())))
	adminGroup.POST("/logout", adminLogoutHandler())
	adminGroup.GET("/orders", listOrdersHandler(orders))
	// Mutations carry their own check on top of the group guard.
	adminGroup.DELETE("/orders", auth.RequireAdmin(codec, bulkDeleteOrdersHandler(deleter)))

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[db] connect: %v", err)
	}
	defer pool.Close()

	gw := payment.NewClient(cfg.GatewayBaseURL, cfg.ConsumerKey, cfg.ConsumerSecret, cfg.GatewayTimeout)
	r := newRouter(cfg, ord.NewPGRepo(pool), admin.NewPGRepo(pool), gw)

	log.Printf("shopfront listening on %s", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}
