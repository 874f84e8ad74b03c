package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/nft-exchange/internal/config"
	"github.com/iliyamo/nft-exchange/internal/database"
	"github.com/iliyamo/nft-exchange/internal/handler"
	"github.com/iliyamo/nft-exchange/internal/market"
	appmw "github.com/iliyamo/nft-exchange/internal/middleware"
	"github.com/iliyamo/nft-exchange/internal/queue"
	"github.com/iliyamo/nft-exchange/internal/registry"
	"github.com/iliyamo/nft-exchange/internal/repository"
	"github.com/iliyamo/nft-exchange/internal/router"
	queuepublisher "github.com/iliyamo/nft-exchange/internal/service"
	"github.com/iliyamo/nft-exchange/internal/wallet"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Engines over MySQL-backed stores.  The registry and the market
	// share nothing except the resolver entry below.
	sink := queuepublisher.Sink{}
	reg := registry.New(repository.NewTokenStore(db), cfg.AuthorityAddress, sink)
	pay := wallet.NewLedger(repository.NewWalletStore(db))
	ledger := market.NewLedger(
		repository.NewListingStore(db),
		market.StaticResolver{cfg.RegistryRef: reg},
		pay,
		sink,
		cfg.MarketAddress,
	)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	e := echo.New()

	// Redis-backed rate limiting and response caching.  Both degrade to
	// no-ops when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterRegistry(e, handler.NewTokenHandler(reg), cfg.JWTSecret)
	router.RegisterMarket(e, handler.NewListingHandler(ledger, cfg.RegistryRef), cfg.JWTSecret, cacheMW)
	router.RegisterWallet(e, handler.NewWalletHandler(pay), cfg.JWTSecret)

	// Mirror market activity into logs/market.log.
	go func() {
		if err := queue.StartListingConsumer(); err != nil {
			log.Printf("listing consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, registry=%s, exchange=%s)", addr, cfg.Env, cfg.RegistryRef, cfg.MarketAddress)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
