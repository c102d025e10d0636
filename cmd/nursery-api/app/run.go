package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/janarabaya/Nursery-Management-System-sub000/configs"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/cache"
	apihttp "github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/http"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/http/middleware"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/kafka"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/queue"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/repo"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/logging"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, "./logs/app.log")
	l := logging.New("app")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	cancel()

	l.Info("nursery-api: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// stores
	orderRepo := repo.NewMySQLOrderRepo(db)
	inventoryRepo := repo.NewMySQLInventoryRepo(db)
	catalogRepo := repo.NewMySQLCatalogRepo(db)
	catalog := cache.NewRedisCatalogCache(rdb, catalogRepo, cfg.Cache.TTL)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)

	courier, err := queue.NewRabbitGiftCourier(ch, cfg.Rabbit.Exchange, cfg.Rabbit.GiftQueue)
	if err != nil {
		return nil, nil, err
	}

	// core
	threshold := decimal.NewFromFloat(cfg.Approval.Threshold)
	checker := usecase.NewAvailabilityChecker(inventoryRepo)
	transition := usecase.NewTransition(orderRepo, checker, orderRepo)
	resolution := usecase.NewResolution(orderRepo, checker, transition, catalog, courier, threshold)

	// storefront annotations via rabbit
	setupQueue(ch, cfg.Rabbit.AnnotationQueue, orderRepo)

	// supplier restocks via kafka
	setupKafkaListener(cfg, inventoryRepo)

	// handlers + router + middleware
	oh := apihttp.NewOrderHandler(orderRepo, transition, resolution, threshold)
	rh := apihttp.NewResolutionHandler(resolution, orderRepo, idem, oh)
	ih := apihttp.NewInventoryHandler(inventoryRepo, catalog)
	th := apihttp.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := apihttp.NewRouter(oh, rh, ih, th, authz)

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		_ = ch.Close()
		_ = conn.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, annotationQueue string, orders usecase.OrderStore) {
	h := queue.NewAnnotationHandler(orders)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(annotationQueue, queue.JSONHandler[usecase.AnnotationMsg]{HandleFunc: h.HandleAnnotation})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, ledger usecase.InventoryLedger) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		panic(err)
	}

	h := kafka.NewRestockHandler(ledger)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.RestockTopic}, h.Handle)
	consumer.Logger = logging.New("kafka")

	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			panic(err)
		}
	}()
}
