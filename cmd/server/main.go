package main

import (
	"fmt"
	"log"

	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/models"
	"crm-backend/internal/obs"
	"crm-backend/internal/queue"
	"crm-backend/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	models.SetAllowedStatuses(cfg.ClientStatuses)
	obs.Init()
	database.Init(cfg)
	queue.Init(cfg.AMQPURL)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	r := server.NewRouter(cfg, rdb)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
