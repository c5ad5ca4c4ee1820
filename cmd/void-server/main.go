package main

import (
	"context"
	"github.com/alicebob/miniredis"
	"github.com/go-redis/redis/v8"
	"github.com/hirotachi/the-void/pkg/config"
	"github.com/hirotachi/the-void/pkg/logger"
	"github.com/hirotachi/the-void/pkg/server"
	"log"
	"os"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("error loading config: ", err)
	}
	logs := logger.New("", cfg.LogLevel, os.Stderr)

	// temporary redis server for development unless a real one is configured
	redisAddr := cfg.ServerRedisAddr
	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatalln("error creating redis db: ", err)
		}
		redisAddr = mr.Addr()
	}
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalln("cannot connect to redis db: ", err)
	}

	voidServer := server.NewServer(cfg.ServerAddr, redisClient, cfg.Key, logs)
	if err := voidServer.Run(); err != nil {
		panic(err)
	}
}
