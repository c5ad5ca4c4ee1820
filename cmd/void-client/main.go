package main

import (
	"context"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/hirotachi/the-void/pkg/client"
	"github.com/hirotachi/the-void/pkg/config"
	"github.com/hirotachi/the-void/pkg/logger"
	"github.com/hirotachi/the-void/pkg/session"
	"github.com/hirotachi/the-void/pkg/store"
	"github.com/hirotachi/the-void/pkg/void"
	"github.com/sirupsen/logrus"
	"io"
	"log"
	"net/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("error loading config: ", err)
	}
	logs := logger.New(cfg.LogFile, cfg.LogLevel, io.Discard)

	messageStore, err := newStore(cfg, logs)
	if err != nil {
		log.Fatalln("error creating store: ", err)
	}

	v := void.New(messageStore, nil, void.WithLogger(logs))
	voidClient := client.NewVoidClient(v, cfg.RequestTimeout)
	if err := voidClient.Run(); err != nil {
		panic(err)
	}
}

func newRedisClient(addr string) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("cannot connect to redis db: %w", err)
	}
	return redisClient, nil
}

func newStore(cfg *config.Config, logs *logrus.Logger) (store.Store, error) {
	if cfg.Backend == "redis" {
		redisClient, err := newRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(redisClient), nil
	}

	storage, err := newSessionStorage(cfg)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	sessions := session.NewManager(storage, cfg.URL, cfg.Key, httpClient, logs)
	sessions.Load(context.Background())
	return store.NewRESTStore(cfg.URL, cfg.Key, sessions, httpClient), nil
}

func newSessionStorage(cfg *config.Config) (session.Storage, error) {
	switch cfg.SessionStore {
	case "memory":
		return session.NewMemoryStorage(), nil
	case "redis":
		redisClient, err := newRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStorage(redisClient), nil
	default:
		return session.NewFileStorage(cfg.SessionPath)
	}
}
