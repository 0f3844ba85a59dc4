package storage

import (
	"log"
	"os"

	"github.com/go-redis/redis/v8"
)

// Redis backs refresh-token tracking (see utils.CreateTokenPair).
var Redis *redis.Client

func InitializeRedis() {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		// local default so the server runs without any Redis config
		addr = "localhost:6379"
		log.Println("⚠️  REDIS_URL not set, falling back to localhost:6379")
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	log.Println("🔧 Redis client ready:", addr)
}
