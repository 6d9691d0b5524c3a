package app

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/config"
	redisinfra "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/redis"
)

func TestNewServicesNeverStartsKafkaProducer(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("miniredis port: %v", err)
	}

	redisClient, err := redisinfra.NewClient(context.Background(), config.RedisSettings{Host: mr.Host(), Port: port}, zap.NewNop())
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &config.AppConfig{
		App:   config.AppSettings{Env: "test"},
		Redis: config.RedisSettings{ClaimsVersionPrefix: "test:claims"},
		Kafka: config.KafkaSettings{Brokers: []string{"127.0.0.1:1"}, TopicPrefix: "shop"},
		JWT: config.JWTSettings{
			Secret: strings.Repeat("s", 32),
			Issuer: "shop-test",
		},
	}

	core, logs := observer.New(zap.DebugLevel)
	services, err := NewServices(cfg, nil, redisClient, zap.New(core))
	if err != nil {
		t.Fatalf("NewServices returned error: %v", err)
	}
	if services.Cart == nil || services.Roles == nil || services.Principals == nil {
		t.Fatalf("expected wired services, got %+v", services)
	}

	if kafkaLogs := logs.FilterMessageSnippet("kafka").All(); len(kafkaLogs) != 0 {
		t.Fatalf("expected no kafka producer setup, got %d log entries: %q", len(kafkaLogs), kafkaLogs[0].Message)
	}
}
