//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	server, err := testcontainers.Run(
		ctx, "redis:latest",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		),
	)
	testcontainers.CleanupContainer(t, server)
	require.NoError(t, err)

	host, err := server.Host(ctx)
	require.NoError(t, err)
	port, err := server.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	cfg := &config.Config{RedisConnect: config.RedisConnect{Host: host, Port: port.Port()}}
	client, err := repository.NewRedisClient(cfg)
	require.NoError(t, err)

	return client
}

func TestCartRepository_RedisIntegration(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	repo := repository.NewCartRepo(cache.NewRedisCache(client, time.Hour), time.Hour, 2*time.Second)

	t.Run("Cart round trip with ttl", func(t *testing.T) {
		_, err := repo.UpdateCart(ctx, "s1", add("p1"))
		require.NoError(t, err)
		_, err = repo.UpdateCart(ctx, "s1", add("p1"))
		require.NoError(t, err)

		cart, err := repo.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, models.Cart{"p1": 2}, cart)

		ttl, err := client.TTL(ctx, cache.Key(cache.CartKeyPrefix, "s1")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("Emptied cart removes the key", func(t *testing.T) {
		_, err := repo.UpdateCart(ctx, "s2", add("p1"))
		require.NoError(t, err)
		_, err = repo.UpdateCart(ctx, "s2", remove("p1"))
		require.NoError(t, err)

		exists, err := client.Exists(ctx, cache.Key(cache.CartKeyPrefix, "s2")).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("Concurrent adds in one process", func(t *testing.T) {
		const n = 50
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < n; i++ {
			g.Go(func() error {
				_, err := repo.UpdateCart(gctx, "s3", add("p1"))
				return err
			})
		}
		require.NoError(t, g.Wait())

		cart, err := repo.GetCart(ctx, "s3")
		require.NoError(t, err)
		assert.Equal(t, n, cart["p1"])
	})

	t.Run("Expired cart is gone", func(t *testing.T) {
		short := repository.NewCartRepo(cache.NewRedisCache(client, time.Second), time.Second, 2*time.Second)
		_, err := short.UpdateCart(ctx, "s4", add("p1"))
		require.NoError(t, err)

		// reads slide the expiry, so wait it out without touching the key
		time.Sleep(2 * time.Second)

		cart, err := short.GetCart(ctx, "s4")
		require.NoError(t, err)
		assert.Empty(t, cart)
	})
}
