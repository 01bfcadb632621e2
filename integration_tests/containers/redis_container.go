package containers

import (
	"context"
	"fmt"
	"strings"

	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// SetupRedisContainer starts a Redis testcontainer and returns the container
// and the host:port address to dial.
func SetupRedisContainer(ctx context.Context) (*tcredis.RedisContainer, string, error) {
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		if redisContainer != nil {
			_ = redisContainer.Terminate(ctx)
		}
		return nil, "", fmt.Errorf("failed to start redis container: %w", err)
	}

	connStr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		_ = redisContainer.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get redis connection string: %w", err)
	}

	return redisContainer, strings.TrimPrefix(connStr, "redis://"), nil
}
