//go:build integration
// +build integration

package lock

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisLocker_ExclusiveAndRelease(t *testing.T) {
	addr := startRedis(t)
	locker, err := NewRedisLocker(RedisConfig{Addr: addr, WaitTimeout: 200 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)
	defer locker.Close()

	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "holding:u:1")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "holding:u:1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// Other keys are unaffected
	unlockOther, err := locker.Lock(ctx, "holding:u:2")
	require.NoError(t, err)
	unlockOther()

	unlock()

	unlock, err = locker.Lock(ctx, "holding:u:1")
	require.NoError(t, err)
	unlock()
}

func TestRedisLocker_LeaseExpires(t *testing.T) {
	addr := startRedis(t)
	locker, err := NewRedisLocker(RedisConfig{Addr: addr, LeaseTTL: 100 * time.Millisecond, WaitTimeout: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	defer locker.Close()

	ctx := context.Background()

	_, err = locker.Lock(ctx, "holding:crashed")
	require.NoError(t, err)

	// Never released; the lease runs out and a second caller gets in
	unlock, err := locker.Lock(ctx, "holding:crashed")
	require.NoError(t, err)
	unlock()
}
