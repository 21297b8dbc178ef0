package common

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
)

// terminateOnCleanup stops c when the test and its subtests have finished.
func terminateOnCleanup(t *testing.T, c testcontainers.Container) {
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("could not terminate container: %v", err)
		}
	})
}

// TestRabbitMQ starts a disposable RabbitMQ container and returns its AMQP URL.
func TestRabbitMQ(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := rabbitmq.Run(ctx, "rabbitmq:3.12.11-management-alpine",
		rabbitmq.WithAdminUsername("guest"),
		rabbitmq.WithAdminPassword("guest"))
	if err != nil {
		t.Fatalf("could not start rabbitmq container: %v", err)
	}
	terminateOnCleanup(t, c)

	connURL, err := c.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("could not get rabbitmq connection URL: %v", err)
	}

	return connURL
}

// TestBroker connects to a disposable RabbitMQ with the sign-up topology declared.
func TestBroker(t *testing.T) *MessageBroker {
	t.Helper()

	mb, err := NewMessageBroker(TestRabbitMQ(t))
	if err != nil {
		t.Fatalf("could not connect to rabbitmq: %v", err)
	}
	t.Cleanup(func() { mb.Close() })

	if err := mb.Declare(UserCreatedBinding); err != nil {
		t.Fatalf("could not declare the user topology: %v", err)
	}

	return mb
}

// TestDB starts a disposable Postgres container with every migration applied.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	c, err := postgres.Run(ctx,
		"docker.io/postgres:14.11-bookworm",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)))
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}
	terminateOnCleanup(t, c)

	connURL, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	if err := MigrateUp(connURL); err != nil {
		t.Fatalf("could not run migrations: %v", err)
	}

	db, err := NewDB(connURL, 10, 10, time.Minute)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}
	t.Cleanup(func() { CloseDB(db) })

	return db
}
