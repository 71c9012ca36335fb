// Package devstack starts the external collaborators (Redis document
// store, MariaDB, Authorizer) in containers for local development and
// end-to-end tests. Expects environment variables to be loaded from
// .env files.
package devstack

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Containers holds the running dev stack.
type Containers struct {
	Network             *testcontainers.DockerNetwork
	RedisContainer      testcontainers.Container
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container

	// RedisURL and AuthzURL are host-reachable addresses for the
	// started services.
	RedisURL string
	AuthzURL string
}

func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MariaDB: %v", err)
		}
	}
	if tc.RedisContainer != nil {
		if err := tc.RedisContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateAll starts the full dev stack. With a nil *testing.T it logs to
// stdout and exits the process on failure.
func CreateAll(t *testing.T) (*Containers, error) {
	ctx := context.Background()
	containers := &Containers{}

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	containers.Network = nw
	networkName := nw.Name

	// Create and start the Redis container
	redisImage := getenvDefault("REDIS_IMAGE", "redis:7-alpine")
	reportImageStatus(ctx, t, redisImage)
	tcpRedisPort, err := nat.NewPort("tcp", "6379")
	if err != nil {
		containers.Terminate(t)
		exitWithError(t, err, "Failed to create Redis port")
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{string(tcpRedisPort)},
			WaitingFor:   wait.ForListeningPort(tcpRedisPort).WithStartupTimeout(30 * time.Second),
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {"redis"},
			},
		},
		Started: true,
	})
	if err != nil {
		containers.Terminate(t)
		exitWithError(t, err, "Failed to start Redis")
	}
	containers.RedisContainer = redisContainer

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, tcpRedisPort)
	containers.RedisURL = fmt.Sprintf("redis://%s:%s/0", redisHost, redisPort.Port())
	logMessage(t, "REDIS_URL=%s", containers.RedisURL)

	// Create and start the MariaDB container backing the Authorizer
	dbImage := getenvDefault("DB_IMAGE", "mariadb:11")
	dbRootPassword := getenvDefault("DB_ROOT_PASSWORD", "devstack-root")
	authzDatabase := getenvDefault("AUTHZ_DATABASE", "authorizer")
	tcpDbPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		containers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": dbRootPassword,
				"MYSQL_DATABASE":      authzDatabase,
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {"db"},
			},
		},
		Started: true,
	})
	if err != nil {
		containers.Terminate(t)
		exitWithError(t, err, "Failed to start MariaDB")
	}
	containers.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	if err := waitForMariaDB(dbHost, dbPort, dbRootPassword); err != nil {
		containers.Terminate(t)
		exitWithError(t, err, "MariaDB not ready")
	}

	// Create and start the Authorizer container
	authzImage := getenvDefault("AUTHZ_IMAGE", "lakhansamani/authorizer:latest")
	authzPortNumber := getenvDefault("AUTHZ_PORT", "8080")
	tcpAuthzPort, err := nat.NewPort("tcp", authzPortNumber)
	if err != nil {
		containers.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authzDbConnection := fmt.Sprintf("root:%s@tcp(db:3306)/%s", dbRootPassword, authzDatabase)
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        authzImage,
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          authzPortNumber,
				"DATABASE_TYPE": "mysql",
				"DATABASE_NAME": authzDatabase,
				"DATABASE_URL":  authzDbConnection,
				"ADMIN_SECRET":  getenvDefault("AUTHZ_ADMIN_SECRET", "devstack-admin"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(60 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {"authorizer"},
			},
		},
		Started: true,
	})
	if err != nil {
		containers.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	containers.AuthorizerContainer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	containers.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
	logMessage(t, "AUTHZ_URL=%s", containers.AuthzURL)

	logMessage(t, "Dev stack started successfully")
	return containers, nil
}

func waitForMariaDB(host string, port nat.Port, rootPassword string) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", rootPassword, host, port.Port()))
	if err != nil {
		return err
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("not ready after 30 seconds: %w", err)
}

// reportImageStatus logs whether an image is already present locally or
// will be pulled.
func reportImageStatus(ctx context.Context, t *testing.T, imageName string) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				logMessage(t, "Image %s exists, reusing...", imageName)
				return
			}
		}
	}
	logMessage(t, "Image %s not found locally, pulling...", imageName)
}

func getenvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
