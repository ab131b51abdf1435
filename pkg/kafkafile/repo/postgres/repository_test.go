package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

func TestHandlePostgresError(t *testing.T) {
	r := &Repository{}

	assert.ErrorIs(t, r.handlePostgresError("get", pgx.ErrNoRows), kafkafile.ErrFileNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uniq_kafka_file_name"}
	assert.ErrorIs(t, r.handlePostgresError("insert", dup), kafkafile.ErrDuplicateFileName)

	other := r.handlePostgresError("list", errors.New("conn closed"))
	assert.False(t, errors.Is(other, kafkafile.ErrFileNotFound))
	assert.Contains(t, other.Error(), "list")
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

// setupTestDB starts a PostgreSQL container and applies the migrations.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		tcpostgres.WithDatabase("kafka_files_test"),
		tcpostgres.WithUsername("kafka"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, Migrate(dsn))
	// a second run is a no-op
	require.NoError(t, Migrate(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewWithPool(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	record := &kafkafile.FileRecord{
		ClusterID:   4,
		FileName:    "server.properties",
		FileMd5:     kafkafile.Md5Hex([]byte("broker.id=1")),
		FileType:    kafkafile.FileTypeServerConfig,
		Description: "defaults",
		Operator:    "alice",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Insert(ctx, record))
	assert.Positive(t, record.ID)

	t.Run("duplicate name", func(t *testing.T) {
		dup := *record
		err := repo.Insert(ctx, &dup)
		assert.ErrorIs(t, err, kafkafile.ErrDuplicateFileName)
	})

	t.Run("get by id and name", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		byName, err := repo.GetByName(ctx, "server.properties")
		require.NoError(t, err)

		assert.Equal(t, record.FileMd5, byID.FileMd5)
		assert.Equal(t, kafkafile.FileTypeServerConfig, byName.FileType)
		assert.Equal(t, int64(4), byName.ClusterID)

		_, err = repo.GetByID(ctx, record.ID+100)
		assert.ErrorIs(t, err, kafkafile.ErrFileNotFound)
	})

	t.Run("update and restore", func(t *testing.T) {
		updated := *record
		updated.FileName = "broker.properties"
		updated.FileMd5 = kafkafile.Md5Hex([]byte("broker.id=2"))
		updated.Operator = "bob"
		updated.UpdatedAt = now.Add(time.Minute)

		rows, err := repo.UpdateByID(ctx, &updated)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		rows, err = repo.UpdateByID(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		got, err := repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, "server.properties", got.FileName)
		assert.Equal(t, "alice", got.Operator)
	})

	t.Run("list and delete", func(t *testing.T) {
		other := &kafkafile.FileRecord{
			ClusterID: kafkafile.NoCluster,
			FileName:  "kafka.tgz",
			FileMd5:   kafkafile.Md5Hex([]byte("pkg")),
			FileType:  kafkafile.FileTypePackage,
			Operator:  "alice",
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, repo.Insert(ctx, other))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Less(t, list[0].ID, list[1].ID)

		rows, err := repo.DeleteByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		rows, err = repo.DeleteByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}
