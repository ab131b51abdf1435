package sqlite_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/kafka-files/pkg/kafkafile"
	"github.com/tendant/kafka-files/pkg/kafkafile/repo/sqlite"
	memorystorage "github.com/tendant/kafka-files/pkg/kafkafile/storage/memory"
)

func openTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "kafka-files.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newRecord(name string, fileType kafkafile.FileType) *kafkafile.FileRecord {
	now := time.Now().UTC()
	return &kafkafile.FileRecord{
		ClusterID: 2,
		FileName:  name,
		FileMd5:   kafkafile.Md5Hex([]byte(name)),
		FileType:  fileType,
		Operator:  "alice",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	a := newRecord("a.properties", kafkafile.FileTypeServerConfig)
	require.NoError(t, repo.Insert(ctx, a))
	assert.Equal(t, int64(1), a.ID)

	pkg := newRecord("kafka.tgz", kafkafile.FileTypePackage)
	pkg.ClusterID = kafkafile.NoCluster
	require.NoError(t, repo.Insert(ctx, pkg))
	assert.Equal(t, int64(2), pkg.ID)

	err := repo.Insert(ctx, newRecord("a.properties", kafkafile.FileTypeServerConfig))
	assert.ErrorIs(t, err, kafkafile.ErrDuplicateFileName)

	got, err := repo.GetByName(ctx, "kafka.tgz")
	require.NoError(t, err)
	assert.Equal(t, kafkafile.FileTypePackage, got.FileType)
	assert.Equal(t, kafkafile.NoCluster, got.ClusterID)

	update := *a
	update.FileName = "kafka.tgz"
	_, err = repo.UpdateByID(ctx, &update)
	assert.ErrorIs(t, err, kafkafile.ErrDuplicateFileName)

	update.FileName = "b.properties"
	update.Operator = "bob"
	rows, err := repo.UpdateByID(ctx, &update)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.properties", got.FileName)
	assert.Equal(t, "bob", got.Operator)

	missing := newRecord("z.properties", kafkafile.FileTypeServerConfig)
	missing.ID = 99
	rows, err = repo.UpdateByID(ctx, missing)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)

	rows, err = repo.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, kafkafile.ErrFileNotFound)
}

func TestRepository_WithRegistry(t *testing.T) {
	ctx := context.Background()
	reg, err := kafkafile.New(
		kafkafile.WithRepository(openTestRepo(t)),
		kafkafile.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)

	ft := kafkafile.FileTypeServerConfig.Code()
	content := "num.partitions=3\n"
	status := reg.Upload(ctx, &kafkafile.FileRequest{
		ClusterID: 1,
		FileName:  "server.properties",
		FileMd5:   kafkafile.Md5Hex([]byte(content)),
		FileType:  &ft,
		Content:   strings.NewReader(content),
	}, "alice")
	require.Equal(t, kafkafile.StatusSuccess, status)

	preview, status := reg.DownloadForPreview(ctx, 1)
	assert.Equal(t, kafkafile.StatusSuccess, status)
	assert.Equal(t, content, preview)
}
