package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	ctx := context.Background()
	content := "broker.id=1\n"
	sum := kafkafile.Md5Hex([]byte(content))

	require.NoError(t, backend.Upload(ctx, "server.properties", sum, strings.NewReader(content)))

	_, err = os.Stat(filepath.Join(tmp, sum, "server.properties"))
	require.NoError(t, err)

	rc, err := backend.Download(ctx, "server.properties", sum)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, content, string(got))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(tmp, sum))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFSBackend_ChecksumMismatch(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	ctx := context.Background()
	sum := kafkafile.Md5Hex([]byte("expected"))

	err = backend.Upload(ctx, "server.properties", sum, strings.NewReader("actual"))
	assert.True(t, errors.Is(err, kafkafile.ErrChecksumMismatch))

	_, err = backend.Download(ctx, "server.properties", sum)
	assert.True(t, errors.Is(err, kafkafile.ErrObjectNotFound))

	entries, err := os.ReadDir(filepath.Join(tmp, sum))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFSBackend_DownloadBaseURL(t *testing.T) {
	tmp := t.TempDir()

	b, err := New(Config{BaseDir: tmp, URLPrefix: "http://files.local/kafka/"})
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/kafka/", b.DownloadBaseURL())
	assert.Equal(t, kafkafile.StorageKindFS, b.Kind())

	b, err = New(Config{BaseDir: tmp})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.DownloadBaseURL(), "file://"))
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
