package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/kafka-files/pkg/kafkafile"
	"github.com/tendant/kafka-files/pkg/kafkafile/repo/memory"
	memorystorage "github.com/tendant/kafka-files/pkg/kafkafile/storage/memory"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func sharedRegistry(t *testing.T) RegistryFactory {
	t.Helper()
	registry, err := kafkafile.New(
		kafkafile.WithRepository(memory.New()),
		kafkafile.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)
	return func(ctx context.Context, verbose bool) (kafkafile.Registry, io.Closer, error) {
		return registry, nopCloser{}, nil
	}
}

func run(t *testing.T, factory RegistryFactory, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand(factory)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--operator", "alice"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCLI_Lifecycle(t *testing.T) {
	factory := sharedRegistry(t)
	dir := t.TempDir()
	configPath := writeFile(t, dir, "server.properties", "broker.id=1\n")

	out, err := run(t, factory, "upload", configPath, "--cluster", "3", "--description", "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded server.properties (id 1")

	_, err = run(t, factory, "upload", configPath, "--cluster", "3")
	assert.ErrorContains(t, err, "resource already existed")

	out, err = run(t, factory, "preview", "1")
	require.NoError(t, err)
	assert.Equal(t, "broker.id=1\n", out)

	updated := writeFile(t, dir, "updated.properties", "broker.id=2\n")
	_, err = run(t, factory, "replace", "1", updated, "--name", "server.properties")
	require.NoError(t, err)

	out, err = run(t, factory, "preview", "1")
	require.NoError(t, err)
	assert.Equal(t, "broker.id=2\n", out)

	out, err = run(t, factory, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "server.properties")
	assert.Contains(t, out, "alice")

	_, err = run(t, factory, "delete", "1")
	require.NoError(t, err)

	out, err = run(t, factory, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No files found.")
}

func TestCLI_Errors(t *testing.T) {
	factory := sharedRegistry(t)
	dir := t.TempDir()

	_, err := run(t, factory, "delete", "abc")
	assert.ErrorContains(t, err, "invalid file id")

	_, err = run(t, factory, "upload", filepath.Join(dir, "missing.properties"))
	assert.Error(t, err)

	// a config file must name its cluster
	configPath := writeFile(t, dir, "server.properties", "a=1")
	_, err = run(t, factory, "upload", configPath)
	assert.ErrorContains(t, err, "param illegal")

	pkgPath := writeFile(t, dir, "kafka.tgz", "pkg")
	_, err = run(t, factory, "upload", pkgPath)
	require.NoError(t, err)

	_, err = run(t, factory, "preview", "1")
	assert.ErrorContains(t, err, "file type not supported")
}

func TestCLI_Enums(t *testing.T) {
	out, err := run(t, sharedRegistry(t), "enums")
	require.NoError(t, err)
	assert.Contains(t, out, ".properties")
	assert.Contains(t, out, "s3")
}

func TestInferFileType(t *testing.T) {
	assert.Equal(t, kafkafile.FileTypeServerConfig.Code(), inferFileType("server.properties"))
	assert.Equal(t, kafkafile.FileTypePackage.Code(), inferFileType("kafka_2.13-3.6.0.tgz"))
	assert.Equal(t, -1, inferFileType("notes.txt"))
}
