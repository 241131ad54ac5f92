package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/travacasa/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "travacasa dev")
	assert.Contains(t, out, "commit: none")
}

func TestMigrateAndSeed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRAVACASA_DATABASE_DRIVER", "sqlite")
	t.Setenv("TRAVACASA_DATABASE_PATH", filepath.Join(dir, "travacasa.db"))
	t.Setenv("TRAVACASA_APP_DEBUG", "false")
	configPath := filepath.Join(dir, "missing.yaml")

	out, err := run(t, "migrate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated")

	out, err = run(t, "seed", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 7 listings")

	out, err = run(t, "seed", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to seed")

	out, err = run(t, "seed", "--reset", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 7 listings")
}

func TestNewRedisClient(t *testing.T) {
	client, err := newRedisClient(context.Background(), &config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = newRedisClient(context.Background(), &config.RedisConfig{URL: "://bad"})
	assert.ErrorContains(t, err, "parse redis url")
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "bogus")
	assert.Error(t, err)
}
