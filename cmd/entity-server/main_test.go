package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"listenAddr":`), 0o644))
	err := run(path, log.New(io.Discard, "", 0))
	assert.ErrorContains(t, err, "load config")
}

func TestRunRejectsBadRules(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(rules, []byte(`[`), 0o644))
	cfg := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"rulesPath":"`+filepath.ToSlash(rules)+`"}`), 0o644))
	err := run(cfg, log.New(io.Discard, "", 0))
	assert.ErrorContains(t, err, "load rules")
}
