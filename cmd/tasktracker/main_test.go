package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/storage"
)

func TestPrintStorageInfo(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemory()
	require.NoError(t, b.Set(ctx, model.DefaultSnapshotKey, []byte("{}")))
	require.NoError(t, b.Set(ctx, "other", []byte("x")))

	var out bytes.Buffer
	require.NoError(t, printStorageInfo(ctx, &out, b, model.StorageConfig{Backend: "memory"}))
	assert.Contains(t, out.String(), "backend:      memory")
	assert.Contains(t, out.String(), "keys:         2")
	assert.Contains(t, out.String(), "  "+model.DefaultSnapshotKey+" *")
	assert.Contains(t, out.String(), "  other\n")
}

func TestPrintStorageInfoUnlistable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printStorageInfo(context.Background(), &out, storage.None{}, model.StorageConfig{}))
	assert.Contains(t, out.String(), "backend:      sqlite")
	assert.Contains(t, out.String(), "(not listable)")
}
