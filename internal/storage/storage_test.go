package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveReadDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	orgID := uuid.New()

	saved, err := store.Save(ctx, orgID, "vehicles/abc", "Insurance.PDF", "application/pdf", strings.NewReader("%PDF-1.4 content"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.Path, orgID.String()+"/vehicles/abc/"))
	assert.True(t, strings.HasSuffix(saved.Path, ".pdf"))
	assert.Equal(t, int64(len("%PDF-1.4 content")), saved.Size)
	assert.Equal(t, "application/pdf", saved.MimeType)

	rc, err := store.Read(ctx, saved.Path)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4 content", string(content))

	require.NoError(t, store.Delete(ctx, saved.Path))
	_, err = store.Read(ctx, saved.Path)
	assert.True(t, errors.Is(err, ErrFileNotFound))

	// Deleting twice is fine
	assert.NoError(t, store.Delete(ctx, saved.Path))
}

func TestLocalStorage_DetectsContentType(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	saved, err := store.Save(context.Background(), uuid.New(), "", "photo", "", bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", saved.MimeType)
	assert.Equal(t, int64(len(png)), saved.Size)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestObjectPath_CleansFolder(t *testing.T) {
	orgID := uuid.New()
	p := objectPath(orgID, "../../other", "a.txt")
	assert.True(t, strings.HasPrefix(p, orgID.String()+"/other/"))
}
