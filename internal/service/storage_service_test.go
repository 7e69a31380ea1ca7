package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"score_analysis_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()}}
	svc := NewStorageService(cfg)
	ctx := context.Background()

	require.NoError(t, svc.Upload(ctx, "sheets/a.csv", strings.NewReader("姓名,数学"), 13, "text/csv"))

	rc, err := svc.Open(ctx, "sheets/a.csv")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "姓名,数学", string(data))

	require.NoError(t, svc.Delete(ctx, "sheets/a.csv"))
	_, err = svc.Open(ctx, "sheets/a.csv")
	assert.Error(t, err)
	// 重复删除不报错
	assert.NoError(t, svc.Delete(ctx, "sheets/a.csv"))
}

func TestLocalStorageKeyCannotEscapeRoot(t *testing.T) {
	p := &LocalStorageProvider{Root: "/data/uploads"}
	assert.Equal(t, "/data/uploads/etc/passwd", p.path("../../etc/passwd"))
}
