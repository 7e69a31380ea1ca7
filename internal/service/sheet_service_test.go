package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"score_analysis_backend/internal/config"
	"score_analysis_backend/internal/model"
	"score_analysis_backend/internal/source"
	"score_analysis_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sheetFixture struct {
	svc     *SheetService
	store   *memorySheetStore
	cache   *memoryCache
	fetcher *stubFetcher
	root    string
}

func newSheetFixture(t *testing.T) *sheetFixture {
	t.Helper()
	f := &sheetFixture{
		store:   newMemorySheetStore(),
		cache:   newMemoryCache(),
		fetcher: &stubFetcher{},
		root:    t.TempDir(),
	}
	cfg := &config.Config{Source: config.SourceConfig{MaxUploadMB: 1}}
	f.svc = NewSheetService(f.store, &LocalStorageProvider{Root: f.root}, f.cache, f.fetcher, cfg)
	return f
}

func TestUploadStoresAndCachesGrid(t *testing.T) {
	f := newSheetFixture(t)
	ctx := context.Background()

	sheet, err := f.svc.Upload(ctx, " 期中考试 ", "scores", "mid.csv", []byte(scoresCSV))
	require.NoError(t, err)
	assert.Equal(t, "期中考试", sheet.Name)
	assert.Equal(t, model.SheetScores, sheet.Kind)
	assert.Equal(t, model.SourceUpload, sheet.Source)
	assert.Equal(t, "csv", sheet.Format)
	assert.Equal(t, 3, sheet.Rows)
	assert.Equal(t, 5, sheet.Columns)
	assert.Len(t, sheet.ContentHash, 64)
	assert.Equal(t, fmt.Sprintf("sheets/%s.csv", sheet.ID), sheet.ObjectKey)

	_, err = os.Stat(filepath.Join(f.root, "sheets", sheet.ID+".csv"))
	require.NoError(t, err)
	assert.Contains(t, f.cache.items, sheet.ContentHash)

	stored, err := f.svc.Get(sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, sheet.ID, stored.ID)
}

func TestLoadGridPrefersCache(t *testing.T) {
	f := newSheetFixture(t)
	ctx := context.Background()

	sheet, err := f.svc.Upload(ctx, "期中", "scores", "mid.csv", []byte(scoresCSV))
	require.NoError(t, err)

	// 删除原文件后仍能从缓存读取
	require.NoError(t, os.Remove(filepath.Join(f.root, "sheets", sheet.ID+".csv")))
	grid, err := f.svc.LoadGrid(ctx, sheet)
	require.NoError(t, err)
	require.Len(t, grid, 4)
	assert.Equal(t, []string{"张三", "1", "100", "120", "220"}, grid[1])
}

func TestLoadGridFallsBackToStorage(t *testing.T) {
	f := newSheetFixture(t)
	ctx := context.Background()

	sheet, err := f.svc.Upload(ctx, "期中", "scores", "mid.csv", []byte(scoresCSV))
	require.NoError(t, err)
	delete(f.cache.items, sheet.ContentHash)

	grid, err := f.svc.LoadGrid(ctx, sheet)
	require.NoError(t, err)
	assert.Len(t, grid, 4)
	assert.Contains(t, f.cache.items, sheet.ContentHash, "storage read repopulates the cache")
}

func TestUploadRejectsInvalidInput(t *testing.T) {
	f := newSheetFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "x", "homework", "a.csv", []byte(scoresCSV))
	assert.ErrorIs(t, err, util.ErrInvalidSheet)

	_, err = f.svc.Upload(ctx, "x", "scores", "a.csv", []byte(""))
	assert.ErrorIs(t, err, util.ErrInvalidSheet)

	_, err = f.svc.Upload(ctx, "x", "knowledge", "a.csv", []byte("姓名,Q1\n,函数\n"))
	assert.ErrorIs(t, err, util.ErrInvalidSheet)

	big := make([]byte, (1<<20)+1)
	_, err = f.svc.Upload(ctx, "x", "scores", "a.csv", big)
	assert.ErrorIs(t, err, util.ErrFileTooLarge)

	assert.Empty(t, f.store.sheets)
}

func TestUploadKnowledgeSheet(t *testing.T) {
	f := newSheetFixture(t)

	sheet, err := f.svc.Upload(context.Background(), "", "knowledge", "kp.csv", []byte(knowledgeCSV))
	require.NoError(t, err)
	assert.Equal(t, "kp.csv", sheet.Name)
	assert.Equal(t, model.SheetKnowledge, sheet.Kind)
	assert.Equal(t, 2, sheet.Rows)
	assert.Equal(t, 5, sheet.Columns)
}

func TestRemoteSheetIsFetchedOnEveryLoad(t *testing.T) {
	f := newSheetFixture(t)
	f.fetcher.data = []byte(scoresCSV)
	ctx := context.Background()

	sheet, err := f.svc.RegisterRemote(ctx, RegisterRemoteRequest{Name: "月考", URL: "https://example.com/scores.csv"})
	require.NoError(t, err)
	assert.Equal(t, model.SourceRemote, sheet.Source)
	assert.Equal(t, 3, sheet.Rows)
	assert.Equal(t, 1, f.fetcher.calls)

	_, err = f.svc.LoadGrid(ctx, sheet)
	require.NoError(t, err)
	_, err = f.svc.LoadGrid(ctx, sheet)
	require.NoError(t, err)
	assert.Equal(t, 3, f.fetcher.calls)
	assert.Empty(t, f.cache.items)
}

func TestRemoteFailurePropagatesSourceUnavailable(t *testing.T) {
	f := newSheetFixture(t)
	f.fetcher.err = fmt.Errorf("%w: connection refused", source.ErrSourceUnavailable)
	ctx := context.Background()

	_, err := f.svc.RegisterRemote(ctx, RegisterRemoteRequest{Name: "月考", URL: "https://example.com/scores.csv"})
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
	assert.Empty(t, f.store.sheets)

	sheet := &model.ScoreSheet{ID: "r1", Source: model.SourceRemote, Format: "csv", URL: "https://example.com/a.csv"}
	_, err = f.svc.LoadGrid(ctx, sheet)
	assert.True(t, errors.Is(err, source.ErrSourceUnavailable))
}

func TestSyncConfiguredUpsertsByName(t *testing.T) {
	f := newSheetFixture(t)
	remotes := []config.RemoteSource{{Name: "月考", URL: "https://example.com/a.csv", Kind: "scores"}}
	require.NoError(t, f.svc.SyncConfigured(remotes))

	remotes[0].URL = "https://example.com/b.xlsx"
	require.NoError(t, f.svc.SyncConfigured(remotes))

	sheets, err := f.svc.List("")
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "https://example.com/b.xlsx", sheets[0].URL)
	assert.Equal(t, "xlsx", sheets[0].Format)
	assert.True(t, sheets[0].Configured)
	assert.Equal(t, 0, f.fetcher.calls)

	err = f.svc.SyncConfigured([]config.RemoteSource{{Name: "x", URL: "https://example.com/a.csv", Kind: "bad"}})
	assert.ErrorIs(t, err, util.ErrInvalidSheet)
}

func TestListFiltersByKind(t *testing.T) {
	f := newSheetFixture(t)
	ctx := context.Background()
	_, err := f.svc.Upload(ctx, "a", "scores", "a.csv", []byte(scoresCSV))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, "b", "knowledge", "b.csv", []byte(knowledgeCSV))
	require.NoError(t, err)

	sheets, err := f.svc.List("knowledge")
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "b", sheets[0].Name)

	_, err = f.svc.List("bad")
	assert.ErrorIs(t, err, util.ErrInvalidSheet)

	empty, err := newSheetFixture(t).svc.List("")
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestDeleteRemovesObjectAndCache(t *testing.T) {
	f := newSheetFixture(t)
	ctx := context.Background()

	sheet, err := f.svc.Upload(ctx, "期中", "scores", "mid.csv", []byte(scoresCSV))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, sheet.ID))
	assert.Empty(t, f.cache.items)
	_, err = os.Stat(filepath.Join(f.root, "sheets", sheet.ID+".csv"))
	assert.True(t, os.IsNotExist(err))

	_, err = f.svc.Get(sheet.ID)
	assert.ErrorIs(t, err, util.ErrSheetNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, sheet.ID), util.ErrSheetNotFound)
}

func TestRemoteLoadRefreshesShape(t *testing.T) {
	f := newSheetFixture(t)
	f.fetcher.data = []byte(scoresCSV)
	ctx := context.Background()

	sheet, err := f.svc.RegisterRemote(ctx, RegisterRemoteRequest{Name: "月考", URL: "https://example.com/scores.csv"})
	require.NoError(t, err)

	f.fetcher.data = []byte(scoresCSV + "赵六,4,70,60,130\n")
	_, err = f.svc.LoadGrid(ctx, sheet)
	require.NoError(t, err)

	stored, err := f.svc.Get(sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rows)
}
