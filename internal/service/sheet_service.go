package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"score_analysis_backend/internal/config"
	"score_analysis_backend/internal/knowledge"
	"score_analysis_backend/internal/model"
	"score_analysis_backend/internal/table"
	"score_analysis_backend/internal/util"
	"score_analysis_backend/pkg/logger"
	"score_analysis_backend/pkg/monitoring"
	"score_analysis_backend/pkg/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SheetStore interface {
	Create(sheet *model.ScoreSheet) error
	Update(sheet *model.ScoreSheet) error
	FindByID(id string) (*model.ScoreSheet, error)
	List(kind model.SheetKind) ([]model.ScoreSheet, error)
	Delete(id string) error
	UpsertConfigured(sheet *model.ScoreSheet) error
}

type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type TableCacher interface {
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}

type RemoteFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type SheetService struct {
	repo      SheetStore
	storage   ObjectStorage
	cache     TableCacher
	fetcher   RemoteFetcher
	maxUpload int64
}

func NewSheetService(repo SheetStore, storage ObjectStorage, cache TableCacher, fetcher RemoteFetcher, cfg *config.Config) *SheetService {
	return &SheetService{
		repo:      repo,
		storage:   storage,
		cache:     cache,
		fetcher:   fetcher,
		maxUpload: cfg.Source.MaxUploadMB << 20,
	}
}

// MaxUploadBytes 上传文件大小上限，0 表示不限制
func (s *SheetService) MaxUploadBytes() int64 {
	return s.maxUpload
}

type RegisterRemoteRequest struct {
	Name   string `json:"name" binding:"required"`
	URL    string `json:"url" binding:"required"`
	Kind   string `json:"kind"`
	Format string `json:"format"`
}

// Upload 校验并保存上传的成绩表。原文件写入对象存储，解析结果按内容哈希缓存。
func (s *SheetService) Upload(ctx context.Context, name, kind, filename string, data []byte) (*model.ScoreSheet, error) {
	ctx, span := tracing.Start(ctx, "SheetService.Upload", "")
	var err error
	defer func() { tracing.End(span, err) }()

	if s.maxUpload > 0 && int64(len(data)) > s.maxUpload {
		err = fmt.Errorf("%w: %d bytes", util.ErrFileTooLarge, len(data))
		return nil, err
	}
	sheetKind, ok := model.ParseSheetKind(kind)
	if !ok {
		err = fmt.Errorf("%w: unknown kind %q", util.ErrInvalidSheet, kind)
		return nil, err
	}
	format := table.DetectFormat(filename)

	grid, err := table.ReadGrid(bytes.NewReader(data), format)
	if err != nil {
		err = fmt.Errorf("%w: %v", util.ErrInvalidSheet, err)
		return nil, err
	}
	rows, cols, err := validateGrid(grid, sheetKind)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = filename
	}
	sum := sha256.Sum256(data)
	sheet := &model.ScoreSheet{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Kind:        sheetKind,
		Source:      model.SourceUpload,
		Format:      string(format),
		ContentHash: hex.EncodeToString(sum[:]),
		Size:        int64(len(data)),
		Rows:        rows,
		Columns:     cols,
	}
	sheet.ObjectKey = fmt.Sprintf("sheets/%s.%s", sheet.ID, format)

	if err = s.storage.Upload(ctx, sheet.ObjectKey, bytes.NewReader(data), sheet.Size, util.SheetContentType(sheet.Format)); err != nil {
		return nil, err
	}
	if err = s.repo.Create(sheet); err != nil {
		if delErr := s.storage.Delete(ctx, sheet.ObjectKey); delErr != nil {
			logger.Log.Warn("Failed to remove orphan sheet object", zap.String("key", sheet.ObjectKey), zap.Error(delErr))
		}
		return nil, err
	}
	s.cacheGrid(ctx, sheet.ContentHash, grid)

	logger.Log.Info("Sheet uploaded",
		zap.String("id", sheet.ID),
		zap.String("name", sheet.Name),
		zap.String("kind", string(sheet.Kind)),
		zap.Int("rows", rows),
	)
	return sheet, nil
}

// RegisterRemote 登记远程表格，登记时拉取一次用于校验。
func (s *SheetService) RegisterRemote(ctx context.Context, req RegisterRemoteRequest) (*model.ScoreSheet, error) {
	ctx, span := tracing.Start(ctx, "SheetService.RegisterRemote", "")
	var err error
	defer func() { tracing.End(span, err) }()

	sheetKind, ok := model.ParseSheetKind(req.Kind)
	if !ok {
		err = fmt.Errorf("%w: unknown kind %q", util.ErrInvalidSheet, req.Kind)
		return nil, err
	}
	format, err := remoteFormat(req.URL, req.Format)
	if err != nil {
		err = fmt.Errorf("%w: %v", util.ErrInvalidSheet, err)
		return nil, err
	}

	sheet := &model.ScoreSheet{
		Name:   strings.TrimSpace(req.Name),
		Kind:   sheetKind,
		Source: model.SourceRemote,
		Format: string(format),
		URL:    strings.TrimSpace(req.URL),
	}

	grid, err := s.fetchGrid(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if sheet.Rows, sheet.Columns, err = validateGrid(grid, sheetKind); err != nil {
		return nil, err
	}

	if err = s.repo.Create(sheet); err != nil {
		return nil, err
	}
	logger.Log.Info("Remote sheet registered", zap.String("id", sheet.ID), zap.String("url", sheet.URL))
	return sheet, nil
}

// SyncConfigured 把配置文件里的远程表格登记到数据库，不拉取内容
func (s *SheetService) SyncConfigured(remotes []config.RemoteSource) error {
	for _, r := range remotes {
		kind, ok := model.ParseSheetKind(r.Kind)
		if !ok {
			return fmt.Errorf("%w: remote %q has unknown kind %q", util.ErrInvalidSheet, r.Name, r.Kind)
		}
		format, err := remoteFormat(r.URL, r.Format)
		if err != nil {
			return fmt.Errorf("remote %q: %w", r.Name, err)
		}
		sheet := &model.ScoreSheet{
			Name:   r.Name,
			Kind:   kind,
			Source: model.SourceRemote,
			Format: string(format),
			URL:    r.URL,
		}
		if err := s.repo.UpsertConfigured(sheet); err != nil {
			return err
		}
	}
	return nil
}

func (s *SheetService) List(kind string) ([]model.ScoreSheet, error) {
	var sheetKind model.SheetKind
	if kind != "" {
		k, ok := model.ParseSheetKind(kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", util.ErrInvalidSheet, kind)
		}
		sheetKind = k
	}
	sheets, err := s.repo.List(sheetKind)
	if sheets == nil {
		sheets = []model.ScoreSheet{}
	}
	return sheets, err
}

func (s *SheetService) Get(id string) (*model.ScoreSheet, error) {
	sheet, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", util.ErrSheetNotFound, id)
	}
	return sheet, err
}

func (s *SheetService) Delete(ctx context.Context, id string) error {
	sheet, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if sheet.ObjectKey != "" {
		if err := s.storage.Delete(ctx, sheet.ObjectKey); err != nil {
			logger.Log.Warn("Failed to delete sheet object", zap.String("key", sheet.ObjectKey), zap.Error(err))
		}
	}
	if sheet.ContentHash != "" && s.cache != nil {
		if err := s.cache.Delete(ctx, sheet.ContentHash); err != nil {
			logger.Log.Warn("Failed to evict sheet cache", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}

// LoadGrid 读取表格内容。远程表格每次重新拉取；上传的表格优先读缓存，未命中再从对象存储读取。
func (s *SheetService) LoadGrid(ctx context.Context, sheet *model.ScoreSheet) ([][]string, error) {
	ctx, span := tracing.Start(ctx, "SheetService.LoadGrid", sheet.ID)
	var err error
	defer func() { tracing.End(span, err) }()

	var grid [][]string
	if sheet.Source == model.SourceRemote {
		grid, err = s.fetchGrid(ctx, sheet)
		if err == nil {
			s.refreshShape(sheet, grid)
		}
		return grid, err
	}

	if s.cache != nil && sheet.ContentHash != "" {
		hit, cacheErr := s.cache.Get(ctx, sheet.ContentHash, &grid)
		if cacheErr != nil {
			logger.Log.Warn("Sheet cache read failed", zap.String("id", sheet.ID), zap.Error(cacheErr))
		} else if hit {
			monitoring.SheetLoads.WithLabelValues("cache", "ok").Inc()
			return grid, nil
		}
	}

	grid, err = s.readStored(ctx, sheet)
	monitoring.SheetLoads.WithLabelValues(string(model.SourceUpload), monitoring.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.cacheGrid(ctx, sheet.ContentHash, grid)
	return grid, nil
}

func (s *SheetService) readStored(ctx context.Context, sheet *model.ScoreSheet) ([][]string, error) {
	rc, err := s.storage.Open(ctx, sheet.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("open sheet object %s: %w", sheet.ObjectKey, err)
	}
	defer rc.Close()

	return table.ReadGrid(rc, table.Format(sheet.Format))
}

func (s *SheetService) fetchGrid(ctx context.Context, sheet *model.ScoreSheet) ([][]string, error) {
	data, err := s.fetcher.Fetch(ctx, sheet.URL)
	if err == nil {
		var grid [][]string
		grid, err = table.ReadGrid(bytes.NewReader(data), table.Format(sheet.Format))
		if err != nil {
			err = fmt.Errorf("%w: %v", util.ErrInvalidSheet, err)
		} else {
			monitoring.SheetLoads.WithLabelValues(string(model.SourceRemote), "ok").Inc()
			return grid, nil
		}
	}
	monitoring.SheetLoads.WithLabelValues(string(model.SourceRemote), "error").Inc()
	logger.Log.Warn("Remote sheet fetch failed", zap.String("url", sheet.URL), zap.Error(err))
	return nil, err
}

// refreshShape 远程表格内容可能变化，行列数不同时更新登记信息
func (s *SheetService) refreshShape(sheet *model.ScoreSheet, grid [][]string) {
	rows, cols, err := validateGrid(grid, sheet.Kind)
	if err != nil || (rows == sheet.Rows && cols == sheet.Columns) {
		return
	}
	sheet.Rows, sheet.Columns = rows, cols
	if err := s.repo.Update(sheet); err != nil {
		logger.Log.Warn("Failed to update remote sheet shape", zap.String("id", sheet.ID), zap.Error(err))
	}
}

func (s *SheetService) cacheGrid(ctx context.Context, hash string, grid [][]string) {
	if s.cache == nil || hash == "" {
		return
	}
	if err := s.cache.Set(ctx, hash, grid); err != nil {
		logger.Log.Warn("Sheet cache write failed", zap.String("hash", hash), zap.Error(err))
	}
}

// validateGrid 确认表头结构可用，返回数据行数和列数
func validateGrid(grid [][]string, kind model.SheetKind) (int, int, error) {
	if kind == model.SheetKnowledge {
		ht, err := table.NewHeaderTable(grid, knowledge.HeaderLevels)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", util.ErrInvalidSheet, err)
		}
		return len(ht.Rows), len(ht.Headers), nil
	}
	t, err := table.FromGrid(grid)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", util.ErrInvalidSheet, err)
	}
	return t.Len(), len(t.Columns), nil
}

func remoteFormat(url, format string) (table.Format, error) {
	if format != "" {
		return table.ParseFormat(format)
	}
	return table.DetectFormat(url), nil
}
