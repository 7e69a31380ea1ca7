package service

import (
	"context"
	"encoding/json"
	"sort"

	"score_analysis_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const scoresCSV = "姓名,考号,语文,数学,总分赋分\n" +
	"张三,1,100,120,220\n" +
	"李四,2,90,0,90\n" +
	"王五,3,80,110,190\n"

const knowledgeCSV = "姓名,考号,Q1,Q2,Q3\n" +
	",,函数,函数,几何\n" +
	",,10,20,0\n" +
	"张三,1,10,0,3\n" +
	"李四,2,6,20,2\n"

type memorySheetStore struct {
	sheets map[string]*model.ScoreSheet
}

func newMemorySheetStore() *memorySheetStore {
	return &memorySheetStore{sheets: make(map[string]*model.ScoreSheet)}
}

func (m *memorySheetStore) Create(sheet *model.ScoreSheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.New().String()
	}
	cp := *sheet
	m.sheets[sheet.ID] = &cp
	return nil
}

func (m *memorySheetStore) Update(sheet *model.ScoreSheet) error {
	cp := *sheet
	m.sheets[sheet.ID] = &cp
	return nil
}

func (m *memorySheetStore) FindByID(id string) (*model.ScoreSheet, error) {
	s, ok := m.sheets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memorySheetStore) List(kind model.SheetKind) ([]model.ScoreSheet, error) {
	var out []model.ScoreSheet
	for _, s := range m.sheets {
		if kind == "" || s.Kind == kind {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memorySheetStore) Delete(id string) error {
	delete(m.sheets, id)
	return nil
}

func (m *memorySheetStore) UpsertConfigured(sheet *model.ScoreSheet) error {
	for _, s := range m.sheets {
		if s.Configured && s.Name == sheet.Name {
			s.URL, s.Kind, s.Format = sheet.URL, sheet.Kind, sheet.Format
			*sheet = *s
			return nil
		}
	}
	sheet.Configured = true
	return m.Create(sheet)
}

type memoryCache struct {
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (c *memoryCache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.items, key)
	return nil
}

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

// staticLoader 直接返回内存中的表格
type staticLoader struct {
	sheets map[string]*model.ScoreSheet
	grids  map[string][][]string
	err    error
}

func (l *staticLoader) Get(id string) (*model.ScoreSheet, error) {
	s, ok := l.sheets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (l *staticLoader) LoadGrid(ctx context.Context, sheet *model.ScoreSheet) ([][]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.grids[sheet.ID], nil
}
