package repository

import (
	"errors"

	"score_analysis_backend/internal/model"

	"gorm.io/gorm"
)

type SheetRepository struct {
	DB *gorm.DB
}

func NewSheetRepository(db *gorm.DB) *SheetRepository {
	return &SheetRepository{DB: db}
}

func (r *SheetRepository) Create(sheet *model.ScoreSheet) error {
	return r.DB.Create(sheet).Error
}

func (r *SheetRepository) Update(sheet *model.ScoreSheet) error {
	return r.DB.Save(sheet).Error
}

func (r *SheetRepository) FindByID(id string) (*model.ScoreSheet, error) {
	var sheet model.ScoreSheet
	if err := r.DB.First(&sheet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sheet, nil
}

// List 按创建时间倒序，kind 为空时返回全部
func (r *SheetRepository) List(kind model.SheetKind) ([]model.ScoreSheet, error) {
	var sheets []model.ScoreSheet
	query := r.DB.Order("created_at DESC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Find(&sheets).Error
	return sheets, err
}

func (r *SheetRepository) Delete(id string) error {
	return r.DB.Delete(&model.ScoreSheet{}, "id = ?", id).Error
}

// UpsertConfigured 按名称登记配置文件中的远程表格，已存在则更新地址
func (r *SheetRepository) UpsertConfigured(sheet *model.ScoreSheet) error {
	var existing model.ScoreSheet
	err := r.DB.Where("name = ? AND configured = ?", sheet.Name, true).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sheet.Configured = true
		return r.DB.Create(sheet).Error
	}
	if err != nil {
		return err
	}

	existing.URL = sheet.URL
	existing.Kind = sheet.Kind
	existing.Format = sheet.Format
	if err := r.DB.Save(&existing).Error; err != nil {
		return err
	}
	*sheet = existing
	return nil
}
