package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SheetKind string

const (
	// SheetScores 单行表头的成绩单，每列一个科目
	SheetScores SheetKind = "scores"
	// SheetKnowledge 三级表头（题号/知识点/满分）的小分表
	SheetKnowledge SheetKind = "knowledge"
)

type SheetSource string

const (
	SourceUpload SheetSource = "upload"
	SourceRemote SheetSource = "remote"
)

// ScoreSheet 成绩表登记信息。上传的文件存放在对象存储，远程表格只记录地址，每次查询重新拉取。
type ScoreSheet struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string         `gorm:"size:255;not null;index" json:"name"`
	Kind        SheetKind      `gorm:"size:20;not null" json:"kind"`
	Source      SheetSource    `gorm:"size:20;not null" json:"source"`
	Format      string         `gorm:"size:10;not null" json:"format"`
	URL         string         `gorm:"size:1000" json:"url,omitempty"`
	ObjectKey   string         `gorm:"size:500" json:"-"`
	ContentHash string         `gorm:"size:64" json:"contentHash,omitempty"`
	Size        int64          `json:"size"`
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	Configured  bool           `gorm:"default:false" json:"configured"` // 来自配置文件的远程表格
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ScoreSheet) TableName() string {
	return "score_sheets"
}

func (s *ScoreSheet) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

func ParseSheetKind(s string) (SheetKind, bool) {
	switch SheetKind(s) {
	case "", SheetScores:
		return SheetScores, true
	case SheetKnowledge:
		return SheetKnowledge, true
	}
	return "", false
}
