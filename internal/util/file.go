package util

import (
	"path/filepath"
	"strings"
)

// IsAllowedSheet 按扩展名判断是否为支持的表格文件
func IsAllowedSheet(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedSheetExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SheetContentType 返回存储时使用的 Content-Type
func SheetContentType(format string) string {
	if format == "xlsx" {
		return MimeXLSX
	}
	return MimeCSV
}
