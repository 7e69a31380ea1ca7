package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	ErrEmptySheet        = errors.New("sheet has no header row")
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat 根据文件名或 URL 判断格式，无法判断时按 CSV 处理（远程表格导出一般为 CSV）。
func DetectFormat(name string) Format {
	base := strings.ToLower(name)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	switch filepath.Ext(base) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// ParseFormat 解析外部传入的格式名称
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "xlsm", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ReadGrid 把整个表格读成二维文本，不解释表头。
func ReadGrid(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Decode 读取单行表头的表格
func Decode(r io.Reader, format Format) (*RawTable, error) {
	grid, err := ReadGrid(r, format)
	if err != nil {
		return nil, err
	}
	return FromGrid(grid)
}

// FromGrid 把二维文本的第一行当作列名，末尾的空行会被去掉
func FromGrid(grid [][]string) (*RawTable, error) {
	grid = trimTrailingEmpty(grid)
	if len(grid) == 0 {
		return nil, ErrEmptySheet
	}
	return New(grid[0], grid[1:]), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	// Excel 在中文系统下另存的 CSV 通常是 GBK 编码
	if !utf8.Valid(data) {
		decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode gb18030 csv: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func trimTrailingEmpty(grid [][]string) [][]string {
	end := len(grid)
	for end > 0 && rowEmpty(grid[end-1]) {
		end--
	}
	return grid[:end]
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
