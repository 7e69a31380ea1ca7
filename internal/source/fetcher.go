// Package source 拉取远程成绩表。每次查询都重新拉取，只尝试一次，不做重试。
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var ErrSourceUnavailable = errors.New("source unavailable")

type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// Fetch 下载表格内容。网络错误、非 2xx 状态和超出大小限制都包装为 ErrSourceUnavailable。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := ExportURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, target, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrSourceUnavailable, f.MaxBytes)
	}
	return data, nil
}

var googleSheetPath = regexp.MustCompile(`^/spreadsheets/d/([^/]+)`)

// ExportURL 校验地址；Google 表格的编辑链接转换为 CSV 导出链接，其他地址原样返回
func ExportURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: invalid url %q", ErrSourceUnavailable, rawURL)
	}

	if u.Host != "docs.google.com" {
		return rawURL, nil
	}
	m := googleSheetPath.FindStringSubmatch(u.Path)
	if m == nil || u.Query().Get("format") != "" {
		return rawURL, nil
	}

	gid := u.Query().Get("gid")
	if gid == "" && u.Fragment != "" {
		if q, err := url.ParseQuery(u.Fragment); err == nil {
			gid = q.Get("gid")
		}
	}
	out := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", m[1])
	if gid != "" {
		out += "&gid=" + url.QueryEscape(gid)
	}
	return out, nil
}
