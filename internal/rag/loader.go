package rag

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/stock_advisor/internal/domain"
	"github.com/iWorld-y/stock_advisor/internal/logger"
)

// Loader 从本地目录加载财报文档并切分为文本块
// PDF 的文本抽取在入库前完成，这里只消费 .txt/.md/.html
type Loader struct {
	dir      string
	splitter *Splitter
}

// NewLoader 创建文档加载器
func NewLoader(dir string, splitter *Splitter) *Loader {
	return &Loader{dir: dir, splitter: splitter}
}

// Load 加载目录下所有财报文件，返回未嵌入的文本块（按入库顺序编号）
func (l *Loader) Load() ([]domain.DocumentChunk, error) {
	if _, err := os.Stat(l.dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取财报目录失败: %w", err)
	}

	var chunks []domain.DocumentChunk
	err := filepath.WalkDir(l.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		text, ok, err := extractText(path)
		if err != nil {
			logger.Log.Warnf("加载失败 %s: %v", path, err)
			return nil
		}
		if !ok {
			return nil
		}

		company := companyFromFilename(path)
		for _, piece := range l.splitter.Split(text) {
			chunks = append(chunks, domain.DocumentChunk{
				Ordinal: len(chunks),
				Company: company,
				Text:    piece,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return chunks, nil
}

// extractText 按扩展名提取纯文本，第二个返回值表示文件类型是否受支持
func extractText(path string) (string, bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", true, err
		}
		return string(data), true, nil

	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return "", true, err
		}
		defer f.Close()

		article, err := readability.FromReader(f, &url.URL{Path: path})
		if err != nil {
			return "", true, err
		}
		return article.TextContent, true, nil

	default:
		return "", false, nil
	}
}

// companyFromFilename 从文件名推导公司标识，如 AAPL_2023_annual.txt -> AAPL
func companyFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if idx := strings.Index(stem, "_"); idx > 0 {
		return stem[:idx]
	}
	return stem
}
