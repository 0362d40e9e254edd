package rag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/iWorld-y/stock_advisor/internal/domain"
)

// Store 文档索引的持久化层，单个 sqlite 文件保存全部文本块及其向量
// 重建索引为整体替换，存在数据即代表一份完整可用的索引
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	ordinal   INTEGER PRIMARY KEY,
	company   TEXT NOT NULL,
	content   TEXT NOT NULL,
	embedding TEXT NOT NULL
);`

// NewStore 打开（或创建）索引文件
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建索引目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开索引文件失败: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化索引结构失败: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭底层数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace 用新的块集合整体替换旧索引，单事务内完成
func (s *Store) Replace(ctx context.Context, chunks []domain.DocumentChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		tx.Rollback()
		return fmt.Errorf("清空旧索引失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (ordinal, company, content, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		emb, err := json.Marshal(c.Embedding)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("序列化向量失败: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.Ordinal, c.Company, c.Text, string(emb)); err != nil {
			tx.Rollback()
			return fmt.Errorf("写入文本块失败: %w", err)
		}
	}

	return tx.Commit()
}

// LoadAll 按入库顺序读出全部文本块，索引为空时返回空切片
func (s *Store) LoadAll(ctx context.Context) ([]domain.DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ordinal, company, content, embedding FROM chunks ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("读取索引失败: %w", err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		var emb string
		if err := rows.Scan(&c.Ordinal, &c.Company, &c.Text, &emb); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(emb), &c.Embedding); err != nil {
			return nil, fmt.Errorf("解析向量失败: %w", err)
		}
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}
