// Package storage 保存进程内的文章集合。
//
// Store 只存在于内存中，进程重启即丢失（feed 才是数据源）。Add 与 ReplaceAll 是仅有的写操作，
// 持写锁一次性替换内部切片；读操作拿到的是拷贝，不会看到写了一半的集合。
package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LJTian/BlogHub/internal/processor"
	"github.com/google/uuid"
)

// ErrNotFound 按 ID 查不到文章
var ErrNotFound = errors.New("storage: post not found")

type Store struct {
	mu      sync.RWMutex
	posts   []processor.Post
	version uint64
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add 以 link 作为幂等键：已存在时原样返回旧记录（created=false），不更新任何字段；
// 否则分配新 ID 插到最前面。占位链接 "#" 不参与去重
func (s *Store) Add(p processor.Post) (post processor.Post, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Link != processor.NoLink {
		for _, existing := range s.posts {
			if existing.Link == p.Link {
				return existing, false
			}
		}
	}

	p.ID = newPostID(s.now())
	next := make([]processor.Post, 0, len(s.posts)+1)
	next = append(next, p)
	next = append(next, s.posts...)
	s.posts = next
	s.version++
	return p, true
}

// ReplaceAll 丢弃当前集合并整体换成 posts；不做去重，调用方负责
func (s *Store) ReplaceAll(posts []processor.Post) {
	next := make([]processor.Post, len(posts))
	copy(next, posts)

	s.mu.Lock()
	s.posts = next
	s.version++
	s.mu.Unlock()
}

// GetAll 每次调用都按 pubDate 倒序重新排序；无法解析的日期排在最后，同一时间保持插入顺序
func (s *Store) GetAll() []processor.Post {
	s.mu.RLock()
	out := make([]processor.Post, len(s.posts))
	copy(out, s.posts)
	s.mu.RUnlock()

	keys := make([]time.Time, len(out))
	for i, p := range out {
		keys[i] = p.PublishedAt()
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]].After(keys[idx[b]])
	})

	sorted := make([]processor.Post, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// GetByID 按 ID 查找
func (s *Store) GetByID(id string) (processor.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return processor.Post{}, ErrNotFound
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Version 每次写入后递增，用作列表缓存的 key 前缀
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// newPostID 毫秒时间戳 + 9 位随机后缀
func newPostID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d%s", now.UnixMilli(), suffix)
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度（例如 varchar(512)）
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
