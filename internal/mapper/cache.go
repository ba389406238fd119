package mapper

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"rais/internal/model"
)

const defaultCacheSize = 128

// mappingCache 按签名缓存映射配置，LRU 淘汰
type mappingCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // 头部最新
	entries  map[string]*list.Element
}

type cacheEntry struct {
	signature string
	config    *model.MappingConfig
}

func newMappingCache(capacity int) *mappingCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &mappingCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get 命中时把条目提到最前
func (c *mappingCache) Get(signature string) (*model.MappingConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[signature]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).config, true
}

// Put 超出容量时淘汰最久未用的条目
func (c *mappingCache) Put(signature string, cfg *model.MappingConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[signature]; ok {
		el.Value.(*cacheEntry).config = cfg
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{signature: signature, config: cfg})
	c.entries[signature] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).signature)
	}
}

func (c *mappingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// mappingSignature 对 (排序后的列名, 类型, 样本摘要) 做 sha256
// 列名排序使签名不受列顺序影响
func mappingSignature(headers []string, kind model.ReportKind, sampleRows []map[string]model.CellValue) string {
	sorted := make([]string, len(headers))
	copy(sorted, headers)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(string(kind))
	b.WriteByte('|')
	b.WriteString(strings.Join(sorted, ","))
	b.WriteByte('|')
	b.WriteString(sampleDigest(sampleRows, sorted))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// sampleDigest 截断的样本摘要，只为区分同列名不同数据形态的表
func sampleDigest(rows []map[string]model.CellValue, sortedHeaders []string) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	for i, row := range rows {
		if i >= 3 {
			break
		}
		for _, h := range sortedHeaders {
			if v, ok := row[h]; ok {
				fmt.Fprintf(&b, "%d:%s;", v.Kind, v.AsText())
			}
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
