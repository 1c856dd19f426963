package memory

import (
	"container/list"
	"time"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/pkg/metrics"
)

// evictLRU - удаляет наименее используемый элемент.
func (c *LRUCacheTTL) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
		metrics.CacheSize.Set(float64(c.ll.Len()))
	}
}

// removeElement - удаляет элемент из списка и индекса.
func (c *LRUCacheTTL) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	if ent, ok := elem.Value.(*entry); ok {
		delete(c.index, ent.id)
	}
	c.ll.Remove(elem)
}

func (c *LRUCacheTTL) isExpired(ent *entry, now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return now.After(ent.expiresAt)
}

func (c *LRUCacheTTL) expiryFrom(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}

// pruneExpiredFromBack - снимает просроченные записи с хвоста до первой живой.
func (c *LRUCacheTTL) pruneExpiredFromBack(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for {
		back := c.ll.Back()
		if back == nil {
			return
		}
		ent, ok := back.Value.(*entry)
		if !ok || now.After(ent.expiresAt) {
			c.removeElement(back)
			metrics.CacheOps.WithLabelValues("expired").Inc()
			metrics.CacheSize.Set(float64(c.ll.Len()))
			continue
		}
		return
	}
}

// cloneProduct - копия карточки; decimal.Decimal неизменяем, так что хватает копии структуры.
func cloneProduct(product *domain.Product) *domain.Product {
	if product == nil {
		return nil
	}
	cloned := *product
	return &cloned
}
