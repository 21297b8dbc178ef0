package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

// DeletePrefix evicts every entry whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for key := range c.Cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.Cache.Delete(key)
		}
	}
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

const CacheKeyBlogPrefix = "blog:"

func CacheKeyBlog(id string) string {
	return CacheKeyBlogPrefix + "id:" + id
}

func CacheKeyBlogBySlug(slug string) string {
	return CacheKeyBlogPrefix + "slug:" + slug
}

func CacheKeyLatestBlogs(limit int) string {
	return CacheKeyBlogPrefix + "latest:" + strconv.Itoa(limit)
}
