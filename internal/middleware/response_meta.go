package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

type responseMeta struct {
	started time.Time
	values  map[string]interface{}
}

// WithResponseMeta starts the request clock and gives handlers a place to
// attach envelope metadata such as cache_hit.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{started: time.Now(), values: map[string]interface{}{}})
		c.Next()
	}
}

// SetMeta records one envelope metadata value.
func SetMeta(c *gin.Context, key string, value interface{}) {
	metaFrom(c).values[key] = value
}

// SetCacheHit records whether the payload came from the dashboard cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, "cache_hit", hit)
}

// ResponseMeta returns a copy of the recorded metadata with processing_time_ms
// measured from WithResponseMeta, or from the first SetMeta call without it.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	meta := metaFrom(c)
	out := make(map[string]interface{}, len(meta.values)+1)
	for key, value := range meta.values {
		out[key] = value
	}
	out["processing_time_ms"] = time.Since(meta.started).Milliseconds()
	return out
}

func metaFrom(c *gin.Context) *responseMeta {
	if existing, ok := c.Get(responseMetaKey); ok {
		if meta, ok := existing.(*responseMeta); ok {
			return meta
		}
	}
	meta := &responseMeta{started: time.Now(), values: map[string]interface{}{}}
	c.Set(responseMetaKey, meta)
	return meta
}
