package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/postboard/internal/config"
)

// bodyRecorder tees the response into a bounded buffer so that a successful
// read can be stored after the handler returns.
type bodyRecorder struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if r.limit <= 0 {
        r.buf.Write(b)
    } else if remain := r.limit - r.size; remain > 0 {
        if int64(len(b)) > remain {
            r.buf.Write(b[:remain])
        } else {
            r.buf.Write(b)
        }
    }
    r.size += int64(len(b))
    return r.ResponseWriter.Write(b)
}

// truncated reports whether the handler wrote more than the recorder kept.
func (r *bodyRecorder) truncated() bool {
    return r.limit > 0 && r.size > r.limit
}

// cacheKey hashes the parts selected by the key strategy under the prefix
// and the current generation.  The concrete request path is used rather than
// the route pattern so that /api/posts/a and /api/posts/b never share an
// entry.
func cacheKey(cfg config.CacheConfig, c echo.Context, gen int64) string {
    r := c.Request()
    path := r.URL.Path
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "path":
        parts = []string{"path", path}
    case "method_path":
        parts = []string{"method", r.Method, "path", path}
    case "method_path_query":
        parts = []string{"method", r.Method, "path", path, "q", r.URL.RawQuery}
    default: // route_query
        parts = []string{"path", path, "q", r.URL.RawQuery}
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:g%d:%x", cfg.Prefix, gen, sum[:])
}

// generationKey holds the counter bumped by every purge.  Entries written
// under an older generation are never read again, so a slow read that
// stores its response after a purge cannot serve stale data.
func generationKey(prefix string) string { return prefix + ":gen" }

func currentGeneration(ctx context.Context, rdb *redis.Client, prefix string) (int64, error) {
    gen, err := rdb.Get(ctx, generationKey(prefix)).Int64()
    if errors.Is(err, redis.Nil) {
        return 0, nil
    }
    return gen, err
}

// encodeEntry packs [status u32][header length u32][header JSON][body].
func encodeEntry(status int, header http.Header, body []byte) ([]byte, error) {
    hdr, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdr)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
    copy(out[8:], hdr)
    copy(out[8+len(hdr):], body)
    return out, nil
}

func decodeEntry(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    n := int(binary.BigEndian.Uint32(bs[4:8]))
    if n < 0 || 8+n > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if n > 0 {
        if err := json.Unmarshal(bs[8:8+n], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+n:], true
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache serves repeated reads from Redis.  Only complete 200
// responses are stored, headers included, and a hit is marked with
// X-Cache: HIT.  Requests carrying credentials are never cached.  Mount it
// on public route groups only.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passthrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    limit := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if !cfg.Methods[strings.ToUpper(req.Method)] || req.Header.Get(echo.HeaderAuthorization) != "" {
                return next(c)
            }
            gen, err := currentGeneration(req.Context(), rdb, cfg.Prefix)
            if err != nil {
                return next(c)
            }
            key := cacheKey(cfg, c, gen)
            res := c.Response()

            if bs, err := rdb.Get(req.Context(), key).Bytes(); err == nil {
                if status, hdr, body, ok := decodeEntry(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            res.Header().Add(k, v)
                        }
                    }
                    res.Header().Set("X-Cache", "HIT")
                    res.WriteHeader(status)
                    _, werr := res.Write(body)
                    return werr
                }
            }

            rec := &bodyRecorder{ResponseWriter: res.Writer, status: http.StatusOK, limit: limit}
            res.Writer = rec
            res.Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.truncated() {
                return nil
            }
            hdr := res.Header().Clone()
            hdr.Del("X-Cache")
            hdr.Del(echo.HeaderXRequestID)
            entry, err := encodeEntry(rec.status, hdr, rec.buf.Bytes())
            if err != nil {
                return nil
            }
            if err := rdb.Set(context.Background(), key, entry, ttl).Err(); err != nil {
                slog.Warn("cache store failed", "key", key, "error", err)
            }
            return nil
        }
    }
}

// NewCachePurger invalidates every cached response after a successful
// write, so a created or deleted post is visible on the next read.
func NewCachePurger(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || !cfg.PurgeOnWrite || rdb == nil {
        return passthrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := next(c); err != nil {
                return err
            }
            method := strings.ToUpper(c.Request().Method)
            if cfg.Methods[method] || method == http.MethodOptions || method == http.MethodHead {
                return nil
            }
            if status := c.Response().Status; status < 200 || status >= 300 {
                return nil
            }
            ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
            defer cancel()
            if err := purgePrefix(ctx, rdb, cfg.Prefix); err != nil {
                slog.Warn("cache purge failed", "prefix", cfg.Prefix, "error", err)
            }
            return nil
        }
    }
}

// purgePrefix bumps the generation and then deletes the entries of older
// generations.
func purgePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
    if err := rdb.Incr(ctx, generationKey(prefix)).Err(); err != nil {
        return err
    }
    iter := rdb.Scan(ctx, 0, prefix+":g*", 200).Iterator()
    batch := make([]string, 0, 200)
    for iter.Next(ctx) {
        if iter.Val() == generationKey(prefix) {
            continue
        }
        batch = append(batch, iter.Val())
        if len(batch) == cap(batch) {
            if err := rdb.Del(ctx, batch...).Err(); err != nil {
                return err
            }
            batch = batch[:0]
        }
    }
    if err := iter.Err(); err != nil {
        return err
    }
    if len(batch) > 0 {
        return rdb.Del(ctx, batch...).Err()
    }
    return nil
}
