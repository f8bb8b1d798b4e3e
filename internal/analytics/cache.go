package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"niftycli/internal/infrastructure"
	"niftycli/pkg/contracts/domain"
)

// Memo caches Compute results keyed by a content hash of the inputs, so a
// refresh over unchanged data reuses the previous result and any change in
// series or sector table produces a new key.
type Memo struct {
	engine  *Engine
	cache   *cache.Cache
	metrics *infrastructure.Metrics
}

// NewMemo wraps engine with a cache whose entries expire after ttl.
// A zero ttl keeps entries until Invalidate.
func NewMemo(engine *Engine, ttl time.Duration, metrics *infrastructure.Metrics) *Memo {
	expiration := ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
	}
	cleanup := 10 * time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}
	return &Memo{
		engine:  engine,
		cache:   cache.New(expiration, cleanup),
		metrics: metrics,
	}
}

// Compute returns the cached result for these inputs or computes and stores it.
// hit reports whether the cache answered.
func (m *Memo) Compute(ctx context.Context, series []domain.SymbolSeries, sectors domain.SectorTable) (res *Result, hit bool) {
	key := InputKey(series, sectors)

	if cached, ok := m.cache.Get(key); ok {
		m.recordLookup(ctx, "hit")
		return cached.(*Result), true
	}

	m.recordLookup(ctx, "miss")
	res = m.engine.Compute(ctx, series, sectors)
	m.cache.SetDefault(key, res)
	return res, false
}

// Invalidate drops every cached result
func (m *Memo) Invalidate() {
	m.cache.Flush()
}

// Len returns the number of cached results
func (m *Memo) Len() int {
	return m.cache.ItemCount()
}

func (m *Memo) recordLookup(ctx context.Context, result string) {
	if m.metrics == nil {
		return
	}
	m.metrics.MemoLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// InputKey is the hex SHA-256 of a canonical encoding of series and sectors
func InputKey(series []domain.SymbolSeries, sectors domain.SectorTable) string {
	h := sha256.New()
	writeUint(h, uint64(len(series)))
	for _, s := range series {
		writeString(h, s.Symbol)
		writeUint(h, uint64(len(s.Records)))
		for _, r := range s.Records {
			writeString(h, r.Symbol)
			writeUint(h, uint64(r.Timestamp.UnixNano()))
			writeUint(h, math.Float64bits(r.Open))
			writeUint(h, math.Float64bits(r.High))
			writeUint(h, math.Float64bits(r.Low))
			writeUint(h, math.Float64bits(r.Close))
			writeUint(h, uint64(r.Volume))
		}
	}

	symbols := sectors.Symbols()
	writeUint(h, uint64(len(symbols)))
	for _, symbol := range symbols {
		writeString(h, symbol)
		writeString(h, sectors.Lookup(symbol))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeUint(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

// writeString length-prefixes s so that adjacent fields cannot run together
func writeString(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}
