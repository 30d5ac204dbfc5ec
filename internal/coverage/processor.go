package coverage

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// tileKey identifies one converted tile in the processor cache. The
// raster field is unique per rendered view, so dropping a raster orphans
// its cached tiles and the LRU ages them out.
type tileKey struct {
	raster uint64
	tx, ty int
}

// Processor is the tile-computation collaborator owning the converted
// tile cache. The conversion layer holds a handle to it but owns no cache
// of its own. Processors are safe for concurrent use.
type Processor struct {
	cache *lru.Cache[tileKey, Tile]
	log   zerolog.Logger
	ids   atomic.Uint64

	hits   atomic.Int64
	misses atomic.Int64
}

// NewProcessor builds a processor caching up to the given number of
// converted tiles.
func NewProcessor(tiles int, log zerolog.Logger) (*Processor, error) {
	cache, err := lru.NewWithEvict(tiles, func(_ tileKey, t Tile) {
		for _, b := range t.Bands {
			putBuffer(b)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Processor{cache: cache, log: log}, nil
}

var defaultProcessor = sync.OnceValue(func() *Processor {
	p, err := NewProcessor(256, zerolog.Nop())
	if err != nil {
		panic(err)
	}
	return p
})

// DefaultProcessor returns the shared processor used when a coverage is
// built without an explicit one.
func DefaultProcessor() *Processor { return defaultProcessor() }

// CacheStats reports cumulative converted-tile cache hits and misses.
func (p *Processor) CacheStats() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}

// convertedView wraps a source raster in a view that converts tiles on
// first access and caches the result.
func (p *Processor) convertedView(src *Raster, conv []bandConverter) (*Raster, error) {
	tw, th := src.TileSize()
	view := &convertTileSource{
		proc: p,
		id:   p.ids.Add(1),
		src:  src,
		conv: conv,
	}
	return NewRaster(src.Extent(), src.Bands(), tw, th, view)
}

type convertTileSource struct {
	proc *Processor
	id   uint64
	src  *Raster
	conv []bandConverter
}

func (s *convertTileSource) Tile(tx, ty int) (Tile, error) {
	key := tileKey{raster: s.id, tx: tx, ty: ty}
	if t, ok := s.proc.cache.Get(key); ok {
		s.proc.hits.Add(1)
		s.proc.log.Debug().Uint64("raster", s.id).Int("tx", tx).Int("ty", ty).Msg("converted tile cache hit")
		return t, nil
	}
	s.proc.misses.Add(1)

	raw, err := s.src.Tile(tx, ty)
	if err != nil {
		return Tile{}, err
	}
	out := Tile{W: raw.W, H: raw.H, Bands: make([][]float64, len(raw.Bands))}
	for b, samples := range raw.Bands {
		block := getBuffer(len(samples))
		c := s.conv[b]
		for i, v := range samples {
			block[i] = c.toConverted(v)
		}
		out.Bands[b] = block
	}
	s.proc.cache.Add(key, out)
	s.proc.log.Debug().Uint64("raster", s.id).Int("tx", tx).Int("ty", ty).Msg("converted tile computed")
	return out, nil
}

// bufferPools maps buffer length → *sync.Pool of []float64. Only a few
// distinct tile sizes exist per run, so the map stays tiny.
var bufferPools sync.Map

func getBuffer(n int) []float64 {
	if p, ok := bufferPools.Load(n); ok {
		if v := p.(*sync.Pool).Get(); v != nil {
			return v.([]float64)
		}
	}
	return make([]float64, n)
}

func putBuffer(b []float64) {
	if b == nil {
		return
	}
	p, _ := bufferPools.LoadOrStore(len(b), &sync.Pool{})
	p.(*sync.Pool).Put(b)
}
