package coverage

import (
	"fmt"
	"image"
	"math"

	"github.com/cartoset/gridref/internal/grid"
)

// Tile is one tile's worth of sample data: band-major, row-major within
// each band. Edge tiles are cropped, so W and H carry the actual block
// shape.
type Tile struct {
	Bands [][]float64
	W, H  int
}

// TileSource produces tile blocks on demand. Implementations decide
// whether blocks are stored, computed, or fetched from a cache.
type TileSource interface {
	Tile(tx, ty int) (Tile, error)
}

// Raster is a two-dimensional banded pixel block addressed by a grid
// extent, split into tiles. It does not own pixel storage: every access
// goes through the TileSource, which keeps lazily converted rasters cheap
// until tiles are actually touched.
type Raster struct {
	extent     *grid.Extent
	width      int
	height     int
	tileWidth  int
	tileHeight int
	bands      int
	src        TileSource
}

// NewRaster assembles a raster view over a tile source. The extent must
// be two-dimensional.
func NewRaster(extent *grid.Extent, bands, tileWidth, tileHeight int, src TileSource) (*Raster, error) {
	if extent.Dimension() != 2 {
		return nil, fmt.Errorf("coverage: raster extent must be 2-D, got %d-D", extent.Dimension())
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("coverage: invalid tile size %d×%d", tileWidth, tileHeight)
	}
	w := extent.Size(0)
	h := extent.Size(1)
	if w > math.MaxInt32 || h > math.MaxInt32 {
		return nil, fmt.Errorf("coverage: raster of %d×%d cells exceeds addressable pixels", w, h)
	}
	return &Raster{
		extent:     extent,
		width:      int(w),
		height:     int(h),
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		bands:      bands,
		src:        src,
	}, nil
}

// Extent returns the grid extent this raster covers.
func (r *Raster) Extent() *grid.Extent { return r.extent }

// Width returns the pixel width.
func (r *Raster) Width() int { return r.width }

// Height returns the pixel height.
func (r *Raster) Height() int { return r.height }

// Bands returns the band count.
func (r *Raster) Bands() int { return r.bands }

// TileSize returns the tile dimensions.
func (r *Raster) TileSize() (w, h int) { return r.tileWidth, r.tileHeight }

// TilesAcross returns the number of tile columns.
func (r *Raster) TilesAcross() int { return (r.width + r.tileWidth - 1) / r.tileWidth }

// TilesDown returns the number of tile rows.
func (r *Raster) TilesDown() int { return (r.height + r.tileHeight - 1) / r.tileHeight }

// TileExtent returns the grid extent of one tile, cropped at the raster
// edge.
func (r *Raster) TileExtent(tx, ty int) (*grid.Extent, error) {
	if tx < 0 || tx >= r.TilesAcross() || ty < 0 || ty >= r.TilesDown() {
		return nil, fmt.Errorf("coverage: tile (%d, %d) outside %d×%d tile grid", tx, ty, r.TilesAcross(), r.TilesDown())
	}
	lowX := r.extent.Low(0) + int64(tx*r.tileWidth)
	lowY := r.extent.Low(1) + int64(ty*r.tileHeight)
	highX := min(lowX+int64(r.tileWidth)-1, r.extent.High(0))
	highY := min(lowY+int64(r.tileHeight)-1, r.extent.High(1))
	return grid.NewExtent([]int64{lowX, lowY}, []int64{highX, highY}, r.extent.Kinds())
}

// TileOf maps a grid coordinate to its tile indices and the pixel offset
// within that tile.
func (r *Raster) TileOf(gx, gy int64) (tx, ty, ox, oy int, err error) {
	px := gx - r.extent.Low(0)
	py := gy - r.extent.Low(1)
	if px < 0 || py < 0 || px >= int64(r.width) || py >= int64(r.height) {
		return 0, 0, 0, 0, &grid.OutOfGridError{Axis: 0, Value: float64(gx), Low: r.extent.Low(0), High: r.extent.High(0)}
	}
	return int(px) / r.tileWidth, int(py) / r.tileHeight,
		int(px) % r.tileWidth, int(py) % r.tileHeight, nil
}

// Tile returns one tile block from the source.
func (r *Raster) Tile(tx, ty int) (Tile, error) { return r.src.Tile(tx, ty) }

// At reads one sample at an absolute grid coordinate. Intended for
// inspection and tests; bulk access should read whole tiles.
func (r *Raster) At(band int, gx, gy int64) (float64, error) {
	if band < 0 || band >= r.bands {
		return 0, fmt.Errorf("coverage: band %d of %d", band, r.bands)
	}
	tx, ty, ox, oy, err := r.TileOf(gx, gy)
	if err != nil {
		return 0, err
	}
	t, err := r.src.Tile(tx, ty)
	if err != nil {
		return 0, err
	}
	return t.Bands[band][oy*t.W+ox], nil
}

// AsImage materializes band 0 as a grayscale image, scaling the finite
// value range to [0, 255]. NaN samples come out black. This is the
// inspection path used by the dump tool, not a rendering pipeline.
func (r *Raster) AsImage() (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, r.width, r.height))

	lo, hi := math.Inf(1), math.Inf(-1)
	for ty := 0; ty < r.TilesDown(); ty++ {
		for tx := 0; tx < r.TilesAcross(); tx++ {
			t, err := r.src.Tile(tx, ty)
			if err != nil {
				return nil, err
			}
			for _, v := range t.Bands[0] {
				if math.IsNaN(v) {
					continue
				}
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}

	for ty := 0; ty < r.TilesDown(); ty++ {
		for tx := 0; tx < r.TilesAcross(); tx++ {
			t, err := r.src.Tile(tx, ty)
			if err != nil {
				return nil, err
			}
			baseX := tx * r.tileWidth
			baseY := ty * r.tileHeight
			for y := 0; y < t.H; y++ {
				row := img.Pix[(baseY+y)*img.Stride+baseX:]
				for x := 0; x < t.W; x++ {
					v := t.Bands[0][y*t.W+x]
					if math.IsNaN(v) {
						row[x] = 0
						continue
					}
					row[x] = uint8(math.Round((v - lo) * scale))
				}
			}
		}
	}
	return img, nil
}
