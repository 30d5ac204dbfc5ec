package coverage

import (
	"image"
	"math"
	"testing"

	"github.com/cartoset/gridref/internal/grid"
)

// sliceTiles serves tiles out of a full-resolution backing slice.
type sliceTiles struct {
	data []float64
	w, h int
	tile int
}

func (s *sliceTiles) Tile(tx, ty int) (Tile, error) {
	lowX, lowY := tx*s.tile, ty*s.tile
	w := min(s.tile, s.w-lowX)
	h := min(s.tile, s.h-lowY)
	block := make([]float64, w*h)
	for y := 0; y < h; y++ {
		copy(block[y*w:(y+1)*w], s.data[(lowY+y)*s.w+lowX:][:w])
	}
	return Tile{Bands: [][]float64{block}, W: w, H: h}, nil
}

func TestTileGridShape(t *testing.T) {
	extent := grid.MustExtent([]int64{0, 0}, []int64{4, 2}, nil)
	r, err := NewRaster(extent, 1, 2, 2, &sliceTiles{w: 5, h: 3, tile: 2})
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	if r.TilesAcross() != 3 || r.TilesDown() != 2 {
		t.Fatalf("tile grid = %d×%d, want 3×2", r.TilesAcross(), r.TilesDown())
	}
	// The last tile column and row are cropped to one cell.
	te, err := r.TileExtent(2, 1)
	if err != nil {
		t.Fatalf("TileExtent: %v", err)
	}
	want := grid.MustExtent([]int64{4, 2}, []int64{4, 2}, nil)
	if !te.Equal(want) {
		t.Errorf("TileExtent(2,1) = %v, want %v", te, want)
	}
}

func TestTileOf(t *testing.T) {
	extent := grid.MustExtent([]int64{10, 20}, []int64{14, 22}, nil)
	r, err := NewRaster(extent, 1, 2, 2, &sliceTiles{w: 5, h: 3, tile: 2})
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	tx, ty, ox, oy, err := r.TileOf(13, 21)
	if err != nil {
		t.Fatalf("TileOf: %v", err)
	}
	if tx != 1 || ty != 0 || ox != 1 || oy != 1 {
		t.Errorf("TileOf(13,21) = (%d, %d, %d, %d), want (1, 0, 1, 1)", tx, ty, ox, oy)
	}
	if _, _, _, _, err := r.TileOf(15, 20); err == nil {
		t.Error("coordinates outside the extent should fail")
	}
}

func TestAsImageNormalizes(t *testing.T) {
	extent := grid.MustExtent([]int64{0, 0}, []int64{2, 0}, nil)
	src := &sliceTiles{data: []float64{0, math.NaN(), 4}, w: 3, h: 1, tile: 2}
	r, err := NewRaster(extent, 1, 2, 2, src)
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	img, err := r.AsImage()
	if err != nil {
		t.Fatalf("AsImage: %v", err)
	}
	gray := img.(*image.Gray)
	if got := gray.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("minimum value pixel = %d, want 0", got)
	}
	if got := gray.GrayAt(1, 0).Y; got != 0 {
		t.Errorf("NaN pixel = %d, want 0", got)
	}
	if got := gray.GrayAt(2, 0).Y; got != 255 {
		t.Errorf("maximum value pixel = %d, want 255", got)
	}
}
