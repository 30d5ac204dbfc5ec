package coverage

import (
	"fmt"
	"math"
	"sync"

	"github.com/cartoset/gridref/internal/grid"
	"github.com/cartoset/gridref/internal/transform"
)

// MemoryCoverage is an in-memory packed-sample source coverage: the
// "opaque source collaborator" the conversion layer decorates. Samples
// are stored band-major over the full extent, row-major within a band.
type MemoryCoverage struct {
	geom *grid.Geometry
	dims []SampleDimension
	data [][]float64
	w, h int

	tileW, tileH int
	proc         *Processor

	convertedOnce sync.Once
	converted     Coverage
}

var _ Coverage = (*MemoryCoverage)(nil)

// NewMemoryCoverage builds a source coverage. The geometry must carry a
// two-dimensional extent; data holds one slice per sample dimension, each
// of length width×height. proc may be nil to use the shared default
// processor.
func NewMemoryCoverage(geom *grid.Geometry, dims []SampleDimension, data [][]float64, tileW, tileH int, proc *Processor) (*MemoryCoverage, error) {
	ext, err := geom.Extent()
	if err != nil {
		return nil, err
	}
	if ext.Dimension() != 2 {
		return nil, fmt.Errorf("coverage: memory coverage needs a 2-D extent, got %d-D", ext.Dimension())
	}
	if len(data) != len(dims) {
		return nil, fmt.Errorf("coverage: %d band buffers for %d sample dimensions", len(data), len(dims))
	}
	w := int(ext.Size(0))
	h := int(ext.Size(1))
	for b, buf := range data {
		if len(buf) != w*h {
			return nil, fmt.Errorf("coverage: band %d has %d samples, want %d", b, len(buf), w*h)
		}
	}
	if tileW <= 0 {
		tileW = 256
	}
	if tileH <= 0 {
		tileH = 256
	}
	if proc == nil {
		proc = DefaultProcessor()
	}
	return &MemoryCoverage{
		geom: geom, dims: dims, data: data,
		w: w, h: h, tileW: tileW, tileH: tileH, proc: proc,
	}, nil
}

// Geometry returns the referencing geometry.
func (m *MemoryCoverage) Geometry() *grid.Geometry { return m.geom }

// SampleDimensions returns the band descriptors.
func (m *MemoryCoverage) SampleDimensions() []SampleDimension { return m.dims }

// Render returns a raster view over the requested extent, clipped to the
// coverage extent. A nil extent renders everything.
func (m *MemoryCoverage) Render(extent *grid.Extent) (*Raster, error) {
	full, err := m.geom.Extent()
	if err != nil {
		return nil, err
	}
	target := full
	if extent != nil {
		if target, err = full.Intersect(extent); err != nil {
			return nil, err
		}
	}
	src := &memoryTileSource{cov: m, extent: target}
	return NewRaster(target, len(m.dims), m.tileW, m.tileH, src)
}

// memoryTileSource crops tile blocks out of the backing arrays.
type memoryTileSource struct {
	cov    *MemoryCoverage
	extent *grid.Extent
}

func (s *memoryTileSource) Tile(tx, ty int) (Tile, error) {
	m := s.cov
	full, err := m.geom.Extent()
	if err != nil {
		return Tile{}, err
	}
	lowX := s.extent.Low(0) + int64(tx*m.tileW)
	lowY := s.extent.Low(1) + int64(ty*m.tileH)
	w := int(min64(int64(m.tileW), s.extent.High(0)-lowX+1))
	h := int(min64(int64(m.tileH), s.extent.High(1)-lowY+1))
	if w <= 0 || h <= 0 {
		return Tile{}, fmt.Errorf("coverage: tile (%d, %d) outside raster", tx, ty)
	}
	offX := int(lowX - full.Low(0))
	offY := int(lowY - full.Low(1))

	bands := make([][]float64, len(m.data))
	for b, buf := range m.data {
		block := make([]float64, w*h)
		for y := 0; y < h; y++ {
			srcRow := buf[(offY+y)*m.w+offX:]
			copy(block[y*w:(y+1)*w], srcRow[:w])
		}
		bands[b] = block
	}
	return Tile{Bands: bands, W: w, H: h}, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Evaluator returns a direct evaluator over the packed samples.
func (m *MemoryCoverage) Evaluator() Evaluator {
	return newGridEvaluator(m)
}

// ForConvertedValues returns this coverage for the packed view, and the
// memoized converted decorator otherwise. The decorator is created once,
// so repeated toggling keeps returning the same instance.
func (m *MemoryCoverage) ForConvertedValues(converted bool) Coverage {
	if !converted {
		return m
	}
	m.convertedOnce.Do(func() {
		allIdentity := true
		for _, d := range m.dims {
			if !d.transfer().IsIdentity() || d.AdmitsNaN() {
				allIdentity = false
				break
			}
		}
		if allIdentity {
			m.converted = m
			return
		}
		m.converted = newConverted(m, m.proc)
	})
	return m.converted
}

// gridEvaluator samples the backing arrays at rounded grid coordinates.
// Positions are given in the coverage CRS when the geometry has a
// transform, in grid coordinates otherwise. Not safe for concurrent use:
// the scratch buffer is reused between calls.
type gridEvaluator struct {
	cov     *MemoryCoverage
	toGrid  transform.Transform // nil: positions are grid coordinates
	scratch []float64
	out     []float64
}

func newGridEvaluator(m *MemoryCoverage) *gridEvaluator {
	ev := &gridEvaluator{cov: m}
	if tr, err := m.geom.GridToCRS(grid.AnchorCenter); err == nil {
		if inv, err := tr.Inverse(); err == nil {
			ev.toGrid = inv
		}
	}
	return ev
}

func (ev *gridEvaluator) Apply(pos []float64) ([]float64, error) {
	m := ev.cov
	ext, err := m.geom.Extent()
	if err != nil {
		return nil, err
	}
	gridPos := pos
	if ev.toGrid != nil {
		if cap(ev.scratch) < ev.toGrid.TargetDim() {
			ev.scratch = make([]float64, ev.toGrid.TargetDim())
		}
		ev.scratch = ev.scratch[:ev.toGrid.TargetDim()]
		if err := ev.toGrid.Apply(ev.scratch, pos); err != nil {
			return nil, err
		}
		gridPos = ev.scratch
	}
	if len(gridPos) != 2 {
		return nil, fmt.Errorf("coverage: evaluator position has %d ordinates, want 2", len(gridPos))
	}
	gx := math.Round(gridPos[0])
	gy := math.Round(gridPos[1])
	for axis, v := range []float64{gx, gy} {
		if v < float64(ext.Low(axis)) || v > float64(ext.High(axis)) {
			return nil, &grid.OutOfGridError{Axis: axis, Value: gridPos[axis], Low: ext.Low(axis), High: ext.High(axis)}
		}
	}
	ix := int(int64(gx) - ext.Low(0))
	iy := int(int64(gy) - ext.Low(1))
	if ev.out == nil {
		ev.out = make([]float64, len(m.data))
	}
	for b, buf := range m.data {
		ev.out[b] = buf[iy*m.w+ix]
	}
	return ev.out, nil
}
