package coverage

import (
	"github.com/cartoset/gridref/internal/grid"
)

// Converted decorates a source coverage with the per-band transfer
// functions, presenting the converted view of its packed samples. It
// never mutates the source and owns no pixel storage: rendered tiles are
// converted lazily and cached by the Processor, so discarding a rendered
// raster discards its converted tiles.
type Converted struct {
	source Coverage
	conv   []bandConverter
	dims   []SampleDimension
	proc   *Processor
}

var _ Coverage = (*Converted)(nil)

func newConverted(source Coverage, proc *Processor) *Converted {
	srcDims := source.SampleDimensions()
	conv := make([]bandConverter, len(srcDims))
	dims := make([]SampleDimension, len(srcDims))
	for i, d := range srcDims {
		conv[i] = bandConverter{transfer: d.transfer(), noData: d.NoData}
		dims[i] = SampleDimension{
			Name:     d.Name,
			Packed:   d.Converted(),
			Transfer: IdentityTransfer{},
		}
	}
	return &Converted{source: source, conv: conv, dims: dims, proc: proc}
}

// Geometry returns the source geometry: conversion never alters the
// referencing.
func (c *Converted) Geometry() *grid.Geometry { return c.source.Geometry() }

// SampleDimensions describes the bands in their converted representation.
func (c *Converted) SampleDimensions() []SampleDimension { return c.dims }

// SampleType returns the storage type hint for the converted view: the
// union of all band ranges, widened to floating point when any band
// admits NaN sentinels.
func (c *Converted) SampleType() DataType {
	return UnionSampleType(c.source.SampleDimensions(), true)
}

// ForConvertedValues returns this instance for the converted view and the
// wrapped source for the packed view — never a third object, so repeated
// toggling is idempotent and cheap.
func (c *Converted) ForConvertedValues(converted bool) Coverage {
	if converted {
		return c
	}
	return c.source
}

// Render obtains the source rendering for the same extent and returns a
// view converting sample values per tile on first access, cached by the
// processor.
func (c *Converted) Render(extent *grid.Extent) (*Raster, error) {
	src, err := c.source.Render(extent)
	if err != nil {
		return nil, err
	}
	return c.proc.convertedView(src, c.conv)
}

// Evaluator wraps the source's evaluator, converting every returned band
// value immediately. No tile is materialized and no cache is touched:
// this is the path for a handful of point samples. Like all evaluators,
// the result is not safe for concurrent use.
func (c *Converted) Evaluator() Evaluator {
	return &convertedEvaluator{src: c.source.Evaluator(), conv: c.conv}
}

type convertedEvaluator struct {
	src  Evaluator
	conv []bandConverter
	out  []float64
}

func (ev *convertedEvaluator) Apply(pos []float64) ([]float64, error) {
	packed, err := ev.src.Apply(pos)
	if err != nil {
		return nil, err
	}
	if ev.out == nil {
		ev.out = make([]float64, len(packed))
	}
	for i, v := range packed {
		ev.out[i] = ev.conv[i].toConverted(v)
	}
	return ev.out, nil
}
