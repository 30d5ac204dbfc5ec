// Command coveragedump reads a raw little-endian float32 grid, wraps it
// as a packed coverage, applies a linear transfer function, and renders
// the converted view to a WebP image for inspection.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gen2brain/webp"
	"github.com/rs/zerolog"

	"github.com/cartoset/gridref/internal/coverage"
	"github.com/cartoset/gridref/internal/envelope"
	"github.com/cartoset/gridref/internal/grid"
)

func main() {
	var (
		inPath   string
		outPath  string
		width    int64
		height   int64
		scale    float64
		offset   float64
		noData   string
		tileSize int
		quality  int
		bounds   string
	)
	flag.StringVar(&inPath, "in", "", "Input raw grid: little-endian float32, row-major")
	flag.StringVar(&outPath, "out", "coverage.webp", "Output WebP file")
	flag.Int64Var(&width, "width", 0, "Grid width in cells")
	flag.Int64Var(&height, "height", 0, "Grid height in cells")
	flag.Float64Var(&scale, "scale", 1, "Transfer function scale (converted = packed*scale + offset)")
	flag.Float64Var(&offset, "offset", 0, "Transfer function offset")
	flag.StringVar(&noData, "nodata", "", "Packed no-data sentinel values, comma separated")
	flag.IntVar(&tileSize, "tile-size", 256, "Conversion tile size in cells")
	flag.IntVar(&quality, "quality", 85, "WebP quality 1-100")
	flag.StringVar(&bounds, "bounds", "", "Real-world bounds minX,minY,maxX,maxY (optional)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if inPath == "" || width <= 0 || height <= 0 {
		log.Fatal().Msg("usage: coveragedump -in grid.raw -width W -height H [-scale S -offset O] -out out.webp")
	}

	samples, err := readRawGrid(inPath, width, height)
	if err != nil {
		log.Fatal().Err(err).Str("in", inPath).Msg("cannot read input grid")
	}

	extent, err := grid.NewExtentSize(width, height)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid grid size")
	}
	geom, err := buildGeometry(extent, bounds)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build geometry")
	}

	dim := coverage.SampleDimension{
		Name:     "value",
		Packed:   coverage.Range{Min: -math.MaxFloat32, Max: math.MaxFloat32},
		NoData:   parseNoData(noData),
		Transfer: coverage.LinearTransfer{Scale: scale, Offset: offset},
	}
	cov, err := coverage.NewMemoryCoverage(geom, []coverage.SampleDimension{dim},
		[][]float64{samples}, tileSize, tileSize, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build coverage")
	}

	converted := cov.ForConvertedValues(true)
	raster, err := converted.Render(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot render converted view")
	}
	log.Info().
		Int("width", raster.Width()).
		Int("height", raster.Height()).
		Int("tiles", raster.TilesAcross()*raster.TilesDown()).
		Msg("rendering converted coverage")

	img, err := raster.AsImage()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot materialize image")
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Str("out", outPath).Msg("cannot create output")
	}
	defer out.Close()
	if err := webp.Encode(out, img, webp.Options{Quality: quality}); err != nil {
		log.Fatal().Err(err).Msg("webp encode failed")
	}
	log.Info().Str("out", outPath).Msg("wrote converted coverage")
}

func readRawGrid(path string, width, height int64) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	n := int(width * height)
	if len(raw) < n*4 {
		return nil, fmt.Errorf("file holds %d bytes, want %d for %d×%d float32", len(raw), n*4, width, height)
	}
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples, nil
}

// parseNoData parses the comma-separated -nodata flag into packed
// sentinel values; an empty string yields no sentinels.
func parseNoData(noData string) []float64 {
	if noData == "" {
		return nil
	}
	parts := strings.Split(noData, ",")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			log.Fatal().Err(err).Str("nodata", noData).Msg("invalid -nodata value")
		}
		vals[i] = v
	}
	return vals
}

// buildGeometry synthesizes a referencing when bounds are given, and
// falls back to an identity grid-to-CRS transform otherwise.
func buildGeometry(extent *grid.Extent, bounds string) (*grid.Geometry, error) {
	if bounds == "" {
		return grid.NewGeometry(extent, grid.AnchorCorner, nil, nil)
	}
	parts := strings.Split(bounds, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bounds want minX,minY,maxX,maxY, got %q", bounds)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	env, err := envelope.New([]float64{vals[0], vals[1]}, []float64{vals[2], vals[3]}, nil)
	if err != nil {
		return nil, err
	}
	return grid.GeometrySynthesized(extent, env, grid.Orientation{FlipY: true})
}
