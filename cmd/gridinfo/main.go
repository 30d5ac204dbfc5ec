// Command gridinfo builds a grid geometry from command-line referencing
// parameters and prints the derived extent, envelope and resolution. It
// exercises the same construction paths that format decoders populate
// from file metadata.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cartoset/gridref/internal/crs"
	"github.com/cartoset/gridref/internal/grid"
	"github.com/cartoset/gridref/internal/transform"
)

func main() {
	var (
		width   int64
		height  int64
		scale   string
		offset  string
		epsg    int
		anchor  string
		subStep int64
	)
	flag.Int64Var(&width, "width", 512, "Grid width in cells")
	flag.Int64Var(&height, "height", 256, "Grid height in cells")
	flag.StringVar(&scale, "scale", "1,1", "Grid-to-CRS scale per axis, comma separated")
	flag.StringVar(&offset, "offset", "0,0", "Grid-to-CRS translation per axis, comma separated")
	flag.IntVar(&epsg, "epsg", 0, "EPSG code of the target CRS (0 = none)")
	flag.StringVar(&anchor, "anchor", "corner", "Cell anchor of the transform: corner or center")
	flag.Int64Var(&subStep, "subsample", 0, "Also show the geometry derived by subsampling with this period")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	sx, sy, err := parsePair(scale)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -scale")
	}
	tx, ty, err := parsePair(offset)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -offset")
	}
	anc := grid.AnchorCorner
	switch anchor {
	case "corner":
	case "center":
		anc = grid.AnchorCenter
	default:
		log.Fatal().Str("anchor", anchor).Msg("anchor must be corner or center")
	}

	extent, err := grid.NewExtentSize(width, height)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid grid size")
	}
	var system crs.CRS
	if epsg != 0 {
		if system = crs.ForCode(epsg); system == nil {
			log.Fatal().Int("epsg", epsg).Msg("unknown EPSG code")
		}
	}

	geom, err := grid.NewGeometry(extent, anc, transform.ScaleOffset(sx, sy, tx, ty), system)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build geometry")
	}

	printGeometry("Geometry", geom)

	if subStep > 1 {
		sub, err := extent.Subsample(subStep, subStep)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot subsample extent")
		}
		derived, err := geom.Derive(sub, transform.Scale(float64(subStep), float64(subStep)))
		if err != nil {
			log.Fatal().Err(err).Msg("cannot derive geometry")
		}
		fmt.Println()
		printGeometry(fmt.Sprintf("Subsampled ×%d", subStep), derived)
	}
}

func printGeometry(title string, g *grid.Geometry) {
	fmt.Printf("%s\n", title)
	if ext, err := g.Extent(); err == nil {
		fmt.Printf("  Extent:     %v\n", ext)
	}
	if env, err := g.Envelope(); err == nil {
		fmt.Printf("  Envelope:   %v\n", env)
	}
	if system, err := g.CRS(); err == nil {
		fmt.Printf("  CRS:        %v\n", system)
	}
	if res, err := g.Resolution(true); err == nil {
		fmt.Printf("  Resolution: %v\n", res)
	}
	if b, err := g.GeographicBound(); err == nil {
		fmt.Printf("  Geographic: [%g, %g] – [%g, %g]\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	}
}

func parsePair(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want two comma-separated values, got %q", s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
