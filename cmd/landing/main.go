// Command landing runs a shuffle-fairness simulation and renders the
// measured landing distribution. It is a thin wrapper around the shuffle
// and simulate packages: the core never owns rendering state, this command
// consumes the LandingDistribution it returns.
//
// For every initial position it draws the probability curve over final
// positions (blue) with a dashed red marker at the initial position, writes
// one PNG per initial position, and can assemble the frames into an
// animated GIF or dump the raw distribution as CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	stddraw "image/draw"
	"image/gif"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Noofbiz/shuffleLab/shuffle"
	"github.com/Noofbiz/shuffleLab/simulate"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

func main() {
	// CLI flags
	nItems := flag.Int("n", 7, "number of ranked items in the sequence")
	sims := flag.Int("sims", 5000, "number of simulation trials")
	inequality := flag.Float64("inequality", 2.0, "bias exponent: 0 = uniform shuffle, larger values keep high ranks closer to the front")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	workers := flag.Int("workers", 1, "parallel simulation workers (1 = serial, 0 = NumCPU)")
	outDir := flag.String("out", "plots", "output directory for per-position PNG frames")
	gifPath := flag.String("gif", "", "if set, assemble the frames into an animated GIF at this path")
	interval := flag.Int("interval", 700, "GIF frame interval in milliseconds")
	outCSV := flag.String("out-csv", "", "if set, write the landing distribution as CSV to this path")
	flag.Parse()

	start := time.Now()
	dist, err := runSimulation(*nItems, *sims, *inequality, *seed, *workers)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
	log.Printf("Ran %d trials over %d items (inequality=%v) in %v", *sims, *nItems, *inequality, time.Since(start))

	if *outCSV != "" {
		if err := writeCSV(*outCSV, dist); err != nil {
			log.Fatalf("failed to write CSV: %v", err)
		}
		log.Printf("Distribution CSV written to %s", *outCSV)
	}

	if *nItems == 0 {
		log.Printf("Nothing to plot for an empty sequence")
		return
	}

	if err := ensureDir(*outDir); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	for i := 0; i < *nItems; i++ {
		p, err := frame(dist, *nItems, i)
		if err != nil {
			log.Fatalf("failed to build frame %d: %v", i, err)
		}
		outPath := filepath.Join(*outDir, fmt.Sprintf("landing_%02d.png", i))
		if err := p.Save(8*vg.Inch, 6*vg.Inch, outPath); err != nil {
			log.Fatalf("failed to save frame %d: %v", i, err)
		}
	}
	log.Printf("Frames written to %s", *outDir)

	if *gifPath != "" {
		log.Printf("Saving animation to %s", *gifPath)
		if err := writeGIF(*gifPath, dist, *nItems, *interval); err != nil {
			log.Fatalf("failed to write GIF: %v", err)
		}
	}
}

// runSimulation wires the elitist shuffler into the aggregator, serially or
// across a worker pool depending on the workers flag.
func runSimulation(nItems, sims int, inequality float64, seed int64, workers int) (simulate.LandingDistribution, error) {
	if workers == 1 {
		s, err := shuffle.NewShuffler(inequality, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		return simulate.Simulate(s.Ints, nItems, sims)
	}
	newShuffle := func(rng *rand.Rand) simulate.ShuffleFunc {
		return func(items []int) ([]int, error) {
			return shuffle.Elitist(rng, items, inequality)
		}
	}
	return simulate.SimulateParallel(newShuffle, nItems, sims, workers, seed)
}

// frame builds the plot for a single initial position: the probability
// curve over final positions plus a dashed marker at the initial position.
func frame(dist simulate.LandingDistribution, nItems, index int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Landing distribution for initial position %d", index)
	p.X.Label.Text = "Position"
	p.Y.Label.Text = "Probability"
	p.X.Min = -0.1
	p.X.Max = float64(nItems-1) + 0.1
	p.Y.Min = 0
	p.Y.Max = 1.01

	curve := make(plotter.XYs, 0, nItems)
	for _, pos := range dist.Landings(index) {
		curve = append(curve, plotter.XY{X: float64(pos), Y: dist.Prob(index, pos)})
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	line.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("Probability of position after shuffle", line)

	marker, err := plotter.NewLine(plotter.XYs{
		{X: float64(index), Y: 0},
		{X: float64(index), Y: 1},
	})
	if err != nil {
		return nil, err
	}
	marker.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	marker.Width = vg.Points(2)
	marker.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(marker)
	p.Legend.Add("Position before shuffle", marker)

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p, nil
}

// writeGIF renders one frame per initial position and assembles them into
// an animated GIF. interval is the per-frame delay in milliseconds.
func writeGIF(path string, dist simulate.LandingDistribution, nItems, interval int) error {
	anim := &gif.GIF{}
	delay := interval / 10 // GIF delays are in hundredths of a second
	if delay < 1 {
		delay = 1
	}

	for i := 0; i < nItems; i++ {
		p, err := frame(dist, nItems, i)
		if err != nil {
			return err
		}
		c := vgimg.New(8*vg.Inch, 6*vg.Inch)
		p.Draw(draw.New(c))
		img := c.Image()

		bounds := img.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		stddraw.Draw(paletted, bounds, img, bounds.Min, stddraw.Src)

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, anim)
}

// writeCSV dumps the distribution as (initial_position, final_position,
// probability) rows in sorted key order.
func writeCSV(path string, dist simulate.LandingDistribution) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"initial_position", "final_position", "probability"}); err != nil {
		return err
	}
	for _, item := range dist.Items() {
		for _, pos := range dist.Landings(item) {
			row := []string{
				strconv.Itoa(item),
				strconv.Itoa(pos),
				strconv.FormatFloat(dist.Prob(item, pos), 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func ensureDir(path string) error {
	// Attempt to create directory if it doesn't exist (silently succeed if present).
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
