package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/petro-db/petroidx/buffer"
	"github.com/petro-db/petroidx/index"
	"github.com/petro-db/petroidx/storage/disk"
)

// operatorCombo names one cell of the (lowOp, highOp) product of bound
// comparison operators a range scan can be started with.
type operatorCombo struct {
	name          string
	lowOp, highOp index.Operator
}

var benchCombos = []operatorCombo{
	{"gt-lt", index.GT, index.LT},
	{"gt-lte", index.GT, index.LTE},
	{"gte-lt", index.GTE, index.LT},
	{"gte-lte", index.GTE, index.LTE},
}

// benchResult mirrors NikolasRummel-db-index-performance-evaluation's
// BenchResult row shape: one CSV line per (N, combo) measurement.
type benchResult struct {
	N         int
	Combo     string
	LatencyNs int64
	MemMB     uint64
}

func cmdBench(args []string) error {
	fs := pflag.NewFlagSet("bench", pflag.ExitOnError)
	sizes := fs.IntSlice("sizes", []int{1000, 10000, 100000}, "comma-separated list of index sizes to sweep")
	dir := fs.String("dir", "", "scratch directory for the benchmark index files (defaults to a temp dir)")
	csvPath := fs.String("csv", "bench.csv", "path to write the raw CSV results to")
	plotPath := fs.String("plot", "bench.png", "path to write the latency-vs-N plot to, empty to skip plotting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scratch := *dir
	if scratch == "" {
		var err error
		scratch, err = os.MkdirTemp("", "petroidx-bench-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(scratch)
	}

	f, err := os.Create(*csvPath)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"N", "Combo", "LatencyNs", "MemMB"}); err != nil {
		return err
	}

	results := make(map[string][]benchResult) // keyed by combo name

	for _, n := range *sizes {
		idx, _, err := buildBenchIndex(scratch, n)
		if err != nil {
			return err
		}

		for _, combo := range benchCombos {
			lo := int32(n / 4)
			hi := int32(n - n/4)

			start := time.Now()
			if err := idx.StartScan(lo, combo.lowOp, hi, combo.highOp); err == nil {
				for {
					if _, err := idx.ScanNext(); err != nil {
						break
					}
				}
			}
			elapsed := time.Since(start)

			mem := readMemMB()
			row := benchResult{N: n, Combo: combo.name, LatencyNs: elapsed.Nanoseconds(), MemMB: mem}
			results[combo.name] = append(results[combo.name], row)

			if err := w.Write([]string{
				strconv.Itoa(row.N),
				row.Combo,
				strconv.FormatInt(row.LatencyNs, 10),
				strconv.FormatUint(row.MemMB, 10),
			}); err != nil {
				return err
			}
			fmt.Printf("N=%d combo=%s latency=%s\n", n, combo.name, elapsed)
		}

		if err := idx.Close(); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if *plotPath == "" {
		return nil
	}
	return renderLatencyPlot(results, *plotPath)
}

// buildBenchIndex creates a fresh index of n sequential keys over a scratch
// file named for n, so successive sweeps don't collide.
func buildBenchIndex(scratchDir string, n int) (*index.Index, *buffer.BufferpoolManager, error) {
	indexPath := path.Join(scratchDir, fmt.Sprintf("bench-%d.0", n))
	df, err := disk.Create(indexPath)
	if err != nil {
		return nil, nil, err
	}
	bpm := buffer.New(256, 2, df, nil)

	idx, err := index.OpenOrCreate("bench", 0, index.Integer, bpm, nil)
	if err != nil {
		bpm.Close()
		return nil, nil, err
	}

	for i := 0; i < n; i++ {
		rid := index.RecordId{PageNo: uint32(i/100 + 1), SlotNo: uint16(i % 100)}
		if err := idx.Insert(int32(i), rid); err != nil {
			bpm.Close()
			return nil, nil, err
		}
	}
	return idx, bpm, nil
}

// readMemMB mirrors GetDetailedMem's force-GC-then-sample approach so
// consecutive sweeps measure live heap, not accumulated garbage.
func readMemMB() uint64 {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}

// renderLatencyPlot draws one line per operator combo, latency (ns) against
// index size N.
func renderLatencyPlot(results map[string][]benchResult, outPath string) error {
	p := plot.New()
	p.Title.Text = "petroidx scan latency vs index size"
	p.X.Label.Text = "N"
	p.Y.Label.Text = "latency (ns)"

	var plotArgs []any
	for _, combo := range benchCombos {
		rows := results[combo.name]
		pts := make(plotter.XYs, len(rows))
		for i, r := range rows {
			pts[i].X = float64(r.N)
			pts[i].Y = float64(r.LatencyNs)
		}
		plotArgs = append(plotArgs, combo.name, pts)
	}

	if err := plotutil.AddLinePoints(p, plotArgs...); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, outPath)
}
