package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/streamparty/stream"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure send latency through node chains and channel pipelines",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Sends per graph shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
				Value: "default.pgo",
			},
		},
		Action: benchmark,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

var (
	ww = []int{1, 10, 100}
	hh = []int{1, 10, 100}
)

func addOne(v int) int {
	return v + 1
}

func benchmark(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Uint(itersKey))
	log.Printf("warming up")

	benchmarkNodes(iters, true)
	benchmarkChannels(iters, true)
	return nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, w, h int, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRows([]table.Row{
		{
			fmt.Sprintf("propagate: %d * %d", w, h),
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}

// benchmarkNodes fans one source out into w chains of h Map nodes each, and
// times a single send through the whole graph.
func benchmarkNodes(iters int, shouldRender bool) {
	tbl := newTable("Node chains")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			src := stream.New(stream.Hooks{})
			for i := 0; i < w; i++ {
				last := src
				for j := 0; j < h; j++ {
					last = last.Each(stream.Map(addOne))
				}
				last.Each(stream.Reduce(0))
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Send(i, nil)
				tach.AddTime(time.Since(start))
			}
			src.Resolve(nil)

			appendCalc(tbl, w, h, tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkChannels builds the same shape out of goroutines and unbuffered
// channels and times a send until every chain delivered it.
func benchmarkChannels(iters int, shouldRender bool) {
	tbl := newTable("Channel pipelines")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			heads := make([]chan int, w)
			done := make(chan int)
			for i := range heads {
				heads[i] = make(chan int)
				in := heads[i]
				for j := 0; j < h; j++ {
					out := make(chan int)
					go func(in <-chan int, out chan<- int) {
						for v := range in {
							out <- addOne(v)
						}
						close(out)
					}(in, out)
					in = out
				}
				go func(in <-chan int) {
					for v := range in {
						done <- v
					}
				}(in)
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				for _, head := range heads {
					head <- i
				}
				for range heads {
					<-done
				}
				tach.AddTime(time.Since(start))
			}
			for _, head := range heads {
				close(head)
			}

			appendCalc(tbl, w, h, tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
