package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/streamparty/cmd/throughput/templates"
	"github.com/delaneyj/streamparty/stream"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	repeatsKey = "repeats"
	reportKey  = "report"
)

func main() {
	cmd := &cli.Command{
		Name:  "throughput",
		Usage: "Push items through map/filter/reduce pipelines and report items per millisecond",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  repeatsKey,
				Usage: "Runs per config, the best one is reported",
				Value: 5,
			},
			&cli.StringFlag{
				Name:  reportKey,
				Usage: "Also write a markdown report to this file",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type throughputConfig struct {
	name     string
	items    int64 // items pushed per run
	stages   int   // Map stages between source and reduce
	keepEven bool  // put a Filter in front of the reduce
	limit    int   // RunLimit cap, 0 runs without backpressure
}

var configs = []throughputConfig{
	{name: "single stage", items: 100_000, stages: 1},
	{name: "deep", items: 20_000, stages: 50},
	{name: "filtered", items: 100_000, stages: 5, keepEven: true},
	{name: "awaited", items: 20_000, stages: 5, limit: 1},
	{name: "limited", items: 20_000, stages: 5, limit: 64},
}

type runner struct {
	name string
	run  func(ctx context.Context, cfg throughputConfig) (int, error)
}

var runners = []runner{
	{"nodes", runNodes},
	{"channels", runChannels},
	{"loop", runLoop},
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting throughput benchmark, please wait...")
	defer log.Print("Finished throughput benchmark")

	repeats := int(cmd.Uint(repeatsKey))
	if repeats < 1 {
		repeats = 1
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"runner", "items", "stages", "limit", "test", "time", "updateRate", "title",
	})

	var rows []templates.Row
	for _, cfg := range configs {
		log.Printf("Running '%s' config", cfg.name)
		want := expectedSum(cfg)

		for _, r := range runners {
			// warm up
			if _, err := r.run(ctx, cfg); err != nil {
				return fmt.Errorf("%s %s: %w", r.name, cfg.name, err)
			}

			best := time.Hour
			for i := 0; i < repeats; i++ {
				start := time.Now()
				sum, err := r.run(ctx, cfg)
				duration := time.Since(start)
				if err != nil {
					return fmt.Errorf("%s %s: %w", r.name, cfg.name, err)
				}
				if sum != want {
					return fmt.Errorf("%s %s: sum %d, want %d", r.name, cfg.name, sum, want)
				}
				best = min(best, duration)
			}

			updateRate := float64(cfg.items) / (float64(best) / float64(time.Millisecond))
			table.Append([]string{
				r.name,
				humanize.Comma(cfg.items),
				fmt.Sprint(cfg.stages),
				fmt.Sprint(cfg.limit),
				cfg.name,
				fmt.Sprint(best),
				humanize.Comma(int64(updateRate)),
				makeTitle(cfg),
			})
			rows = append(rows, templates.Row{
				Runner:     r.name,
				Test:       cfg.name,
				Items:      cfg.items,
				Stages:     cfg.stages,
				Duration:   best,
				UpdateRate: updateRate,
			})
		}
	}
	table.Render()

	if path := cmd.String(reportKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		templates.WriteReport(f, rows)
		log.Printf("Wrote report to %s", path)
	}
	return nil
}

func makeTitle(cfg throughputConfig) string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%d stages", cfg.stages))
	if cfg.keepEven {
		sb.WriteString(" filtered")
	}
	if cfg.limit > 0 {
		sb.WriteString(fmt.Sprintf(" limit %d", cfg.limit))
	}
	return sb.String()
}

func expectedSum(cfg throughputConfig) int {
	sum := 0
	for i := 0; i < int(cfg.items); i++ {
		v := i + cfg.stages
		if cfg.keepEven && v%2 != 0 {
			continue
		}
		sum += v
	}
	return sum
}

func addOne(v int) int { return v + 1 }
func isEven(v int) bool { return v%2 == 0 }

func runNodes(ctx context.Context, cfg throughputConfig) (int, error) {
	args := make([]any, 0, cfg.stages+3)
	args = append(args, int(cfg.items))
	for i := 0; i < cfg.stages; i++ {
		args = append(args, stream.Map(addOne))
	}
	if cfg.keepEven {
		args = append(args, stream.Filter(isEven))
	}
	args = append(args, stream.Reduce(0))

	var n *stream.Node
	if cfg.limit > 0 {
		n = stream.RunLimit(cfg.limit, args...)
	} else {
		n = stream.Run(args...)
	}
	v, err := n.Wait(ctx)
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func runChannels(ctx context.Context, cfg throughputConfig) (int, error) {
	src := make(chan int)
	go func() {
		defer close(src)
		for i := 0; i < int(cfg.items); i++ {
			select {
			case src <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var in <-chan int = src
	for i := 0; i < cfg.stages; i++ {
		out := make(chan int)
		go func(in <-chan int) {
			defer close(out)
			for v := range in {
				out <- addOne(v)
			}
		}(in)
		in = out
	}

	sum := 0
	for v := range in {
		if cfg.keepEven && !isEven(v) {
			continue
		}
		sum += v
	}
	return sum, ctx.Err()
}

func runLoop(_ context.Context, cfg throughputConfig) (int, error) {
	sum := 0
	for i := 0; i < int(cfg.items); i++ {
		v := i
		for j := 0; j < cfg.stages; j++ {
			v = addOne(v)
		}
		if cfg.keepEven && !isEven(v) {
			continue
		}
		sum += v
	}
	return sum, nil
}
