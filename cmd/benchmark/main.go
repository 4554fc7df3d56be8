// Command benchmark measures live ADS API latency through the MCP tool layer.
//
// Usage:
//
//	ADS_API_TOKEN=... go run ./cmd/benchmark -n 5 -query "galaxy mergers" -author "Coelho, P."
//
// Each request counts against the token's daily ADS quota.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/olgasafonova/nasa-ads-mcp-server/internal/ads"
	"github.com/olgasafonova/nasa-ads-mcp-server/metrics"
	dto "github.com/prometheus/client_model/go"
)

type sample struct {
	name      string
	durations []time.Duration
	errors    int
}

func (s *sample) report() {
	fmt.Printf("%-28s", s.name)
	if len(s.durations) == 0 {
		fmt.Printf(" no successful calls (%d errors)\n", s.errors)
		return
	}
	sorted := slices.Clone(s.durations)
	slices.Sort(sorted)
	fmt.Printf(" min %-10v median %-10v max %-10v errors %d\n",
		sorted[0].Round(time.Millisecond),
		sorted[len(sorted)/2].Round(time.Millisecond),
		sorted[len(sorted)-1].Round(time.Millisecond),
		s.errors)
}

// measure runs fn n times and records its latency
func measure(name string, n int, fn func() error) *sample {
	s := &sample{name: name}
	for i := 0; i < n; i++ {
		start := time.Now()
		if err := fn(); err != nil {
			s.errors++
			fmt.Fprintf(os.Stderr, "   %s: %v\n", name, err)
			continue
		}
		s.durations = append(s.durations, time.Since(start))
	}
	return s
}

// remainingQuota reads the last X-RateLimit-Remaining value seen by the client
func remainingQuota() float64 {
	var m dto.Metric
	if err := metrics.RateLimitRemaining.Write(&m); err != nil || m.Gauge == nil {
		return -1
	}
	return m.Gauge.GetValue()
}

func main() {
	n := flag.Int("n", 3, "Calls per measurement")
	query := flag.String("query", "dark energy", "Query for search_papers")
	author := flag.String("author", "Coelho, P.", "Author for get_author_papers and get_author_metrics")
	flag.Parse()

	config, err := ads.LoadConfig()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := ads.NewClient(config.Token, config.ClientOptions(logger)...)
	ctx := context.Background()

	fmt.Println("NASA ADS MCP Server - Latency Measurements")
	fmt.Println("==========================================")
	fmt.Printf("API: %s, pacing: %.1f req/s, %d calls each\n\n", config.BaseURL, config.RateLimit, *n)

	samples := []*sample{
		measure("search_papers (10 rows)", *n, func() error {
			_, err := client.SearchPapersMCP(ctx, ads.SearchPapersArgs{Query: *query, Rows: 10})
			return err
		}),
		measure("search_papers (50 rows)", *n, func() error {
			_, err := client.SearchPapersMCP(ctx, ads.SearchPapersArgs{Query: *query, Rows: 50})
			return err
		}),
		measure("get_author_papers", *n, func() error {
			_, err := client.GetAuthorPapersMCP(ctx, ads.GetAuthorPapersArgs{Author: *author})
			return err
		}),
		// search plus metrics: two requests per call
		measure("get_author_metrics", *n, func() error {
			_, err := client.GetAuthorMetricsMCP(ctx, ads.GetAuthorMetricsArgs{Author: *author})
			return err
		}),
	}

	for _, s := range samples {
		s.report()
	}

	fmt.Println()
	if remaining := remainingQuota(); remaining >= 0 {
		fmt.Printf("Daily quota remaining: %.0f\n", remaining)
	}
}
