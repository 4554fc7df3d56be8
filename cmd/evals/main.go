// Command evals checks and scores the MCP tool selection evaluations.
//
// Usage:
//
//	go run ./cmd/evals -dir ./evals
//	go run ./cmd/evals -dir ./evals -responses answers.json
//
// Without -responses it verifies that every suite matches the declared tools
// and prints coverage. With -responses it scores recorded model answers, a
// JSON object mapping each input to {"tool": ..., "args": {...}}.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/olgasafonova/nasa-ads-mcp-server/evals"
	"github.com/olgasafonova/nasa-ads-mcp-server/tools"
)

// recordedSelector replays answers captured from a model run
type recordedSelector map[string]struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

func (r recordedSelector) SelectTool(input string) (string, map[string]any, error) {
	answer, ok := r[input]
	if !ok {
		return "", nil, fmt.Errorf("no recorded answer")
	}
	return answer.Tool, answer.Args, nil
}

func main() {
	dir := flag.String("dir", "./evals", "Directory containing eval JSON files")
	responses := flag.String("responses", "", "JSON file of recorded answers to score")
	verbose := flag.Bool("verbose", false, "Show detailed test information")
	flag.Parse()

	fmt.Println("NASA ADS MCP Server - Evaluation Framework")
	fmt.Println("==========================================")

	suites, err := evals.LoadAll(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading evals: %v\n", err)
		os.Exit(1)
	}

	if errs := evals.CheckSuites(suites, tools.AllTools); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d suite entries do not match the declared tools:\n", len(errs))
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "  - %v\n", err)
		}
		os.Exit(1)
	}

	printCoverage(suites, *verbose)

	if *responses == "" {
		return
	}

	data, err := os.ReadFile(*responses)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading responses: %v\n", err)
		os.Exit(1)
	}
	var selector recordedSelector
	if err := json.Unmarshal(data, &selector); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing responses: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(evals.FormatMetrics(evals.EvaluateToolSelection(suites.ToolSelection, selector), "Tool Selection"))
	fmt.Print(evals.FormatMetrics(evals.EvaluateConfusionPairs(suites.ConfusionPairs, selector), "Confusion Pairs"))
	fmt.Print(evals.FormatMetrics(evals.EvaluateArguments(suites.Arguments, selector), "Arguments"))
}

func printCoverage(s *evals.Suites, verbose bool) {
	confusionTests := 0
	for _, pair := range s.ConfusionPairs.Pairs {
		confusionTests += len(pair.Tests)
	}

	fmt.Println()
	fmt.Printf("Tool Selection Tests:   %d\n", len(s.ToolSelection.Tests))
	fmt.Printf("Confusion Pair Tests:   %d (across %d pairs)\n", confusionTests, len(s.ConfusionPairs.Pairs))
	fmt.Printf("Argument Tests:         %d\n", len(s.Arguments.Tests))
	fmt.Printf("Total Evaluation Tests: %d\n", len(s.ToolSelection.Tests)+confusionTests+len(s.Arguments.Tests))

	counts := make(map[string]int)
	for _, test := range s.ToolSelection.Tests {
		counts[test.ExpectedTool]++
	}
	for _, test := range s.Arguments.Tests {
		counts[test.Tool]++
	}

	fmt.Println("\nTests by Tool:")
	for _, spec := range tools.AllTools {
		marker := " "
		if counts[spec.Name] == 0 {
			marker = "!"
		}
		fmt.Printf(" %s %-22s: %d\n", marker, spec.Name, counts[spec.Name])
	}

	if !verbose {
		return
	}

	fmt.Println("\nConfusion Pairs:")
	pairs := append([]evals.ConfusionPair(nil), s.ConfusionPairs.Pairs...)
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	for _, pair := range pairs {
		fmt.Printf("  %s %v\n    Rule: %s\n", pair.ID, pair.Tools, pair.Disambiguation)
		for _, test := range pair.Tests {
			fmt.Printf("      %q -> %s (%s)\n", test.Input, test.Expected, test.Reason)
		}
	}
}
