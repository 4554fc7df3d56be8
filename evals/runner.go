// Package evals provides evaluation framework for testing MCP tool selection accuracy.
// It validates that LLMs select the correct tools and extract proper arguments
// from natural language inputs, and that the suites stay in sync with the
// declared tools.
package evals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/olgasafonova/nasa-ads-mcp-server/tools"
)

// ToolSelectionTest represents a single tool selection evaluation case
type ToolSelectionTest struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Input        string         `json:"input"`
	ExpectedTool string         `json:"expected_tool"`
	ExpectedArgs map[string]any `json:"expected_args"`
	NotTools     []string       `json:"not_tools"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// ConfusionPairTest represents a single disambiguation test
type ConfusionPairTest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// ConfusionPair represents a pair of tools that are commonly confused
type ConfusionPair struct {
	ID             string              `json:"id"`
	Tools          []string            `json:"tools"`
	Disambiguation string              `json:"disambiguation"`
	Tests          []ConfusionPairTest `json:"tests"`
}

// ConfusionPairSuite contains all confusion pair tests
type ConfusionPairSuite struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Pairs       []ConfusionPair `json:"pairs"`
}

// ArgumentTest represents a single argument correctness test
type ArgumentTest struct {
	ID            string         `json:"id"`
	Tool          string         `json:"tool"`
	Input         string         `json:"input"`
	RequiredArgs  []string       `json:"required_args"`
	ExpectedArgs  map[string]any `json:"expected_args"`
	ForbiddenArgs []string       `json:"forbidden_args"`
	ArgNotes      string         `json:"arg_notes,omitempty"`
}

// ArgumentSuite contains all argument correctness tests
type ArgumentSuite struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Tests       []ArgumentTest `json:"tests"`
}

// Suites bundles the three suites loaded from one directory.
type Suites struct {
	ToolSelection  *ToolSelectionSuite
	ConfusionPairs *ConfusionPairSuite
	Arguments      *ArgumentSuite
}

// EvalMetrics contains aggregate metrics for an evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64 // PassedTests / TotalTests
	ByCategory    map[string]*CategoryMetrics
	FailedDetails []string
}

// CategoryMetrics contains metrics per category
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

func newMetrics() *EvalMetrics {
	return &EvalMetrics{ByCategory: make(map[string]*CategoryMetrics)}
}

func (m *EvalMetrics) record(category string, passed bool, detail string) {
	m.TotalTests++
	c := m.ByCategory[category]
	if c == nil {
		c = &CategoryMetrics{}
		m.ByCategory[category] = c
	}
	c.Total++
	if passed {
		m.PassedTests++
		c.Passed++
	} else {
		m.FailedTests++
		c.Failed++
		m.FailedDetails = append(m.FailedDetails, detail)
	}
	m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
}

func loadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadAll loads tool_selection.json, confusion_pairs.json and
// argument_correctness.json from dir.
func LoadAll(dir string) (*Suites, error) {
	s := &Suites{
		ToolSelection:  &ToolSelectionSuite{},
		ConfusionPairs: &ConfusionPairSuite{},
		Arguments:      &ArgumentSuite{},
	}
	if err := loadJSON(filepath.Join(dir, "tool_selection.json"), s.ToolSelection); err != nil {
		return nil, fmt.Errorf("loading tool selection: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, "confusion_pairs.json"), s.ConfusionPairs); err != nil {
		return nil, fmt.Errorf("loading confusion pairs: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, "argument_correctness.json"), s.Arguments); err != nil {
		return nil, fmt.Errorf("loading arguments: %w", err)
	}
	return s, nil
}

// CheckSuites reports every suite entry that names an undeclared tool or
// whose expected arguments would be rejected by the tool's parameter checks.
func CheckSuites(s *Suites, specs []tools.ToolSpec) []error {
	byName := make(map[string]tools.ToolSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}

	var errs []error
	known := func(where, name string) (tools.ToolSpec, bool) {
		spec, ok := byName[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown tool %q", where, name))
		}
		return spec, ok
	}
	checkArgs := func(where string, spec tools.ToolSpec, args map[string]any) {
		if _, err := spec.Validate(args); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		for key := range args {
			if !declares(spec, key) {
				errs = append(errs, fmt.Errorf("%s: %s has no parameter %q", where, spec.Name, key))
			}
		}
	}

	for _, t := range s.ToolSelection.Tests {
		if spec, ok := known(t.ID, t.ExpectedTool); ok {
			checkArgs(t.ID, spec, t.ExpectedArgs)
		}
		for _, name := range t.NotTools {
			known(t.ID, name)
		}
	}
	for _, p := range s.ConfusionPairs.Pairs {
		for _, name := range p.Tools {
			known(p.ID, name)
		}
		for _, t := range p.Tests {
			known(p.ID, t.Expected)
		}
	}
	for _, t := range s.Arguments.Tests {
		spec, ok := known(t.ID, t.Tool)
		if !ok {
			continue
		}
		checkArgs(t.ID, spec, t.ExpectedArgs)
		for _, name := range append(append([]string{}, t.RequiredArgs...), t.ForbiddenArgs...) {
			if !declares(spec, name) {
				errs = append(errs, fmt.Errorf("%s: %s has no parameter %q", t.ID, spec.Name, name))
			}
		}
	}
	return errs
}

func declares(spec tools.ToolSpec, name string) bool {
	for _, p := range spec.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ToolSelector is an interface that an LLM or mock can implement for testing
type ToolSelector interface {
	// SelectTool returns the tool name and arguments for a given natural language input
	SelectTool(input string) (toolName string, args map[string]any, err error)
}

// EvaluateToolSelection runs tool selection tests against a selector
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) *EvalMetrics {
	m := newMetrics()
	for _, test := range suite.Tests {
		tool, args, err := selector.SelectTool(test.Input)

		var problems []string
		if err != nil {
			problems = append(problems, fmt.Sprintf("selector error: %v", err))
		}
		if tool != test.ExpectedTool {
			problems = append(problems, fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, tool))
		}
		for _, forbidden := range test.NotTools {
			if tool == forbidden {
				problems = append(problems, "selected forbidden tool: "+forbidden)
			}
		}
		problems = append(problems, argProblems(test.ExpectedArgs, args)...)

		m.record(test.Category, len(problems) == 0,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(problems, "; ")))
	}
	return m
}

// EvaluateConfusionPairs runs confusion pair tests against a selector
func EvaluateConfusionPairs(suite *ConfusionPairSuite, selector ToolSelector) *EvalMetrics {
	m := newMetrics()
	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			tool, _, err := selector.SelectTool(test.Input)
			m.record(pair.ID, err == nil && tool == test.Expected,
				fmt.Sprintf("[%s] %s: expected %s, got %s (%s)", pair.ID, test.Input, test.Expected, tool, test.Reason))
		}
	}
	return m
}

// EvaluateArguments runs argument correctness tests against a selector
func EvaluateArguments(suite *ArgumentSuite, selector ToolSelector) *EvalMetrics {
	m := newMetrics()
	for _, test := range suite.Tests {
		tool, args, err := selector.SelectTool(test.Input)

		var problems []string
		switch {
		case err != nil:
			problems = append(problems, fmt.Sprintf("selector error: %v", err))
		case tool != test.Tool:
			problems = append(problems, fmt.Sprintf("wrong tool: expected %s, got %s", test.Tool, tool))
		default:
			for _, name := range test.RequiredArgs {
				if _, ok := args[name]; !ok {
					problems = append(problems, "missing required "+name)
				}
			}
			problems = append(problems, argProblems(test.ExpectedArgs, args)...)
			for _, name := range test.ForbiddenArgs {
				if _, ok := args[name]; ok {
					problems = append(problems, "forbidden "+name)
				}
			}
		}

		m.record(test.Tool, len(problems) == 0,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(problems, "; ")))
	}
	return m
}

func argProblems(expected, actual map[string]any) []string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []string
	for _, key := range keys {
		got, ok := actual[key]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("missing arg %s (expected %v)", key, expected[key]))
		case !compareValues(expected[key], got):
			problems = append(problems, fmt.Sprintf("wrong arg %s: expected %v, got %v", key, expected[key], got))
		}
	}
	return problems
}

// compareValues compares expected and actual values, handling type differences
func compareValues(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)

	// JSON unmarshals numbers to float64
	if f, ok := asFloat(ev); ok {
		g, ok := asFloat(av)
		return ok && f == g
	}

	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

// FormatMetrics returns a human-readable summary of evaluation metrics
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	if len(metrics.ByCategory) > 0 {
		cats := make([]string, 0, len(metrics.ByCategory))
		for cat := range metrics.ByCategory {
			cats = append(cats, cat)
		}
		sort.Strings(cats)

		b.WriteString("\nBy Category:\n")
		for _, cat := range cats {
			c := metrics.ByCategory[cat]
			fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", cat, c.Passed, c.Total, float64(c.Passed)/float64(c.Total)*100)
		}
	}

	details := metrics.FailedDetails
	if len(details) > 10 {
		fmt.Fprintf(&b, "\nFailed Tests (showing first 10 of %d):\n", len(details))
		details = details[:10]
	} else if len(details) > 0 {
		b.WriteString("\nFailed Tests:\n")
	}
	for _, detail := range details {
		fmt.Fprintf(&b, "  - %s\n", detail)
	}

	return b.String()
}
