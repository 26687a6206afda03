//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fieldgate/permengine/cmd/fpe/common"
	pkgcommon "github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Request is the decision request expression read from --input.
type Request struct {
	User    *model.User   `json:"user,omitempty" yaml:"user,omitempty"`
	Entity  *model.Entity `json:"entity,omitempty" yaml:"entity,omitempty"`
	Module  string        `json:"module" yaml:"module"`
	Targets []string      `json:"targets" yaml:"targets"`
	Kind    model.Kind    `json:"kind" yaml:"kind"`
}

// ExecuteDecision invokes a single decision based on a request
// expression using one or more seed files.
func ExecuteDecision(ctx context.Context, cmd *cli.Command) error {
	var request Request
	if err := json.Unmarshal(getInput(cmd.String("input")), &request); err != nil {
		return fmt.Errorf("failed to parse request expression: %w", err)
	}

	pe, err := common.NewCliEngine(cmd, os.Stdout)
	if err != nil {
		return err
	}
	defer pe.Close()

	allowed, err := pe.DecideFor(ctx, request.User, request.Entity, request.Module,
		request.Targets, request.Kind)
	if err != nil {
		return err
	}

	pkgcommon.PrettyPrint(map[string]interface{}{
		"allowed": allowed,
	})
	return nil
}

// TestCase represents a single decision test case
type TestCase struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Request     Request    `yaml:"request"`
	Result      TestResult `yaml:"result"`
}

// TestResult represents the expected result of a test
type TestResult struct {
	Allowed []string `yaml:"allowed"`
}

// TestSuite represents a collection of test cases
type TestSuite struct {
	Tests []TestCase `yaml:"tests"`
}

// ExecuteDecisions runs a suite of decision tests from a YAML file
func ExecuteDecisions(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	testSuite, err := loadTestSuite(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load test suite: %w", err)
	}

	if len(testSuite.Tests) == 0 {
		return fmt.Errorf("no tests found in test suite")
	}

	// Filter tests based on --test patterns
	testPatterns := cmd.StringSlice("test")
	testsToRun := filterTests(testSuite.Tests, testPatterns)

	if len(testsToRun) == 0 {
		return fmt.Errorf("no tests match the specified patterns")
	}

	// Suppress decision records during suite runs unless tracing
	decisionWriter := io.Discard
	if cmd.Root().Bool("trace") {
		decisionWriter = os.Stderr
	}
	pe, err := common.NewCliEngine(cmd, decisionWriter)
	if err != nil {
		return err
	}
	defer pe.Close()

	passed := 0
	failed := 0

	for _, tc := range testsToRun {
		allowed, err := pe.DecideFor(ctx, tc.Request.User, tc.Request.Entity,
			tc.Request.Module, tc.Request.Targets, tc.Request.Kind)
		if err != nil {
			fmt.Printf("%s: ERROR (%v)\n", tc.Name, err)
			failed++
			continue
		}

		expected := append([]string(nil), tc.Result.Allowed...)
		sort.Strings(expected)
		if equalStrings(allowed, expected) {
			fmt.Printf("%s: PASS\n", tc.Name)
			passed++
		} else {
			fmt.Printf("%s: FAIL (expected allowed=%v, got allowed=%v)\n", tc.Name, expected, allowed)
			failed++
		}
	}

	total := passed + failed
	fmt.Printf("\n%d/%d tests passed\n", passed, total)

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// loadTestSuite reads and parses a test suite from a YAML file
func loadTestSuite(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		return nil, fmt.Errorf("failed to read test file: %w", err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test file: %w", err)
	}

	return &suite, nil
}

// filterTests returns tests that match the specified patterns.
// If no patterns are specified, all tests are returned.
// Patterns support glob matching (e.g., "auditor-*" matches "auditor-can-view").
func filterTests(tests []TestCase, patterns []string) []TestCase {
	if len(patterns) == 0 {
		return tests
	}

	var filtered []TestCase
	for _, tc := range tests {
		for _, pattern := range patterns {
			matched, err := filepath.Match(pattern, tc.Name)
			if err != nil {
				// Invalid pattern - treat as literal match
				if pattern == tc.Name {
					filtered = append(filtered, tc)
					break
				}
			} else if matched {
				filtered = append(filtered, tc)
				break
			}
		}
	}

	return filtered
}
