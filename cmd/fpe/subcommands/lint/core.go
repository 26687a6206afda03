//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/seeds"
	"github.com/fieldgate/permengine/pkg/seeds/parsers"
	"github.com/fieldgate/permengine/pkg/seeds/registry"
	"github.com/urfave/cli/v3"
)

// Result represents the outcome of a lint operation on a file.
type Result struct {
	File  string
	Valid bool
	Error error
}

// Execute runs the lint command with the provided context and CLI command.
func Execute(ctx context.Context, cmd *cli.Command) error {
	files := cmd.StringSlice("file")
	if len(files) == 0 {
		return fmt.Errorf("no files specified, use --file/-f to specify seed files to lint")
	}

	fmt.Println("Linting seed files...")
	fmt.Println()

	errorCount := 0
	documents := make([]*seeds.Document, 0, len(files))
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file))
		if ext != ".yml" && ext != ".yaml" {
			fmt.Printf("⚠ %s: Unsupported file type (only .yml, .yaml supported)\n\n", file)
			continue
		}

		result := lintFile(file)
		if !result.Valid {
			errorCount++
			fmt.Printf("✗ %s\n", file)
			fmt.Printf("  Error: %s\n", formatSeedError(result.Error))
			fmt.Println()
			continue
		}

		fmt.Printf("✓ %s: Valid seed document\n", file)
		doc, _ := parsers.Load(file)
		documents = append(documents, doc)
	}

	// cross-file validation only makes sense over the files that parsed
	if errorCount == 0 {
		if _, err := registry.NewRegistryFromDocuments(documents); err != nil {
			errorCount++
			fmt.Printf("✗ Seed validation failed: %s\n", formatSeedError(err))
			fmt.Println()
		}
	}

	fmt.Println("---")
	if errorCount > 0 {
		fmt.Printf("Linting completed: %d error(s)\n", errorCount)
		return fmt.Errorf("linting failed: %d error(s)", errorCount)
	}

	fmt.Printf("All checks passed: %d file(s) validated successfully\n", len(documents))
	return nil
}

func lintFile(path string) Result {
	_, err := parsers.Load(path)
	return Result{
		File:  path,
		Valid: err == nil,
		Error: err,
	}
}

func formatSeedError(err error) string {
	if seedErr, ok := err.(*common.SeedError); ok {
		return fmt.Sprintf("[%s] %s", seedErr.Reason, seedErr.Detail)
	}
	return err.Error()
}
