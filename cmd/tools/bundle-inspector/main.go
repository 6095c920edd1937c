// cmd/tools/bundle-inspector/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/pipeline"
	"loan-risk-workers/pkg/bundle"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)
	scoreCmd := flag.NewFlagSet("score", flag.ExitOnError)

	validatePath := validateCmd.String("bundle", "artifacts/model_bundle.json", "Path to model bundle")
	inspectPath := inspectCmd.String("bundle", "artifacts/model_bundle.json", "Path to model bundle")
	scorePath := scoreCmd.String("bundle", "artifacts/model_bundle.json", "Path to model bundle")
	scoreInput := scoreCmd.String("application", "", "Path to a JSON application file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if _, err := bundle.Load(*validatePath); err != nil {
			fmt.Printf("Bundle invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Bundle OK: %s\n", *validatePath)

	case "inspect":
		inspectCmd.Parse(os.Args[2:])
		b, err := bundle.Load(*inspectPath)
		if err != nil {
			fmt.Printf("Bundle invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Model type:  %s\n", b.ModelType)
		fmt.Printf("Features:    %d\n", len(b.FeatureNames))
		fmt.Printf("Threshold:   %.4f\n", b.Threshold)
		fmt.Printf("Linear:      %v\n", b.Linear != nil)
		fmt.Printf("Trees:       %d\n", len(b.Trees))
		fmt.Printf("Scaler:      %v\n", b.Scaler != nil)
		fmt.Printf("Background:  %d rows\n", len(b.Background))
		for _, name := range b.FeatureNames {
			fmt.Printf("  %s\n", name)
		}

	case "score":
		scoreCmd.Parse(os.Args[2:])
		if *scoreInput == "" {
			fmt.Println("Error: -application is required for score.")
			scoreCmd.Usage()
			os.Exit(1)
		}
		if err := scoreApplication(*scorePath, *scoreInput); err != nil {
			fmt.Printf("Score failed: %v\n", err)
			os.Exit(1)
		}

	default:
		help()
		os.Exit(1)
	}
}

func scoreApplication(bundlePath, applicationPath string) error {
	b, err := bundle.Load(bundlePath)
	if err != nil {
		return err
	}

	p, err := pipeline.FromBundle(b, logger.NewNoOpLogger())
	if err != nil {
		return err
	}

	data, err := os.ReadFile(applicationPath)
	if err != nil {
		return err
	}

	var raw models.RawApplication
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse application: %w", err)
	}

	decision, err := p.Score(context.Background(), &raw)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func help() {
	fmt.Println("Usage: bundle-inspector <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  validate  -bundle <path>                       Check a bundle's invariants")
	fmt.Println("  inspect   -bundle <path>                       Print bundle contents")
	fmt.Println("  score     -bundle <path> -application <path>   Score one application offline")
}
