package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	evaluationuc "github.com/kailas-cloud/prodassist/internal/usecase/evaluation"
)

var (
	evalDatasets   []string
	evalNoProgress bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate answers from YAML datasets",
	Long: `Score every {query, response} pair in the matched datasets against the contexts
the gateway retrieves, store the records in the evaluation log and print the means.

Examples:
  prodassist eval --dataset datasets/laptops.yaml
  prodassist eval --dataset "datasets/**/*.yaml" --no-progress`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringSliceVar(&evalDatasets, "dataset", nil, "dataset file or glob, repeatable (required)")
	evalCmd.Flags().BoolVar(&evalNoProgress, "no-progress", false, "hide the progress bar")
	_ = evalCmd.MarkFlagRequired("dataset")
}

func runEval(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.gateway.Close()

	if err := a.gateway.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("initialize retrieval gateway: %w", err)
	}

	svc, store, err := a.openEvaluation(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	progress := cmd.ErrOrStderr()
	if evalNoProgress {
		progress = nil
	}

	summary, err := evaluationuc.NewRunner(svc, progress, logger).Run(cmd.Context(), evalDatasets)
	if err != nil {
		return fmt.Errorf("run evaluation: %w", err)
	}

	logger.Info("Evaluation finished",
		zap.Int("files", summary.Files),
		zap.Int("samples", summary.Samples),
		zap.Int("failed", summary.Failed),
	)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Files:               %d\n", summary.Files)
	fmt.Fprintf(w, "Samples:             %d\n", summary.Samples)
	fmt.Fprintf(w, "Evaluated:           %d\n", summary.Evaluated)
	fmt.Fprintf(w, "Failed:              %d\n", summary.Failed)
	fmt.Fprintf(w, "context_precision:   %.4f\n", summary.MeanContextPrecision)
	fmt.Fprintf(w, "response_relevancy:  %.4f\n", summary.MeanResponseRelevancy)

	if summary.Evaluated == 0 && summary.Samples > 0 {
		return fmt.Errorf("all %d samples failed", summary.Samples)
	}
	return nil
}
