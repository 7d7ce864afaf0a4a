package evaluation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domeval "github.com/kailas-cloud/prodassist/internal/domain/evaluation"
)

// Evaluator scores one sample.
type Evaluator interface {
	Evaluate(ctx context.Context, sample domeval.Sample) (domeval.Record, error)
}

// Summary aggregates a batch evaluation.
type Summary struct {
	Files                 int
	Samples               int
	Evaluated             int
	Failed                int
	MeanContextPrecision  float64
	MeanResponseRelevancy float64
}

// Runner evaluates YAML datasets matched by glob patterns.
// A dataset file is a list of {query, response, contexts?} entries.
type Runner struct {
	eval     Evaluator
	progress io.Writer
	logger   *zap.Logger
}

// NewRunner creates a batch runner. progress receives the progress bar; nil hides it.
func NewRunner(eval Evaluator, progress io.Writer, l *zap.Logger) *Runner {
	if progress == nil {
		progress = io.Discard
	}
	return &Runner{eval: eval, progress: progress, logger: l}
}

// Run expands patterns ("**" supported), evaluates every sample and returns the means
// over successful evaluations. A failing sample is logged and counted, not fatal.
func (r *Runner) Run(ctx context.Context, patterns []string) (Summary, error) {
	files, err := expand(patterns)
	if err != nil {
		return Summary{}, err
	}

	var samples []domeval.Sample
	for _, f := range files {
		batch, err := readDataset(f)
		if err != nil {
			return Summary{}, err
		}
		samples = append(samples, batch...)
	}

	sum := Summary{Files: len(files), Samples: len(samples)}
	bar := progressbar.NewOptions(len(samples),
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription("Evaluating"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(r.progress) }),
	)

	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("evaluation interrupted: %w", err)
		}

		rec, err := r.eval.Evaluate(ctx, s)
		_ = bar.Add(1)
		if err != nil {
			sum.Failed++
			r.logger.Warn("Sample evaluation failed", zap.Int("index", i), zap.String("query", s.Query), zap.Error(err))
			continue
		}
		sum.Evaluated++
		sum.MeanContextPrecision += rec.Scores.ContextPrecision
		sum.MeanResponseRelevancy += rec.Scores.ResponseRelevancy
	}
	_ = bar.Finish()

	if sum.Evaluated > 0 {
		sum.MeanContextPrecision /= float64(sum.Evaluated)
		sum.MeanResponseRelevancy /= float64(sum.Evaluated)
	}
	return sum, nil
}

func expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad dataset pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no dataset files match %v", patterns)
	}
	sort.Strings(files)
	return files, nil
}

func readDataset(path string) ([]domeval.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var samples []domeval.Sample
	if err := yaml.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return samples, nil
}
