package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/domain/prototype"
	"tarotvision-server-go/internal/domain/review"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the offline evaluation loop over a labeled corpus",
	Long: `Score every labeled corpus image with the current matcher, write the
confidence snapshot and metrics, merge mismatches into the human
review queue without clobbering recorded verdicts, and check the
release gate. Exits nonzero when the gate fails.`,
	RunE: runEvaluate,
}

var (
	evalCorpusDir string
	evalOutputDir string
	evalDeckStyle string
	evalMinor     bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalCorpusDir, "corpus", "",
		"Corpus root directory (default: evaluation.corpus_dir from the config)")
	evaluateCmd.Flags().StringVar(&evalOutputDir, "out", "",
		"Artifact output directory (default: evaluation.output_dir from the config)")
	evaluateCmd.Flags().StringVar(&evalDeckStyle, "deck-style", "",
		"Deck style to match against (default: vision.default_deck_style)")
	evaluateCmd.Flags().BoolVar(&evalMinor, "include-minor", false,
		"Match against the full 78-card vocabulary")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg := globalConfig
	corpusDir := evalCorpusDir
	if corpusDir == "" {
		corpusDir = cfg.Evaluation.CorpusDir
	}
	outputDir := evalOutputDir
	if outputDir == "" {
		outputDir = cfg.Evaluation.OutputDir
	}
	deckStyle := evalDeckStyle
	if deckStyle == "" {
		deckStyle = cfg.Vision.DefaultDeckStyle
	}

	library, err := prototype.Load(cfg.Vision.PrototypesPath)
	if err != nil {
		return fmt.Errorf("load prototype library: %w", err)
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	samples, err := review.LoadCorpus(corpusDir)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	globalLogger.Info("evaluating %d samples from %s against deck %s",
		len(samples), corpusDir, deckStyle)

	matcher := match.NewMatcher(engine, library, cfg.Vision.Match, globalLogger)
	evaluator := review.NewEvaluator(matcher, globalLogger)
	scope := match.Scope{DeckStyle: deckStyle, IncludeMinor: evalMinor}

	report, err := evaluator.Evaluate(cmd.Context(), samples, scope,
		cfg.Evaluation.ConfidenceThreshold)
	if err != nil {
		return fmt.Errorf("evaluate corpus: %w", err)
	}

	snapshotPath := filepath.Join(outputDir, "confidence_snapshot.json")
	metricsPath := filepath.Join(outputDir, "metrics.json")
	queuePath := filepath.Join(outputDir, "review_queue.csv")

	if err := review.WriteSnapshot(snapshotPath, report.Snapshot); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := review.WriteMetrics(metricsPath, report.Metrics); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	existing, err := review.LoadQueue(queuePath)
	if err != nil {
		return fmt.Errorf("load review queue: %w", err)
	}
	merged := review.MergeQueue(existing, report.Records)
	if err := review.SaveQueue(queuePath, merged); err != nil {
		return fmt.Errorf("save review queue: %w", err)
	}

	m := report.Metrics
	fmt.Printf("samples=%d accuracy=%.4f f1=%.4f coverage=%.4f high_conf_accuracy=%.4f\n",
		m.Samples, m.Accuracy, m.F1, m.Coverage, m.HighConfidenceAccuracy)
	fmt.Printf("review queue: %d entries -> %s\n", len(merged), queuePath)

	gate := review.CheckGate(m, cfg.Evaluation)
	if !gate.Passed {
		return fmt.Errorf("release gate failed: %s", strings.Join(gate.Reasons, "; "))
	}
	fmt.Println("release gate passed")
	return nil
}
