package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cartloom/cartloom/internal/ai"
	"github.com/cartloom/cartloom/internal/analytics"
	"github.com/cartloom/cartloom/internal/dataset"
	"github.com/cartloom/cartloom/internal/insight"
	"github.com/cartloom/cartloom/internal/report"
	"github.com/cartloom/cartloom/internal/utils"
)

var (
	anaOutputPath string
	anaPretty     bool
	anaMinSupport int
	anaHorizon    int
	anaSampleRows int
	anaNoAI       bool
	anaModel      string
	anaAPIKey     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a transaction CSV or XLSX and emit the insight bundle as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		analysisID := uuid.NewString()
		debugf("analysis %s: processing %s", analysisID, path)

		res, err := loadTable(path)
		if err != nil {
			// The only fatal failure: emit the error envelope, no
			// partial statistics.
			if werr := writeJSON(report.NewError(err)); werr != nil {
				return werr
			}
			return err
		}
		tbl := res.Table
		debugf("analysis %s: %d rows loaded, %d dropped for missing values", analysisID, res.RawRows, res.Dropped)

		opt := analytics.DefaultOptions()
		opt.Logf = debugf
		if anaMinSupport > 0 {
			opt.MinSupport = anaMinSupport
		} else if cfg != nil && cfg.MinSupport > 0 {
			opt.MinSupport = cfg.MinSupport
		}
		if anaHorizon > 0 {
			opt.ForecastHorizon = anaHorizon
		} else if cfg != nil && cfg.ForecastHorizon > 0 {
			opt.ForecastHorizon = cfg.ForecastHorizon
		}
		doc := analytics.Compute(tbl, opt)

		composer := insight.Composer{Logf: debugf}
		if !anaNoAI {
			composer.Runtime = newRuntime()
			composer.Model = resolveModel()
			if cfg != nil && cfg.InsightTimeoutSec > 0 {
				composer.Timeout = time.Duration(cfg.InsightTimeoutSec) * time.Second
			}
		}
		insights := composer.Insights(context.Background(), doc)

		sampleRows := anaSampleRows
		if sampleRows <= 0 && cfg != nil {
			sampleRows = cfg.SampleRows
		}
		bundle := report.Build(analysisID, tbl, doc, insights, sampleRows)
		return writeJSON(bundle)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the JSON bundle")
	analyzeCmd.Flags().BoolVar(&anaPretty, "pretty", false, "indent the JSON output")
	analyzeCmd.Flags().IntVar(&anaMinSupport, "min-support", 0, "minimum item occurrences for association mining (default 10)")
	analyzeCmd.Flags().IntVar(&anaHorizon, "horizon", 0, "forecast horizon in days (default 30)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 0, "cleaned rows echoed in the bundle (default 100)")
	analyzeCmd.Flags().BoolVar(&anaNoAI, "no-ai", false, "skip the text-generation collaborator and use the built-in narrative")
	analyzeCmd.Flags().StringVar(&anaModel, "model", "", "collaborator model (overrides config)")
	analyzeCmd.Flags().StringVar(&anaAPIKey, "api-key", "", "collaborator API key (overrides env and config)")
}

// loadTable picks the loader by file extension; everything that is not an
// xlsx workbook goes through the CSV path.
func loadTable(path string) (*dataset.LoadResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return dataset.LoadXLSX(path)
	}
	return dataset.LoadCSV(path)
}

// newRuntime builds the collaborator client from flags, env, and config.
// A missing key still yields a client; its auth error triggers the
// fallback narrative like any other collaborator failure.
func newRuntime() ai.Runtime {
	key := anaAPIKey
	if key == "" {
		key = os.Getenv("CARTLOOM_API_KEY")
	}
	if key == "" && cfg != nil {
		key = cfg.APIKey
	}
	timeout, retryMax := 60, 3
	baseMs, maxMs := 500, 4000
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			timeout = cfg.HTTPTimeoutSec
		}
		if cfg.RetryMaxAttempts > 0 {
			retryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			baseMs = cfg.RetryBaseDelayMs
		}
		if cfg.RetryMaxDelayMs > 0 {
			maxMs = cfg.RetryMaxDelayMs
		}
	}
	return ai.NewClient(key,
		time.Duration(timeout)*time.Second,
		retryMax,
		time.Duration(baseMs)*time.Millisecond,
		time.Duration(maxMs)*time.Millisecond)
}

func resolveModel() string {
	if anaModel != "" {
		return anaModel
	}
	if cfg != nil && cfg.Model != "" {
		return cfg.Model
	}
	return "openai/gpt-4o-mini"
}

func writeJSON(v any) error {
	var (
		b   []byte
		err error
	)
	if anaPretty {
		b, err = utils.PrettyJSON(v)
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	if anaOutputPath != "" {
		if err := utils.SafeWriteFile(anaOutputPath, append(b, '\n')); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
		return nil
	}
	fmt.Println(string(b))
	return nil
}
