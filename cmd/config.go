package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/cartloom/cartloom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Cartloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("api_key: %s\n", mask(cfg.APIKey))
		fmt.Printf("model: %s\n", cfg.Model)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Printf("insight_timeout_sec: %d\n", cfg.InsightTimeoutSec)
		fmt.Printf("min_support: %d\n", cfg.MinSupport)
		fmt.Printf("forecast_horizon: %d\n", cfg.ForecastHorizon)
		fmt.Printf("sample_rows: %d\n", cfg.SampleRows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "model":
			cfg.Model = val
		case "http_timeout_sec":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.HTTPTimeoutSec = i
		case "retry_max_attempts":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetryBaseDelayMs = i
		case "retry_max_delay_ms":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetryMaxDelayMs = i
		case "insight_timeout_sec":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.InsightTimeoutSec = i
		case "min_support":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.MinSupport = i
		case "forecast_horizon":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.ForecastHorizon = i
		case "sample_rows":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.SampleRows = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func parsePositiveInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	return i, nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
