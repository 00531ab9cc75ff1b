// cmd/tools/triage-cli/cmd_diagnose.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"maintenance-triage/internal/common/config"
	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/diagnosis"
	"maintenance-triage/internal/llm"
)

type diagnoseOptions struct {
	title       string
	description string
	category    string
	priority    string
	output      string
	configPath  string
	seed        int64
}

func newDiagnoseCmd() *cobra.Command {
	opts := &diagnoseOptions{}
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose one ticket and print the result",
		Example: `  triage-cli diagnose --title "Burst pipe" --description "water everywhere" --category plumbing
  triage-cli diagnose --title "No heat" --priority urgent -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiagnose(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.title, "title", "", "Ticket title")
	f.StringVar(&opts.description, "description", "", "Ticket description")
	f.StringVar(&opts.category, "category", "", "Selected category (plumbing, electrical, hvac, appliance, general)")
	f.StringVar(&opts.priority, "priority", "", "Requester priority (low, medium, high, urgent)")
	f.StringVarP(&opts.output, "output", "o", "human", "Output format: human, json or yaml")
	f.StringVar(&opts.configPath, "config", "", "Config file enabling the remote model (apis.llm)")
	f.Int64Var(&opts.seed, "seed", 0, "Seed for the similar-issues estimate; 0 seeds from the clock")
	return cmd
}

func runDiagnose(cmd *cobra.Command, opts *diagnoseOptions) error {
	engineOpts := diagnosis.Options{Logger: logger.NewNoOpLogger()}
	if opts.seed != 0 {
		engineOpts.Estimator = diagnosis.NewRandomEstimator(opts.seed)
	}
	if opts.configPath != "" {
		cfg, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.APIs.LLM.Enabled() {
			engineOpts.Remote = llm.NewClient(cfg.APIs.LLM, engineOpts.Logger)
		}
	}

	res := diagnosis.NewEngine(engineOpts).Diagnose(cmd.Context(), diagnosis.Request{
		Title:       opts.title,
		Description: opts.description,
		Category:    opts.category,
		Priority:    opts.priority,
	})

	return printResult(cmd.OutOrStdout(), opts.output, res)
}

func printResult(out io.Writer, format string, res diagnosis.Result) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		// Round-trip through JSON so YAML keys match the job variable names.
		raw, err := json.Marshal(res)
		if err != nil {
			return err
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	case "human", "":
		printHuman(out, res)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printHuman(out io.Writer, res diagnosis.Result) {
	urgency := urgencyColor(res.EstimatedUrgency)
	bold := color.New(color.Bold)

	bold.Fprintf(out, "%s / ", res.Category)
	urgency.Fprintf(out, "%s", res.EstimatedUrgency)
	fmt.Fprintf(out, "  (severity %d/5, confidence %.2f, source %s)\n", res.Severity, res.Confidence, res.Source)
	fmt.Fprintf(out, "Contractors: %s\n", strings.Join(res.RecommendedContractorTypes, ", "))
	if res.EstimatedCost != "" {
		fmt.Fprintf(out, "Estimate:    %s, %s\n", res.EstimatedCost, res.EstimatedTime)
	}
	if res.SimilarIssuesCount != nil {
		fmt.Fprintf(out, "Similar:     %d recent issues\n", *res.SimilarIssuesCount)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Diagnosis)
}

func urgencyColor(u diagnosis.Urgency) *color.Color {
	switch u {
	case diagnosis.UrgencyUrgent:
		return color.New(color.FgRed, color.Bold)
	case diagnosis.UrgencyHigh:
		return color.New(color.FgYellow, color.Bold)
	case diagnosis.UrgencyMedium:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}
