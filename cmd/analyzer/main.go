package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/engine"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/parser"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/policy"

	"github.com/spf13/cobra"
)

var (
	aclFile      string
	ruleProvider string
	rulesDB      string
	policyName   string
	topK         int
	logLevel     string
	logFile      string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ftd-acl-optimizer",
		Short: "Capacity analyzer for firewall access-control policies",
		Long: `ftd-acl-optimizer reads the output of "show access-control-config" and
	reports how many hardware entries each rule expands to, and how many of
	those entries prefix and port folding would save.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(setupLogger(logLevel, logFile))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&aclFile, "file", "f", "", "Output of \"show access-control-config\" (for 'ftd' provider)")
	rootCmd.PersistentFlags().StringVar(&ruleProvider, "provider", "ftd", "Rule provider type: 'ftd' or 'mariadb'")
	rootCmd.PersistentFlags().StringVar(&rulesDB, "db", "", "Database connection string (for 'mariadb' provider)")
	rootCmd.PersistentFlags().StringVar(&policyName, "policy", "", "Policy name to filter database rows on ('mariadb' provider)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	rootCmd.AddCommand(newRuleCmd(), newTopKCmd(), newACPCmd())

	return rootCmd
}

func newRuleCmd() *cobra.Command {
	ruleCmd := &cobra.Command{
		Use:   "rule",
		Short: "Analyze a single rule",
	}

	ruleCmd.AddCommand(
		&cobra.Command{
			Use:   "capacity <name>",
			Short: "Report a rule's capacity and optimized capacity",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				analyzer, err := loadAnalyzer()
				if err != nil {
					return err
				}
				report, err := analyzer.RuleReport(args[0])
				if err != nil {
					return err
				}
				printRuleCapacity(cmd.OutOrStdout(), report)
				return nil
			},
		},
		&cobra.Command{
			Use:   "analysis <name>",
			Short: "Report a rule's capacity plus its folding opportunities",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				analyzer, err := loadAnalyzer()
				if err != nil {
					return err
				}
				report, err := analyzer.RuleReport(args[0])
				if err != nil {
					return err
				}
				printRuleCapacity(cmd.OutOrStdout(), report)
				printRuleAnalysis(cmd.OutOrStdout(), report)
				return nil
			},
		},
	)

	return ruleCmd
}

func newTopKCmd() *cobra.Command {
	topKCmd := &cobra.Command{
		Use:   "topk",
		Short: "Rank rules by capacity or optimization opportunity",
	}
	topKCmd.PersistentFlags().IntVarP(&topK, "top", "k", 5, "Number of rules to report")

	topKCmd.AddCommand(
		&cobra.Command{
			Use:   "by-capacity",
			Short: "Top-k rules by raw capacity",
			RunE: func(cmd *cobra.Command, args []string) error {
				analyzer, err := loadAnalyzer()
				if err != nil {
					return err
				}
				printTopK(cmd.OutOrStdout(), analyzer.TopKByCapacity(topK))
				return nil
			},
		},
		&cobra.Command{
			Use:   "by-optimization",
			Short: "Top-k rules by capacity saved through folding",
			RunE: func(cmd *cobra.Command, args []string) error {
				analyzer, err := loadAnalyzer()
				if err != nil {
					return err
				}
				printTopK(cmd.OutOrStdout(), analyzer.TopKByOptimization(topK))
				return nil
			},
		},
	)

	return topKCmd
}

func newACPCmd() *cobra.Command {
	acpCmd := &cobra.Command{
		Use:   "acp",
		Short: "Analyze the whole access-control policy",
	}

	acpCmd.AddCommand(
		&cobra.Command{
			Use:   "capacity",
			Short: "Report the policy's total capacity",
			RunE: func(cmd *cobra.Command, args []string) error {
				analyzer, err := loadAnalyzer()
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), analyzer.PolicySummary())
				return nil
			},
		},
		&cobra.Command{
			Use:   "analysis",
			Short: "Report the policy's totals plus per-rule capacities",
			RunE: func(cmd *cobra.Command, args []string) error {
				analyzer, err := loadAnalyzer()
				if err != nil {
					return err
				}
				summary := analyzer.PolicySummary()
				printSummary(cmd.OutOrStdout(), summary)
				printTopK(cmd.OutOrStdout(), analyzer.TopKByCapacity(summary.RuleCount))
				return nil
			},
		},
	)

	return acpCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadAnalyzer() (*engine.Analyzer, error) {
	slog.Info("Loading policy", "provider", ruleProvider)
	acp, err := loadPolicy(ruleProvider, aclFile, rulesDB, policyName)
	if err != nil {
		slog.Error("Failed to load policy", "error", err)
		return nil, err
	}
	slog.Info("Successfully loaded policy", "rules", acp.RuleCount())
	return engine.NewAnalyzer(acp), nil
}

func loadPolicy(provider, aclPath, dbConnStr, policyFilter string) (*policy.ACP, error) {
	switch provider {
	case "ftd":
		if aclPath == "" {
			return nil, fmt.Errorf("file path must be provided for ftd provider")
		}
		file, err := os.Open(aclPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return parser.NewFTDParser(file).Parse()
	case "mariadb":
		if dbConnStr == "" {
			return nil, fmt.Errorf("database connection string must be provided for mariadb provider")
		}
		var opts []parser.DBOption
		if policyFilter != "" {
			opts = append(opts, parser.WithPolicyFilter(policyFilter))
		}
		p, err := parser.NewMariaDBParser(dbConnStr, opts...)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		return p.Parse()
	default:
		return nil, fmt.Errorf("unknown rule provider: %s", provider)
	}
}

func printRuleCapacity(w io.Writer, report *engine.RuleReport) {
	fmt.Fprintf(w, "Rule name: %s\n", report.Name)
	fmt.Fprintf(w, "\t capacity:           %d\n", report.Capacity)
	fmt.Fprintf(w, "\t optimized capacity: %d\n", report.OptimizedCapacity)
	fmt.Fprintf(w, "\t optimization ratio: %.2f%%\n", report.OptimizationRatio)
}

func printRuleAnalysis(w io.Writer, report *engine.RuleReport) {
	if len(report.NetworkMerges) > 0 {
		fmt.Fprintln(w, "Network merges:")
		for _, merge := range report.NetworkMerges {
			fmt.Fprintf(w, "\t %s\n", merge)
		}
	}
	if len(report.ProtocolEntries) > 0 {
		fmt.Fprintln(w, "Protocol entries:")
		for _, entry := range report.ProtocolEntries {
			fmt.Fprintf(w, "\t %s\n", entry)
		}
	}
}

func printTopK(w io.Writer, reports []*engine.RuleReport) {
	for i, report := range reports {
		fmt.Fprintf(w, "%d. %s: capacity %d, optimized %d (%.2f%%)\n",
			i+1, report.Name, report.Capacity, report.OptimizedCapacity, report.OptimizationRatio)
	}
}

func printSummary(w io.Writer, summary *engine.PolicySummary) {
	fmt.Fprintf(w, "# of rules found: %d\n", summary.RuleCount)
	fmt.Fprintf(w, "\t capacity:           %d\n", summary.Capacity)
	fmt.Fprintf(w, "\t optimized capacity: %d\n", summary.OptimizedCapacity)
	fmt.Fprintf(w, "\t optimization ratio: %.2f%%\n", summary.OptimizationRatio)
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// We don't log an error here because the logger isn't set up yet.
		// It will just fall back to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}
