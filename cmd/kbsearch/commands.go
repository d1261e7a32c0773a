package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/helpdesk/internal/config"
	domkb "github.com/kailas-cloud/helpdesk/internal/domain/knowledge"
	kbrepo "github.com/kailas-cloud/helpdesk/internal/repository/knowledge"
	"github.com/kailas-cloud/helpdesk/internal/version"
)

type rootOptions struct {
	kbPath     string
	configPath string
	noColor    bool

	// knowledge is set from --config; nil means built-in thesaurus and limits.
	knowledge *config.KnowledgeConfig
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "kbsearch",
		Short:         "Query and validate a helpdesk knowledge base",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			if opts.configPath == "" {
				return nil
			}
			kc, err := loadKnowledgeConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.knowledge = &kc
			if !cmd.Flags().Changed("kb") {
				opts.kbPath = kc.Path
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.kbPath, "kb", "knowledge_base.json", "knowledge base file (.json or .yaml)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"server config file; its knowledge section supplies thesaurus, limits and the default --kb")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newQueryCmd(opts), newValidateCmd(opts), newTopicsCmd(opts))
	return root
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var (
		scores bool
		limits domkb.Limits
	)
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Print the snippets retrieved for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd.Context(), opts.kbPath)
			if err != nil {
				return err
			}
			engine := newEngine(opts.knowledge, limits)
			q := domkb.Normalize(strings.Join(args, " "))
			ranked := engine.Score(q, doc)

			out := cmd.OutOrStdout()
			if scores {
				for _, ts := range ranked {
					fmt.Fprintf(out, "%s %d\n", color.CyanString("%-24s", ts.Topic), ts.Score)
				}
			}
			results := engine.Select(ranked)
			if len(results) == 0 {
				fmt.Fprintln(out, color.YellowString("no matches"))
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%s %s\n", color.GreenString("%d.", i+1), r)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&scores, "scores", false, "print per-topic relevance scores")
	cmd.Flags().IntVar(&limits.MaxTopics, "max-topics", 0, "topics to select (0 = default)")
	cmd.Flags().IntVar(&limits.MaxMatchesPerTopic, "max-matches", 0, "fields per topic (0 = default)")
	cmd.Flags().IntVar(&limits.MaxResults, "max-results", 0, "snippets to print (0 = default)")
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse the knowledge base and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(cmd.Context(), opts.kbPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			warnings := doc.Validate()
			for _, w := range warnings {
				fmt.Fprintf(out, "%s %s\n", color.YellowString("warning:"), w)
			}
			fmt.Fprintf(out, "%s %d topics, %d warnings\n", color.GreenString("ok:"), doc.Len(), len(warnings))
			return nil
		},
	}
}

func newTopicsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List topics in document order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(cmd.Context(), opts.kbPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range doc.Topics() {
				if t.Searchable() {
					fmt.Fprintln(out, t.Name)
					continue
				}
				fmt.Fprintf(out, "%s %s\n", t.Name, color.HiBlackString("(not searchable)"))
			}
			return nil
		},
	}
}

// newEngine mirrors the server's engine when a config is given.
// Non-zero flag limits win over the config.
func newEngine(kc *config.KnowledgeConfig, flags domkb.Limits) *domkb.Engine {
	if kc == nil {
		return domkb.NewEngine(domkb.DefaultThesaurus(), domkb.WithLimits(flags))
	}
	th := domkb.DefaultThesaurus()
	if len(kc.Thesaurus) > 0 {
		th = domkb.ThesaurusFromMap(kc.Thesaurus)
	}
	return domkb.NewEngine(th,
		domkb.WithLimits(domkb.Limits{
			MaxTopics:          kc.MaxTopics,
			MaxMatchesPerTopic: kc.MaxMatchesPerTopic,
			MaxResults:         kc.MaxResults,
		}),
		domkb.WithLimits(flags),
	)
}

func loadKnowledgeConfig(path string) (config.KnowledgeConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return config.KnowledgeConfig{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return config.KnowledgeConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.Knowledge, nil
}

func loadDocument(ctx context.Context, path string) (domkb.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	src := kbrepo.NewFileSource(path)
	data, err := src.Read(ctx)
	if err != nil {
		return domkb.Document{}, err
	}
	doc, err := domkb.Parse(data, src.Format())
	if err != nil {
		return domkb.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
