package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/dnsx"
	"github.com/sells-group/outreach-cli/internal/email"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/firecrawl"
	"github.com/sells-group/outreach-cli/pkg/github"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <company> <name>...",
	Short: "Resolve email addresses for named people at a company",
	Long:  "Skips the people search and runs only email resolution for the given names.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		website, _ := cmd.Flags().GetString("website")
		title, _ := cmd.Flags().GetString("title")

		company := args[0]
		var contacts []model.Contact
		for _, name := range args[1:] {
			contacts = append(contacts, model.Contact{
				Candidate: model.Candidate{Name: name, Title: title},
				Company:   company,
			})
		}

		var firecrawlClient firecrawl.Client
		if cfg.Firecrawl.Key != "" {
			firecrawlClient = firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		}
		githubClient := github.NewClient(cfg.GitHub.Token, github.WithBaseURL(cfg.GitHub.BaseURL))

		domains := email.NewDomainResolver(firecrawlClient, email.NewDomainCache())
		resolver := email.NewResolver(firecrawlClient, githubClient, dnsx.NewResolver(), domains)

		resolved := resolver.ResolveEmails(ctx, contacts, company, website)
		if len(resolved) == 0 {
			return eris.New("no emails resolved")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	},
}

func init() {
	resolveCmd.Flags().String("website", "", "company website (skips domain discovery)")
	resolveCmd.Flags().String("title", "", "job title applied to every name")
	rootCmd.AddCommand(resolveCmd)
}
