package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
)

var findCmd = &cobra.Command{
	Use:   "find <company>",
	Short: "Find people to contact at a company",
	Long:  "Runs the full pipeline: searches for people, filters and scores them, selects a role-diverse shortlist, and resolves email addresses.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		role, _ := cmd.Flags().GetString("role")
		website, _ := cmd.Flags().GetString("website")
		jobURL, _ := cmd.Flags().GetString("job-url")
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		req := model.SearchRequest{
			Company: args[0],
			Role:    role,
			Website: website,
			JobURL:  jobURL,
		}
		r, err := env.Store.CreateRun(ctx, req)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		if err := env.Orchestrator.Execute(ctx, r); err != nil {
			return eris.Wrapf(err, "run %s", r.ID)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}

		formatRunResult(r)
		return nil
	},
}

// formatRunResult prints the shortlist with resolved emails, one row per
// contact.
func formatRunResult(r *model.Run) {
	emailByName := make(map[string]model.ResolvedEmail, len(r.Emails))
	for _, re := range r.Emails {
		emailByName[re.Name] = re
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tSCORE\tEMAIL\tCONFIDENCE")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t-----\t----------")
	for _, c := range r.Contacts {
		re := emailByName[c.Name]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			c.Name, truncateText(c.Title, 40), c.Score, re.Email, re.Confidence)
	}
	_ = w.Flush()

	fmt.Printf("\nRun ID: %s\n", r.ID)
}

func truncateText(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func init() {
	findCmd.Flags().String("role", "software engineer", "role being applied for")
	findCmd.Flags().String("website", "", "company website (skips domain discovery)")
	findCmd.Flags().String("job-url", "", "job posting URL for targeting context")
	findCmd.Flags().Bool("json", false, "print the full run record as JSON")
	rootCmd.AddCommand(findCmd)
}
