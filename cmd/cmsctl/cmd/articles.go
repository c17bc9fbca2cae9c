package cmd

import (
	"fmt"

	"github.com/eshaffer321/cmsclient-go/pkg/cms"
	"github.com/spf13/cobra"
)

var listFlags cms.ListParams

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Browse articles",
}

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := client.Articles.List(cmd.Context(), &listFlags)
		if !resp.Success || resp.Data == nil {
			return apiError(resp)
		}
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), resp.Data)
		}

		page := resp.Data
		if len(page.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No articles found.")
			return nil
		}

		rows := make([][]string, len(page.Items))
		for i, a := range page.Items {
			rows[i] = []string{a.ID, a.Title, a.Status, a.UpdatedAt.Format("2006-01-02")}
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "STATUS", "UPDATED"}, rows)
		fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d total)\n", page.Page, page.Pages, page.Total)
		return nil
	},
}

var articlesGetCmd = &cobra.Command{
	Use:   "get [article-id]",
	Short: "Show an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := client.Articles.Get(cmd.Context(), args[0])
		if !resp.Success || resp.Data == nil {
			return apiError(resp)
		}
		return printJSON(cmd.OutOrStdout(), resp.Data)
	},
}

func addListFlags(cmd *cobra.Command, p *cms.ListParams) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&p.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&p.CategoryID, "category", "", "Filter by category ID")
	cmd.Flags().StringVar(&p.AuthorID, "author", "", "Filter by author ID")
	cmd.Flags().StringVar(&p.Search, "search", "", "Full-text filter")
	cmd.Flags().StringVar(&p.SortBy, "sort-by", "", "Sort field")
	cmd.Flags().StringVar(&p.SortOrder, "sort-order", "", "asc or desc")
}

func init() {
	addListFlags(articlesListCmd, &listFlags)

	articlesCmd.AddCommand(articlesListCmd)
	articlesCmd.AddCommand(articlesGetCmd)
	rootCmd.AddCommand(articlesCmd)
}
