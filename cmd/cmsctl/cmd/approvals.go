package cmd

import (
	"fmt"

	"github.com/eshaffer321/cmsclient-go/pkg/cms"
	"github.com/spf13/cobra"
)

var (
	pendingFlags    cms.ListParams
	approveComment  string
	rejectionReason string
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Work through the approval queue",
}

var approvalsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List revisions awaiting review",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := client.Approvals.Pending(cmd.Context(), &pendingFlags)
		if !resp.Success || resp.Data == nil {
			return apiError(resp)
		}
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), resp.Data)
		}

		if len(resp.Data.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing awaiting review.")
			return nil
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "ARTICLE", "TITLE", "STATUS", "SUBMITTED"}, revisionRows(resp.Data.Items))
		return nil
	},
}

var approvalsApproveCmd = &cobra.Command{
	Use:   "approve [revision-id]",
	Short: "Approve and publish a revision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := client.Approvals.Approve(cmd.Context(), args[0], approveComment)
		if !resp.Success || resp.Data == nil {
			return apiError(resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Revision %s %s\n", resp.Data.ID, resp.Data.Status)
		return nil
	},
}

var approvalsRejectCmd = &cobra.Command{
	Use:   "reject [revision-id]",
	Short: "Reject a revision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rejectionReason == "" {
			return fmt.Errorf("--reason is required")
		}
		resp := client.Approvals.Reject(cmd.Context(), args[0], rejectionReason)
		if !resp.Success || resp.Data == nil {
			return apiError(resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Revision %s %s\n", resp.Data.ID, resp.Data.Status)
		return nil
	},
}

func init() {
	addListFlags(approvalsPendingCmd, &pendingFlags)
	approvalsApproveCmd.Flags().StringVar(&approveComment, "comment", "", "Review comment")
	approvalsRejectCmd.Flags().StringVarP(&rejectionReason, "reason", "r", "", "Why the revision was rejected")

	approvalsCmd.AddCommand(approvalsPendingCmd)
	approvalsCmd.AddCommand(approvalsApproveCmd)
	approvalsCmd.AddCommand(approvalsRejectCmd)
	rootCmd.AddCommand(approvalsCmd)
}
