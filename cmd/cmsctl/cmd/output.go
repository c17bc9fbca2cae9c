package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/cmsclient-go/pkg/cms"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printTable prints data in a simple table format
func printTable(w io.Writer, headers []string, rows [][]string) {
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	for i, h := range headers {
		fmt.Fprintf(w, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(w)

	// Print separator
	for i := range headers {
		fmt.Fprintf(w, "%s  ", strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)

	// Print rows
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(w, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w)
	}
}

// apiError turns a failed response into a command error
func apiError[T any](resp *cms.Response[T]) error {
	if resp.Success {
		return fmt.Errorf("empty response (%d)", resp.Status)
	}
	if resp.Status == 0 {
		return fmt.Errorf("request failed: %s", resp.Error)
	}
	return fmt.Errorf("API error (%d): %s", resp.Status, resp.Error)
}

func revisionRows(revisions []cms.Revision) [][]string {
	rows := make([][]string, len(revisions))
	for i, r := range revisions {
		submitted := ""
		if r.SubmittedAt != nil {
			submitted = r.SubmittedAt.Format("2006-01-02 15:04")
		}
		rows[i] = []string{r.ID, r.ArticleID, r.Title, r.Status, submitted}
	}
	return rows
}
