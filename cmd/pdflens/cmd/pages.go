package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pageFlag int

var pagesCmd = &cobra.Command{
	Use:   "pages <file>",
	Short: "Show the page count and per-page text of a PDF",
	Long: `Extract a PDF the way a search session does and print its page count
with the text size of each page. With --page, print that page's text.

Examples:
  pdflens pages paper.pdf
  pdflens pages paper.pdf --page 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := stack.ReadPages(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if pageFlag > 0 {
			info, err := res.Page(pageFlag)
			if err != nil {
				return err
			}
			fmt.Print(info.Text)
			return nil
		}

		fmt.Printf("%s: %d pages (fingerprint %s)\n", res.Document.Path, res.Document.PageCount, res.Document.Fingerprint.Short())
		for _, p := range res.Pages {
			fmt.Printf("  p%-4d %6d chars\n", p.Page, p.Runes)
		}
		return nil
	},
}

func init() {
	pagesCmd.Flags().IntVarP(&pageFlag, "page", "p", 0, "print the text of this page")
	rootCmd.AddCommand(pagesCmd)
}
