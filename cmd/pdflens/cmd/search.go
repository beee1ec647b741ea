package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query> [path]",
	Short: "Print matching pages without the UI",
	Long: `Search the PDFs under path (default: the current directory) and print
one line per match as "file p<N>: snippet".

Examples:
  pdflens search fourier ~/papers
  pdflens search -e 'lemma [0-9]+' thesis.pdf`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := stack.Search(cmd.Context(), args[0], searchRoot(args), regex)
		if err != nil {
			return err
		}

		for _, ex := range res.Exclusions {
			fmt.Fprintf(os.Stderr, "skipped %s\n", ex)
		}

		if res.Index.IsEmpty() {
			fmt.Println("No matches found")
			return nil
		}

		idx := res.Index
		for d := 0; d < idx.Len(); d++ {
			for _, m := range idx.Entry(d).Matches {
				fmt.Printf("%s p%d: %s\n", m.Path, m.Page, m.Snippet)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
