package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/normalisers/html"
)

var (
	cleanFlatten  bool
	cleanNoLinks  bool
	cleanImageAlt bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file.html|-]",
	Short: "Convert an HTML document to plain text",
	Long: `Reads an HTML document from a file, or from stdin when the argument is
"-" or missing, and prints its plain text.

Each paragraph, heading, list item and div becomes one line. List items
are prefixed with a bullet, links keep their target as "text (href)" and
repeated lines are dropped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanFlatten, "flatten", false, "print all text as one line without structure")
	cleanCmd.Flags().BoolVar(&cleanNoLinks, "no-links", false, "drop link targets")
	cleanCmd.Flags().BoolVar(&cleanImageAlt, "image-alt", false, `replace images with "[Image: alt]"`)
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var text string
	if cleanFlatten {
		text = html.Flatten(string(data))
	} else {
		cleaner := html.NewCleaner(html.WithLinks(!cleanNoLinks), html.WithImageAlt(cleanImageAlt))
		text = cleaner.Clean(string(data))
	}

	if text != "" {
		cmd.Println(text)
	}
	return nil
}
