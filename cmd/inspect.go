package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/arixlabs/treemorph/internal/layout"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <share-url|token>",
	Short: "List the photos in a shared layout",
	Args:  cobra.ExactArgs(1),
	RunE:  Inspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func Inspect(cmd *cobra.Command, args []string) error {
	ps, err := layout.Parse(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTREE\tSCATTER\tURL")
	for _, p := range ps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, vec(p.TreePos), vec(p.ScatterPos), shorten(p.URL, 40))
	}
	return w.Flush()
}

func vec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
