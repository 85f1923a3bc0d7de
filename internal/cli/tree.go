package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"drawing-viewer/internal/drawing"
)

func newTreeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the drawing tree grouped by discipline",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), o.cfg, o.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.viewer.LoadTree(cmd.Context()); err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), s.viewer.Tree())
			return nil
		},
	}
	return cmd
}

func printTree(w io.Writer, tree drawing.Tree) {
	for _, section := range tree {
		fmt.Fprintf(w, "%s (%d)\n", section.Discipline, len(section.Nodes))
		for _, n := range section.Nodes {
			latest := "-"
			if v := n.LatestVersion(); v != "" {
				latest = v
			}
			fmt.Fprintf(w, "  %-32s latest=%-8s revisions=%d\n", n.Label(), latest, n.RevisionCount)
		}
	}
}
