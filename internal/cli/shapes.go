package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rulemesh/rulemesh/pkg/shape"
)

// shapesCommand creates the shapes command listing the builtin primitives
// a scene can reference.
func (c *CLI) shapesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the builtin shapes",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := shape.DefaultRegistry()

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			rows := [][]string{}
			for _, id := range registry.IDs() {
				g, err := registry.Geometry(id)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					id,
					fmt.Sprintf("%d", len(g.Vertices)),
					fmt.Sprintf("%d", len(g.Faces)),
				})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Shape", "Vertices", "Faces").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					if col == 0 {
						return StyleHighlight
					}
					return StyleValue
				})

			fmt.Println(t.Render())
			return nil
		},
	}
}
