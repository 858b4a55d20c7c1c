package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"social_post_generator/generator"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the available post styles",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), renderStylesTable())
	},
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}

func renderStylesTable() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"", "ID", "Название", "Описание"})

	defaultID := generator.DefaultStyle().ID
	for _, s := range generator.AvailableStyles() {
		id := s.ID
		if id == defaultID {
			id += " (default)"
		}
		tw.AppendRow(table.Row{s.Emoji, id, s.Name, s.Description})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
