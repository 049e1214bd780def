package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/han/internal/han"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the components and parameter counts of a model",
		Args:  cobra.NoArgs,
		RunE:  InfoHandler,
	}
}

// InfoHandler builds the configured model and prints a parameter table.
func InfoHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := modelConfig(cmd)
	if err != nil {
		return err
	}

	model, err := han.New(cfg, newBackend())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "groups %d, blocks %d, feats %d, scale x%d\n\n",
		cfg.NumResGroups, cfg.NumResBlocks, cfg.NumFeats, cfg.Scale())

	total := model.NumParameters()
	var data [][]string
	for _, c := range model.Summary() {
		data = append(data, []string{c.Name, strconv.Itoa(c.Params), share(c.Params, total)})
	}
	data = append(data, []string{"TOTAL", strconv.Itoa(total), share(total, total)})

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"COMPONENT", "PARAMETERS", "SHARE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func share(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}
