package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/javajack/xlmedia"
)

func newInspectCmd(state *app) *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the images anchored in an xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := excelize.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			wb, err := xlmedia.ImportExcelize(f, state.workbookOptions()...)
			if err != nil {
				return err
			}
			slog.Debug("workbook imported", "path", args[0], "images", wb.Registry().Len())

			if where != "" {
				return inspectWhere(cmd, state, wb, where)
			}
			if state.jsonOutput {
				m, err := wb.Model()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), m, state.cfg.Pretty)
			}
			return writePlain(cmd.OutOrStdout(), "%s", wb.Describe())
		},
	}

	cmd.Flags().StringVar(&where, "where", "", `only list placements matching an expression, e.g. 'editAs == "oneCell" && tl.col < 3'`)
	return cmd
}

type inspectMatch struct {
	Sheet string        `json:"sheet"`
	Model xlmedia.Model `json:"placement"`
}

func inspectWhere(cmd *cobra.Command, state *app, wb *xlmedia.Workbook, where string) error {
	matches := []inspectMatch{}
	for _, ws := range wb.Worksheets() {
		found, err := ws.Query(where)
		if err != nil {
			return err
		}
		for i := range found {
			m, err := xlmedia.ToModel(&found[i])
			if err != nil {
				return err
			}
			matches = append(matches, inspectMatch{Sheet: ws.Name(), Model: m})
		}
	}
	if state.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), matches, state.cfg.Pretty)
	}
	for _, m := range matches {
		r := m.Model.Range
		if err := writePlain(cmd.OutOrStdout(), "%s\t%s\t#%d\t%s\t%g,%g\n",
			m.Sheet, m.Model.SheetImageID, m.Model.ImageID, r.EditAs, r.TL.Col, r.TL.Row); err != nil {
			return err
		}
	}
	return nil
}
