package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/javajack/xlmedia"
)

func newPlaceCmd(state *app) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "place MANIFEST",
		Short: "Build an xlsx file from a placement manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				return errors.New("--output is required")
			}
			wb, err := workbookFromManifest(state, args[0])
			if err != nil {
				return err
			}
			issues := wb.Validate()
			for _, is := range issues {
				slog.Warn(is.String())
			}
			if xlmedia.HasErrors(issues) {
				return fmt.Errorf("manifest %s has %d validation issue(s)", args[0], len(issues))
			}
			if err := writeWorkbook(wb, outputPath, os.FileMode(state.cfg.OutputPerm)); err != nil {
				return err
			}
			slog.Info("workbook written", "path", outputPath, "images", wb.Registry().Len())

			if state.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), placeResult{
					Output:     outputPath,
					Images:     wb.Registry().Len(),
					Worksheets: len(wb.Worksheets()),
				}, state.cfg.Pretty)
			}
			return writePlain(cmd.OutOrStdout(), "wrote %s\n", outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output xlsx path")
	return cmd
}

type placeResult struct {
	Output     string `json:"output"`
	Images     int    `json:"images"`
	Worksheets int    `json:"worksheets"`
}

func workbookFromManifest(state *app, path string) (*xlmedia.Workbook, error) {
	m, err := loadManifest(path)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(m, filepath.Dir(path), state.workbookOptions()...)
}

func writeWorkbook(wb *xlmedia.Workbook, path string, perm os.FileMode) (err error) {
	x := xlmedia.NewExcelizeExporter(excelize.NewFile())
	defer func() {
		if cerr := x.Close(); err == nil {
			err = cerr
		}
	}()
	if err := x.Export(wb); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if err := writeAndClose(f, x.Write); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeAndClose(f *os.File, write func(io.Writer) error) error {
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
