package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajack/xlmedia"
)

func newValidateCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate MANIFEST",
		Short: "Check a placement manifest without writing a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := workbookFromManifest(state, args[0])
			if err != nil {
				return err
			}
			issues := wb.Validate()

			if state.jsonOutput {
				out := make([]issueJSON, len(issues))
				for i, is := range issues {
					out[i] = newIssueJSON(is)
				}
				if err := writeJSON(cmd.OutOrStdout(), out, state.cfg.Pretty); err != nil {
					return err
				}
			} else {
				for _, is := range issues {
					if err := writePlain(cmd.OutOrStdout(), "%s\n", is); err != nil {
						return err
					}
				}
				if len(issues) == 0 {
					if err := writePlain(cmd.OutOrStdout(), "ok\n"); err != nil {
						return err
					}
				}
			}

			if xlmedia.HasErrors(issues) {
				return fmt.Errorf("%s: validation failed", args[0])
			}
			return nil
		},
	}
}

type issueJSON struct {
	Severity     string `json:"severity"`
	Sheet        string `json:"sheet"`
	SheetImageID string `json:"sheetImageId"`
	Message      string `json:"message"`
}

func newIssueJSON(is xlmedia.ValidationIssue) issueJSON {
	sev := "error"
	if is.Severity == xlmedia.SeverityWarning {
		sev = "warning"
	}
	return issueJSON{Severity: sev, Sheet: is.Sheet, SheetImageID: is.SheetImageID, Message: is.Message}
}
