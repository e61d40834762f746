package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	// TemplateFilename is the suggested download name for WriteTemplate.
	TemplateFilename = "players_template.xlsx"
	templateSheet    = "Players"
)

// WriteTemplate writes an example workbook with the canonical headers and
// one sample player.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A1", &[]any{"Name", "Skill", "Base Price"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A2", &[]any{"Player Name", "Batsman", 2000000}); err != nil {
		return fmt.Errorf("writing example row: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
