// Package xlsx renders the obligation register an employer keeps for
// labor-inspection visits as a spreadsheet.
package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

const registerSheet = "Evidencija obaveza"

var registerHeader = []string{
	"Vrsta obaveze",
	"Opis",
	"Pravni osnov",
	"Rok",
	"Status",
	"Izvorna evidencija",
}

var obligationTypeLabels = map[domain.ObligationType]string{
	domain.TypeMedicalExam:          "Lekarski pregled",
	domain.TypeTraining:             "Obuka za bezbedan rad",
	domain.TypeEquipmentInspection:  "Pregled opreme za rad",
	domain.TypeElectricalInspection: "Pregled električnih instalacija",
	domain.TypeEnvironmentTest:      "Ispitivanje uslova radne okoline",
}

var obligationStatusLabels = map[domain.ObligationStatus]string{
	domain.ObligationActive:    "Aktivan",
	domain.ObligationCompleted: "Završen",
	domain.ObligationExpired:   "Istekao",
}

// ObligationRegister writes one company's obligations as an xlsx
// workbook and returns the serialized bytes.
func ObligationRegister(obligations []domain.LegalObligation) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range registerHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(registerSheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(registerSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header style: %w", err)
		}
	}

	widths := []float64{28, 45, 30, 14, 12, 28}
	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("resolve column name: %w", err)
		}
		if err := f.SetColWidth(registerSheet, name, name, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, ob := range obligations {
		row := i + 2
		values := []any{
			typeLabel(ob.Type),
			ob.Description,
			ob.LegalBasis,
			ob.DueAt.Format("02.01.2006"),
			statusLabel(ob.Status),
			fmt.Sprintf("%s/%s", ob.SourceTable, ob.SourceRecordID),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("convert coordinates: %w", err)
			}
			if err := f.SetCellValue(registerSheet, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func typeLabel(t domain.ObligationType) string {
	if label, ok := obligationTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func statusLabel(s domain.ObligationStatus) string {
	if label, ok := obligationStatusLabels[s]; ok {
		return label
	}
	return string(s)
}
