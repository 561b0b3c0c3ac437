package reports

import (
	"fmt"
	"io"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/xuri/excelize/v2"
)

const snapshotSheet = "Snapshots"

var snapshotHeadings = []string{
	"Date", "Currency", "Liquidity", "Market Investments", "Crypto Investments",
	"Retirement Investments", "Real Estate Investments", "Liabilities", "Net Worth",
}

func snapshotCellValues(s *models.WealthSnapshot) []interface{} {
	return []interface{}{
		s.Date.Format(utils.DateLayout),
		s.Currency,
		s.LiquidityTotal.InexactFloat64(),
		s.MarketInvestmentsTotal.InexactFloat64(),
		s.CryptoInvestmentsTotal.InexactFloat64(),
		s.RetirementInvestmentsTotal.InexactFloat64(),
		s.RealEstateInvestmentsTotal.InexactFloat64(),
		s.LiabilitiesTotal.InexactFloat64(),
		s.NetWorth.InexactFloat64(),
	}
}

// BuildSnapshotWorkbook lays the snapshot history out as one row per day.
func BuildSnapshotWorkbook(snapshots []*models.WealthSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", snapshotSheet); err != nil {
		return nil, err
	}

	for i, h := range snapshotHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(snapshotSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, s := range snapshots {
		for colIdx, value := range snapshotCellValues(s) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(snapshotSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func WriteSnapshotWorkbook(w io.Writer, snapshots []*models.WealthSnapshot) error {
	f, err := BuildSnapshotWorkbook(snapshots)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write snapshot workbook: %w", err)
	}
	return nil
}
