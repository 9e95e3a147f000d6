package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"

	perr "storeuptime/internal/platform/errors"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet of an xlsx export
const SheetName = "report"

// RenderXLSX converts the csv artifact at path into a workbook.
// Every column but the first is written as a number
func RenderXLSX(ctx context.Context, path string) ([]byte, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "open %s", path)
	}
	defer src.Close()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "name sheet")
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "header style")
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "stream writer")
	}
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "freeze header")
	}
	if err := sw.SetColWidth(1, 1, 40); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "column width")
	}

	r := csv.NewReader(src)
	for row := 1; ; row++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeParse, "read %s line %d", path, row)
		}
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, perr.Wrap(err, perr.ErrorCodeTimeout, "render xlsx")
			}
		}

		cells := make([]any, len(rec))
		for i, v := range rec {
			switch {
			case row == 1:
				cells[i] = excelize.Cell{StyleID: header, Value: v}
			case i == 0:
				cells[i] = v
			default:
				n, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, perr.Wrapf(err, perr.ErrorCodeParse, "%s line %d column %d", path, row, i+1)
				}
				cells[i] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "cell name")
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "write row %d", row)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "flush workbook")
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "write workbook")
	}
	return buf.Bytes(), nil
}
