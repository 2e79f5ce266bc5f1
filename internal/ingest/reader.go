// Package ingest reads faculty biography workbooks and drives the
// extraction pipeline, tracking each upload through the document state
// machine.
package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/facultykb/facultygraph/internal/normalize"
)

// Column headers are matched by substring so minor workbook variations
// still line up.
var (
	nameHeaders  = []string{"导师姓名", "姓名"}
	introHeaders = []string{"个人介绍", "详细介绍", "简介", "基本情况", "详细内容", "介绍"}
)

// Row is one biography from a workbook. Index is the 1-based spreadsheet
// row, so errors can point at the sheet directly.
type Row struct {
	Index int
	Name  string
	Intro string
	Photo []byte
}

// FullText is the composite text handed to the extractor, carrying both
// the name and the biography so the subject is always in view.
func (r Row) FullText() string {
	return fmt.Sprintf("导师姓名：%s；个人介绍：%s", r.Name, r.Intro)
}

// ReadWorkbook parses the first sheet of an Excel workbook into rows.
// Rows without a usable name are dropped. Photos are picked up from
// images anchored to the first column of each row.
func ReadWorkbook(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(cells) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	nameCol := findColumn(cells[0], nameHeaders)
	if nameCol < 0 {
		return nil, fmt.Errorf("sheet %q has no name column", sheet)
	}
	introCol := findColumn(cells[0], introHeaders)
	if introCol < 0 {
		return nil, fmt.Errorf("sheet %q has no biography column", sheet)
	}

	var rows []Row
	for i, record := range cells[1:] {
		rowNum := i + 2 // the header occupies row 1
		name := normalize.CleanName(cellAt(record, nameCol))
		if name == "" {
			continue
		}
		row := Row{
			Index: rowNum,
			Name:  name,
			Intro: strings.TrimSpace(cellAt(record, introCol)),
		}
		if photo := rowPhoto(f, sheet, rowNum); photo != nil {
			row.Photo = photo
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func findColumn(header []string, keys []string) int {
	for _, key := range keys {
		for i, cell := range header {
			if strings.Contains(strings.TrimSpace(cell), key) {
				return i
			}
		}
	}
	return -1
}

func cellAt(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

func rowPhoto(f *excelize.File, sheet string, rowNum int) []byte {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return nil
	}
	pics, err := f.GetPictures(sheet, cell)
	if err != nil || len(pics) == 0 {
		return nil
	}
	return pics[0].File
}
