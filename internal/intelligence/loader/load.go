package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// Load reads a data file into a Table, dispatching on extension.
// Supported formats: .csv, .xlsx/.xls, .parquet, .json.
func Load(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xls":
		return loadExcel(path)
	case ".parquet":
		return loadParquet(path)
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported data file extension %q", ext)
	}
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows; missing trailing cells read as empty in Table.Column

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

func loadExcel(path string) (*Table, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if len(wb.Sheets) == 0 {
		return &Table{}, nil
	}
	sheet := wb.Sheets[0]
	if len(sheet.Rows) == 0 {
		return &Table{}, nil
	}

	header := sheet.Rows[0]
	cols := make([]string, len(header.Cells))
	for i, c := range header.Cells {
		cols[i] = c.String()
	}

	var rows [][]string
	for _, r := range sheet.Rows[1:] {
		row := make([]string, len(cols))
		for i := range cols {
			if i < len(r.Cells) {
				row[i] = r.Cells[i].String()
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: cols, Rows: rows}, nil
}

func loadJSON(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parsing json %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	colSet := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			colSet[k] = true
		}
	}
	cols := make([]string, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := rec[c]; ok && v != nil {
				row[i] = fmt.Sprintf("%v", v)
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: cols, Rows: rows}, nil
}

// loadParquet reads a flat parquet file column by column using the
// schema handler's declared paths, then transposes into row-major form.
func loadParquet(path string) (*Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, 4)
	if err != nil {
		return nil, fmt.Errorf("reading parquet schema in %s: %w", path, err)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())

	var cols []string
	var paths []string
	for _, el := range pr.SchemaHandler.SchemaElements {
		if el.GetNumChildren() > 0 {
			continue // group node, not a leaf column
		}
		cols = append(cols, el.GetName())
	}
	paths = pr.SchemaHandler.ValueColumns

	colValues := make(map[string][]string, len(cols))
	for i, name := range cols {
		path := ""
		if i < len(paths) {
			path = paths[i]
		}
		values, _, _, err := pr.ReadColumnByPath(path, numRows)
		if err != nil {
			return nil, fmt.Errorf("reading column %s: %w", name, err)
		}
		strs := make([]string, len(values))
		for j, v := range values {
			strs[j] = stringifyParquetValue(v)
		}
		colValues[name] = strs
	}

	rows := make([][]string, numRows)
	for i := range rows {
		row := make([]string, len(cols))
		for j, name := range cols {
			if i < len(colValues[name]) {
				row[j] = colValues[name][i]
			}
		}
		rows[i] = row
	}

	return &Table{Columns: cols, Rows: rows}, nil
}

func stringifyParquetValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}
