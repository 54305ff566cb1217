package excel

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"jprofile/adapters/coercer"
	"jprofile/domain/dataset"
	"jprofile/domain/profiling"
	"jprofile/internal/errors"
)

// File types understood by DataReader
const (
	FileTypeXLSX = "xlsx"
	FileTypeCSV  = "csv"
	FileTypeTSV  = "tsv"
)

// rows between context checks while reading
const ctxCheckInterval = 1024

const utf8BOM = "\ufeff"

// DataReader handles reading Excel and CSV files into typed datasets
type DataReader struct {
	filePath string
	fileType string
	config   ReaderConfig
	coercer  *coercer.TypeCoercer
	logger   *slog.Logger
}

// NewDataReader creates a reader for filePath. The file type comes from the
// extension.
func NewDataReader(filePath string, config ReaderConfig, logger *slog.Logger) (*DataReader, error) {
	fileType, err := DetectFileType(filePath)
	if err != nil {
		return nil, err
	}
	return newReader(filePath, fileType, config, logger), nil
}

// NewStreamReader creates a reader for in-memory uploads of the given type
func NewStreamReader(name, fileType string, config ReaderConfig, logger *slog.Logger) (*DataReader, error) {
	switch fileType {
	case FileTypeXLSX, FileTypeCSV, FileTypeTSV:
	default:
		return nil, errors.UnsupportedFormat(fileType)
	}
	return newReader(name, fileType, config, logger), nil
}

func newReader(path, fileType string, config ReaderConfig, logger *slog.Logger) *DataReader {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Sheet == "" {
		config.Sheet = DefaultReaderConfig().Sheet
	}
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	if fileType == FileTypeTSV {
		config.Delimiter = '\t'
	}
	return &DataReader{
		filePath: path,
		fileType: fileType,
		config:   config,
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig),
		logger:   logger.With("component", "data_reader", "file_type", fileType),
	}
}

// DetectFileType maps a file extension to a supported file type
func DetectFileType(filePath string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, nil
	case ".csv", ".txt":
		return FileTypeCSV, nil
	case ".tsv", ".tab":
		return FileTypeTSV, nil
	default:
		return "", errors.UnsupportedFormat(ext)
	}
}

// FileType returns the detected file type
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadDataset opens the reader's file and loads it as a typed dataset
func (r *DataReader) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	r.logger.Info("reading dataset", "path", r.filePath)

	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
		}
		return nil, errors.Wrapf(err, "failed to open %s", r.filePath)
	}
	defer file.Close()

	return r.Read(ctx, file)
}

// Read loads a dataset from src, which must hold data of the reader's file type
func (r *DataReader) Read(ctx context.Context, src io.Reader) (*dataset.Dataset, error) {
	var (
		table *RawTable
		err   error
	)

	switch r.fileType {
	case FileTypeXLSX:
		table, err = r.readExcelData(ctx, src)
	default:
		table, err = r.readCSVData(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	typeStart := time.Now()
	ds := table.ToDataset(datasetName(r.filePath), r.coercer)
	if err := ds.Validate(); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "invalid dataset")
	}

	r.logger.Info("dataset loaded",
		"columns", len(ds.Columns),
		"rows", ds.RowCount(),
		"typing_ms", float64(time.Since(typeStart).Nanoseconds())/1e6)

	return ds, nil
}

// ReadCSV loads comma separated data from src. The dataset is named name.
func ReadCSV(ctx context.Context, src io.Reader, name string, config ReaderConfig, logger *slog.Logger) (*dataset.Dataset, error) {
	r := newReader(name, FileTypeCSV, config, logger)
	return r.Read(ctx, src)
}

// readCSVData reads CSV data into a raw table
func (r *DataReader) readCSVData(ctx context.Context, src io.Reader) (*RawTable, error) {
	br := bufio.NewReader(src)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && string(lead) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = r.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	readStart := time.Now()
	var records [][]string
	for {
		if len(records)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to read CSV data"))
		}
		records = append(records, record)
	}

	r.logger.Debug("CSV data read",
		"rows", len(records),
		"read_ms", float64(time.Since(readStart).Nanoseconds())/1e6)

	table, err := newRawTable(records)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return table, nil
}

// readExcelData reads the configured sheet into a raw table, recording native
// cell type hints per column
func (r *DataReader) readExcelData(ctx context.Context, src io.Reader) (*RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to open Excel data"))
	}
	defer f.Close()
	r.logger.Debug("Excel data opened", "open_ms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.config.Sheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NotFound(fmt.Sprintf("sheet %q", sheet))
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", sheet)
	}
	r.logger.Debug("sheet read",
		"sheet", sheet,
		"rows", len(rows),
		"read_ms", float64(time.Since(readStart).Nanoseconds())/1e6)

	table, err := newRawTable(rows)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	hints, err := r.cellTypeHints(ctx, f, sheet, table)
	if err != nil {
		return nil, err
	}
	table.Hints = hints

	return table, nil
}

// cellTypeHints inspects native cell types. A column whose present cells are
// all booleans is boolean; one holding any text cell is a string column.
func (r *DataReader) cellTypeHints(ctx context.Context, f *excelize.File, sheet string, table *RawTable) (map[int]profiling.StorageKind, error) {
	hints := make(map[int]profiling.StorageKind)

	for colIdx := range table.Headers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		colLetter := columnIndexToLetter(colIdx)
		boolCount, stringCount, typedCount := 0, 0, 0

		for rowIdx, row := range table.Rows {
			if r.coercer.IsMissing(row[colIdx]) {
				continue
			}
			cellRef := fmt.Sprintf("%s%d", colLetter, rowIdx+2) // row 1 is the header
			cellType, err := f.GetCellType(sheet, cellRef)
			if err != nil {
				continue
			}
			switch cellType {
			case excelize.CellTypeBool:
				boolCount++
			case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
				stringCount++
			}
			typedCount++
		}

		switch {
		case typedCount == 0:
		case stringCount > 0:
			hints[colIdx] = profiling.KindString
		case boolCount == typedCount:
			hints[colIdx] = profiling.KindBoolean
		}
	}

	return hints, nil
}

// columnIndexToLetter converts a zero-based column index to Excel letters
func columnIndexToLetter(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
	}
	return result
}

func datasetName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return path
	}
	return base
}
