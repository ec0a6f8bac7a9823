package writer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// parquetRow mirrors the fixed snapshot column order. The open and oi_change
// columns are OPTIONAL so the unknown sentinel survives the round trip as an
// absent value rather than a fake zero.
type parquetRow struct {
	Symbol      string   `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date        string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Time        string   `parquet:"name=time, type=BYTE_ARRAY, convertedtype=UTF8"`
	FuturePrice float64  `parquet:"name=future_price, type=DOUBLE"`
	ExpiryDate  string   `parquet:"name=expiry_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Strike      float64  `parquet:"name=strike, type=DOUBLE"`
	OptionType  string   `parquet:"name=option_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Close       float64  `parquet:"name=close, type=DOUBLE"`
	OI          int64    `parquet:"name=oi, type=INT64"`
	Open        *float64 `parquet:"name=open, type=DOUBLE, repetitiontype=OPTIONAL"`
	OIChange    *int64   `parquet:"name=oi_change, type=INT64, repetitiontype=OPTIONAL"`
}

func toParquetRow(r models.SnapshotRow) parquetRow {
	observed := r.ObservedAt.UTC()
	return parquetRow{
		Symbol:      r.ContractID,
		Date:        observed.Format(dateLayout),
		Time:        observed.Format(timeLayout),
		FuturePrice: r.UnderlyingSpot,
		ExpiryDate:  models.DateOnly(r.Expiry).Format(dateLayout),
		Strike:      r.Strike,
		OptionType:  string(r.Kind),
		Close:       r.LastPrice,
		OI:          r.OpenInterest,
		Open:        r.PreviousPrice,
		OIChange:    r.OpenInterestChange,
	}
}

func fromParquetRow(p parquetRow) models.SnapshotRow {
	observed, _ := time.ParseInLocation(dateLayout+" "+timeLayout, p.Date+" "+p.Time, time.UTC)
	expiry, _ := time.ParseInLocation(dateLayout, p.ExpiryDate, time.UTC)
	return models.SnapshotRow{
		ContractQuote: models.ContractQuote{
			ContractID:     p.Symbol,
			UnderlyingSpot: p.FuturePrice,
			Expiry:         expiry,
			Strike:         p.Strike,
			Kind:           models.OptionKind(p.OptionType),
			LastPrice:      p.Close,
			OpenInterest:   p.OI,
			ObservedAt:     observed,
		},
		PreviousPrice:      p.Open,
		OpenInterestChange: p.OIChange,
	}
}

// encodeRows serializes rows into an in-memory parquet file.
func encodeRows(rows []models.SnapshotRow, compression string) ([]byte, error) {
	fw := newMemoryFileWriter()

	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, r := range rows {
		if err := pw.Write(toParquetRow(r)); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet writing: %w", err)
	}

	return fw.Bytes(), nil
}

// decodeRows parses an in-memory parquet file back into snapshot rows.
func decodeRows(data []byte) ([]models.SnapshotRow, error) {
	fr := newMemoryFileReader(data)

	pr, err := reader.NewParquetReader(fr, new(parquetRow), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	records := make([]parquetRow, num)
	if err := pr.Read(&records); err != nil {
		return nil, fmt.Errorf("failed to read parquet records: %w", err)
	}

	rows := make([]models.SnapshotRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, fromParquetRow(rec))
	}
	return rows, nil
}

// memoryFileWriter implements the ParquetFile interface for in-memory writing
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	// Writing is strictly sequential; report the current end position.
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error) {
	return mfw.buffer.Read(b)
}

func (mfw *memoryFileWriter) Write(b []byte) (int, error) {
	return mfw.buffer.Write(b)
}

func (mfw *memoryFileWriter) Close() error {
	return nil
}

func (mfw *memoryFileWriter) Bytes() []byte {
	return mfw.buffer.Bytes()
}

// memoryFileReader implements the ParquetFile interface for reading a parquet
// file already held in memory.
type memoryFileReader struct {
	data []byte
	r    *bytes.Reader
}

func newMemoryFileReader(data []byte) *memoryFileReader {
	return &memoryFileReader{data: data, r: bytes.NewReader(data)}
}

func (mfr *memoryFileReader) Create(name string) (source.ParquetFile, error) {
	return nil, fmt.Errorf("memory file reader is read-only")
}

func (mfr *memoryFileReader) Open(name string) (source.ParquetFile, error) {
	return newMemoryFileReader(mfr.data), nil
}

func (mfr *memoryFileReader) Seek(offset int64, whence int) (int64, error) {
	return mfr.r.Seek(offset, whence)
}

func (mfr *memoryFileReader) Read(b []byte) (int, error) {
	return mfr.r.Read(b)
}

func (mfr *memoryFileReader) Write(b []byte) (int, error) {
	return 0, fmt.Errorf("memory file reader is read-only")
}

func (mfr *memoryFileReader) Close() error {
	return nil
}
