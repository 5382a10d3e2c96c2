package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/meenmo/bondpricer/logger"
	"github.com/meenmo/bondpricer/sweep"
)

// ParquetSink writes sweep rows to a single local Parquet file. The file is
// finalized by Close.
type ParquetSink struct {
	mu   sync.Mutex
	path string
	fw   source.ParquetFile
	pw   *writer.ParquetWriter
	rows int
}

func compressionCodec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case "snappy", "":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported parquet compression %q", name)
	}
}

func NewParquetSink(path, compression string) (*ParquetSink, error) {
	codec, err := compressionCodec(compression)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create parquet dir: %w", err)
		}
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(Row), 1)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = codec

	return &ParquetSink{path: path, fw: fw, pw: pw}, nil
}

func (s *ParquetSink) Write(ctx context.Context, report *sweep.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range Rows(report) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.pw.Write(row); err != nil {
			return fmt.Errorf("failed to write parquet record: %w", err)
		}
		s.rows++
	}

	logger.GetLogger().WithComponent("export").WithFields(logger.Fields{
		"sink":   "parquet",
		"path":   s.path,
		"run_id": report.RunID,
		"rows":   len(report.Points),
	}).Info("wrote sweep rows")
	return nil
}

func (s *ParquetSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pw.WriteStop(); err != nil {
		s.fw.Close()
		return fmt.Errorf("finalize parquet file: %w", err)
	}
	return s.fw.Close()
}
