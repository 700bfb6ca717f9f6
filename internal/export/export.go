package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-sdk/internal/events"
	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ErrRecorderClosed is returned by writes after Close.
var ErrRecorderClosed = errors.New("trade recorder is closed")

// Record is one exported program event row.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Slot      uint64    `json:"slot"`
	Signature string    `json:"signature"`
	Kind      string    `json:"kind"`
	Mint      string    `json:"mint"`
	User      string    `json:"user"`
	Side      string    `json:"side,omitempty"`
	SolAmount string    `json:"sol_amount,omitempty"`
	Tokens    uint64    `json:"tokens,omitempty"`
	PriceSol  string    `json:"price_sol,omitempty"`
}

// CSVHeaders returns the header row for CSV export.
func CSVHeaders() []string {
	return []string{"timestamp", "slot", "signature", "kind", "mint", "user", "side", "sol_amount", "tokens", "price_sol"}
}

// ToCSV renders the record as a CSV row.
func (r Record) ToCSV() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatUint(r.Slot, 10),
		r.Signature,
		r.Kind,
		r.Mint,
		r.User,
		r.Side,
		r.SolAmount,
		strconv.FormatUint(r.Tokens, 10),
		r.PriceSol,
	}
}

var lamportsPerSol = decimal.NewFromInt(int64(pumpfun.LamportsPerSol))

// NewRecord flattens a program event into an export row.
func NewRecord(event *events.ProgramEvent) Record {
	r := Record{
		Timestamp: event.Timestamp(),
		Slot:      event.Slot,
		Signature: event.Signature.String(),
		Kind:      string(event.Payload.Kind()),
	}

	switch e := event.Payload.(type) {
	case *pumpfun.CreateEvent:
		r.Mint = e.Mint.String()
		r.User = e.Creator.String()
	case *pumpfun.TradeEvent:
		r.Mint = e.Mint.String()
		r.User = e.User.String()
		r.Timestamp = e.Time()
		r.Side = pumpfun.SideSell.String()
		if e.IsBuy {
			r.Side = pumpfun.SideBuy.String()
		}
		sol := decimal.NewFromBigInt(new(big.Int).SetUint64(e.SolAmount), 0)
		r.SolAmount = sol.Div(lamportsPerSol).String()
		r.Tokens = e.TokenAmount
		if e.TokenAmount > 0 {
			tokens := decimal.NewFromBigInt(new(big.Int).SetUint64(e.TokenAmount), -int32(pumpfun.DefaultDecimals))
			r.PriceSol = sol.Div(lamportsPerSol).Div(tokens).StringFixed(12)
		}
	case *pumpfun.CompleteEvent:
		r.Mint = e.Mint.String()
		r.User = e.User.String()
	case *pumpfun.SetParamsEvent:
		r.User = e.Authority.String()
	}
	return r
}

// TradeRecorder appends trade events to a file as they arrive on the bus.
type TradeRecorder struct {
	mu       sync.Mutex
	format   ExportFormat
	file     *os.File
	csv      *csv.Writer
	json     *json.Encoder
	ticker   *time.Ticker
	done     chan struct{}
	logger   *zap.Logger
	filePath string
	closed   bool

	// Stats
	writtenRecords uint64
	failedRecords  uint64
	flushCount     uint64
}

// NewTradeRecorder opens filePath for appending. A CSV header is written to an empty file.
func NewTradeRecorder(filePath string, format ExportFormat, flushInterval time.Duration, logger *zap.Logger) (*TradeRecorder, error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	tr := &TradeRecorder{
		format:   format,
		file:     file,
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
		logger:   logger.Named("trade_recorder"),
		filePath: filePath,
	}

	switch format {
	case FormatCSV:
		tr.csv = csv.NewWriter(file)
		if stat.Size() == 0 {
			if err := tr.csv.Write(CSVHeaders()); err != nil {
				file.Close()
				return nil, fmt.Errorf("failed to write header: %w", err)
			}
			tr.csv.Flush()
		}
	case FormatJSON:
		tr.json = json.NewEncoder(file)
	}

	go tr.periodicFlush()

	return tr, nil
}

// Handle implements events.Handler. Events other than trades are ignored.
func (tr *TradeRecorder) Handle(_ context.Context, event events.Event) error {
	pe, ok := event.(*events.ProgramEvent)
	if !ok {
		return nil
	}
	if _, ok := pe.Payload.(*pumpfun.TradeEvent); !ok {
		return nil
	}
	return tr.Write(NewRecord(pe))
}

// Write appends one record.
func (tr *TradeRecorder) Write(record Record) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.closed {
		tr.failedRecords++
		return ErrRecorderClosed
	}

	var err error
	switch tr.format {
	case FormatCSV:
		err = tr.csv.Write(record.ToCSV())
	case FormatJSON:
		err = tr.json.Encode(record)
	}
	if err != nil {
		tr.failedRecords++
		return fmt.Errorf("failed to write record: %w", err)
	}

	tr.writtenRecords++
	return nil
}

// Flush forces a write of any buffered data
func (tr *TradeRecorder) Flush() error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.closed {
		return ErrRecorderClosed
	}
	return tr.flushLocked()
}

func (tr *TradeRecorder) flushLocked() error {
	if tr.csv != nil {
		tr.csv.Flush()
		if err := tr.csv.Error(); err != nil {
			return fmt.Errorf("CSV writer error: %w", err)
		}
	}
	if err := tr.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	tr.flushCount++
	return nil
}

func (tr *TradeRecorder) periodicFlush() {
	for {
		select {
		case <-tr.ticker.C:
			if err := tr.Flush(); err != nil && !errors.Is(err, ErrRecorderClosed) {
				tr.logger.Error("Periodic flush failed",
					zap.String("file", tr.filePath),
					zap.Error(err))
			}
		case <-tr.done:
			return
		}
	}
}

// Close flushes and closes the file. Later writes fail with ErrRecorderClosed.
func (tr *TradeRecorder) Close() error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.closed {
		return ErrRecorderClosed
	}
	tr.closed = true
	close(tr.done)
	tr.ticker.Stop()

	if err := tr.flushLocked(); err != nil {
		return err
	}
	if err := tr.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	tr.logger.Info("Trade recorder closed",
		zap.String("file", tr.filePath),
		zap.Uint64("written_records", tr.writtenRecords),
		zap.Uint64("failed_records", tr.failedRecords),
		zap.Uint64("flush_count", tr.flushCount))
	return nil
}

// GetStats returns the number of written and failed records.
func (tr *TradeRecorder) GetStats() (written, failed uint64) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.writtenRecords, tr.failedRecords
}
