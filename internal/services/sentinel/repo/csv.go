package repo

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"sentinel/internal/core/aml"
	perr "sentinel/internal/platform/errors"
)

// CSV is a transaction source over a demo csv file
// the header names columns; id, amount, currency and customer_id are lifted,
// every other non empty cell lands in Metadata
type CSV struct {
	Path string
	open func(string) (io.ReadCloser, error)
}

// NewCSV constructs a csv source reading path on every call
func NewCSV(path string) *CSV {
	return &CSV{Path: path, open: func(p string) (io.ReadCloser, error) { return os.Open(p) }}
}

// ReadCSV parses transactions from r
func ReadCSV(r io.Reader) ([]aml.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "csv header")
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []aml.Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "csv line %d", line)
		}
		tx := aml.Transaction{Metadata: map[string]any{}}
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			switch header[i] {
			case "id", "transaction_id":
				tx.ID = cell
			case "amount":
				if cell == "" {
					continue
				}
				v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
				if err != nil {
					return nil, perr.Newf(perr.ErrorCodeValidation, "csv line %d: amount %q is not a number", line, cell)
				}
				tx.Amount = v
			case "currency":
				tx.Currency = strings.ToUpper(cell)
			case "customer_id":
				tx.CustomerID = cell
			default:
				if cell != "" {
					tx.Metadata[header[i]] = cell
				}
			}
		}
		if tx.ID == "" {
			return nil, perr.Newf(perr.ErrorCodeValidation, "csv line %d: missing transaction id", line)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (c *CSV) all() ([]aml.Transaction, error) {
	if c == nil || c.Path == "" {
		return nil, perr.NotConfiguredf("demo csv not configured")
	}
	f, err := c.open(c.Path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "open demo csv %s", c.Path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// Transaction returns the row with id
func (c *CSV) Transaction(_ context.Context, id string) (aml.Transaction, error) {
	txs, err := c.all()
	if err != nil {
		return aml.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return aml.Transaction{}, perr.NotFoundf("transaction %s not in demo csv", id)
}

// List returns the first limit rows, all when limit <= 0
func (c *CSV) List(_ context.Context, limit int) ([]aml.Transaction, error) {
	txs, err := c.all()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}
