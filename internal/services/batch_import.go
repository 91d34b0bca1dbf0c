package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	types "github.com/yungbote/assignment-backend/internal/domain"
	domactivity "github.com/yungbote/assignment-backend/internal/domain/activity"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
)

const importOp = "ImportBatch"

// Import creates a batch from an uploaded sheet. The first row is a header;
// remaining rows are (url, type). Rows whose url is not http(s) or whose type
// is not exactly Short or Long are skipped, as are repeated urls.
func (s *batchService) Import(ctx context.Context, date, fileName string, raw []byte) (*types.Batch, error) {
	ctx, span := observability.Tracer().Start(ctx, "BatchService.Import")
	defer span.End()

	if len(raw) == 0 {
		return nil, types.Validation(importOp, "CSV file is required")
	}
	if strings.TrimSpace(date) == "" {
		return nil, types.Validation(importOp, "date is required")
	}
	day, err := domassign.NormalizeDate(strings.TrimSpace(date))
	if err != nil {
		return nil, types.Validation(importOp, err.Error())
	}
	exists, err := s.batches.ExistsForDate(dbctx.With(ctx), day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.Conflict(importOp, fmt.Sprintf("a batch for the date %s already exists", day))
	}

	var rows [][]string
	if isSpreadsheet(fileName) {
		rows, err = readXLSXRows(raw)
	} else {
		rows, err = readCSVRows(bytes.NewReader(raw))
	}
	if err != nil {
		s.log.Warn("batch import parse failed", "file", fileName, "error", err)
		return nil, types.Validation(importOp, "could not parse the uploaded file")
	}

	links := linksFromRows(rows)
	if len(links) == 0 {
		return nil, types.Validation(importOp, "no valid URLs with types found in the file")
	}

	batch, err := s.store(ctx, importOp, day, links)
	if err != nil {
		return nil, err
	}
	s.audit.OperatorAction(ctx, domactivity.ActionAssignmentCsvUploaded,
		fmt.Sprintf("Uploaded %d links via CSV for %s", len(links), batch.Date), domactivity.StatusSuccess, "")
	return batch, nil
}

func isSpreadsheet(name string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".xlsx")
}

func readCSVRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}

func readXLSXRows(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// linksFromRows drops the header row and keeps only well-formed links.
func linksFromRows(rows [][]string) []types.BatchLink {
	if len(rows) <= 1 {
		return nil
	}
	out := make([]types.BatchLink, 0, len(rows)-1)
	seen := make(map[string]struct{}, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		url := strings.TrimSpace(row[0])
		typ := domassign.LinkType(strings.TrimSpace(row[1]))
		if !strings.HasPrefix(url, "http") || !typ.Valid() {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, types.BatchLink{URL: url, Type: typ})
	}
	return out
}
