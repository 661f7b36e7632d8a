package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/logger"
	"github.com/Tiliavir/adolog/internal/model"
)

type WorkbookConfig struct {
	// Graph API root, e.g. https://graph.microsoft.com/v1.0
	BaseURL string
	// Drive path of the workbook, e.g. "/ChromeExt - DB/DB.xlsx"
	Path  string
	Table string
	// If nil, time.Now is used. New log ids are epoch milliseconds.
	Now func() time.Time
}

// WorkbookGateway stores logs as rows of an Excel table in the signed-in
// user's OneDrive. The HTTP client must attach the Graph bearer token.
type WorkbookGateway struct {
	rowsURL string
	client  *http.Client
	now     func() time.Time
	log     logger.Logger
}

type tableRow struct {
	Index  int     `json:"index"`
	Values [][]any `json:"values"`
}

type tableRows struct {
	Value []tableRow `json:"value"`
}

type rowValues struct {
	Values [][]any `json:"values"`
}

func NewWorkbook(cfg WorkbookConfig, client *http.Client, log logger.Logger) *WorkbookGateway {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &WorkbookGateway{
		rowsURL: fmt.Sprintf("%s/me/drive/root:%s:/workbook/tables/%s/rows",
			strings.TrimRight(cfg.BaseURL, "/"), escapePath(cfg.Path), url.PathEscape(cfg.Table)),
		client: orDefault(client),
		now:    cfg.Now,
		log:    log.WithGroup("workbook"),
	}
}

// FetchAll returns every decodable row. The table has no server-side filter,
// so developer and date are ignored here.
func (g *WorkbookGateway) FetchAll(ctx context.Context, _, _ string) ([]model.TimeLogRecord, error) {
	rows, err := g.rows(ctx, opFetch)
	if err != nil {
		return nil, err
	}
	records := make([]model.TimeLogRecord, 0, len(rows))
	for _, row := range rows {
		r, err := decodeTableRow(row)
		if err != nil {
			g.log.Warn("skipping unreadable row", "index", row.Index, "error", err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (g *WorkbookGateway) Upsert(ctx context.Context, rec model.TimeLogRecord) (model.LogID, error) {
	if !rec.LogID.IsZero() {
		return rec.LogID, g.update(ctx, rec)
	}

	rec.LogID = model.LogID(strconv.FormatInt(g.now().UnixMilli(), 10))
	body := rowValues{Values: [][]any{EncodeRow(rec)}}
	if err := doJSON(ctx, g.client, opInsert, http.MethodPost, g.rowsURL+"/add", body, nil); err != nil {
		return "", err
	}
	return rec.LogID, nil
}

func (g *WorkbookGateway) update(ctx context.Context, rec model.TimeLogRecord) error {
	rows, err := g.rows(ctx, opUpdate)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if len(row.Values) == 0 || len(row.Values[0]) == 0 || cellString(row.Values[0][colLogID]) != rec.LogID.String() {
			continue
		}
		endpoint := fmt.Sprintf("%s/itemAt(index=%d)", g.rowsURL, row.Index)
		body := rowValues{Values: [][]any{updateRow(rec)}}
		return doJSON(ctx, g.client, opUpdate, http.MethodPatch, endpoint, body, nil)
	}
	return &apperrors.GatewayError{Operation: opUpdate, Message: fmt.Sprintf("log %s not found in table", rec.LogID)}
}

func (g *WorkbookGateway) rows(ctx context.Context, op string) ([]tableRow, error) {
	var resp tableRows
	if err := doJSON(ctx, g.client, op, http.MethodGet, g.rowsURL, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

func decodeTableRow(row tableRow) (model.TimeLogRecord, error) {
	if len(row.Values) == 0 {
		return model.TimeLogRecord{}, fmt.Errorf("empty row")
	}
	return DecodeRow(row.Values[0])
}

// escapePath escapes each segment of a drive path.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
