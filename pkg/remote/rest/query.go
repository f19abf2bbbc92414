package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"

	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

const singleObjectMedia = "application/vnd.pgrst.object+json"

// Execute implements remote.Executor over PostgREST
func (c *Client) Execute(ctx context.Context, q *remote.Query, op remote.Operation, payload interface{}, dest interface{}) (err error) {
	start := time.Now()
	ctx, span := telemetry.TraceRemoteCall(ctx, telemetry.RemoteCallAttrs{
		Backend:   "rest",
		Table:     q.Table,
		Operation: string(op),
	})
	status := 0
	defer func() {
		telemetry.EndRemoteCall(span, status, err)
		metrics.ObserveRemoteCall("rest", q.Table, string(op), start, err)
	}()

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.auth.bearer(ctx))

	params := FilterParams(q)
	path := restPath + "/" + q.Table

	var resp *resty.Response
	switch op {
	case remote.OpSelect:
		params.Set("select", q.Columns)
		if q.Cardinality == remote.One {
			req.SetHeader("Accept", singleObjectMedia)
		}
		resp, err = req.SetQueryParamsFromValues(params).Get(path)

	case remote.OpCount:
		params.Set("select", q.Columns)
		req.SetHeader("Prefer", "count=exact")
		resp, err = req.SetQueryParamsFromValues(params).Head(path)
		if err = CheckResponse(resp, err); err != nil {
			status = statusOf(resp)
			return err
		}
		status = resp.StatusCode()
		return writeCount(resp.Header().Get("Content-Range"), dest)

	case remote.OpInsert, remote.OpUpsert:
		prefer := []string{returnPreference(dest)}
		if op == remote.OpUpsert {
			params.Set("on_conflict", strings.Join(q.OnConflict, ","))
			prefer = append([]string{"resolution=merge-duplicates"}, prefer...)
		}
		c.representation(req, q, dest)
		resp, err = req.
			SetHeader("Content-Type", "application/json").
			SetHeader("Prefer", strings.Join(prefer, ",")).
			SetQueryParamsFromValues(params).
			SetBody(payload).
			Post(path)

	case remote.OpUpdate:
		c.representation(req, q, dest)
		resp, err = req.
			SetHeader("Content-Type", "application/json").
			SetHeader("Prefer", returnPreference(dest)).
			SetQueryParamsFromValues(params).
			SetBody(payload).
			Patch(path)

	case remote.OpDelete:
		resp, err = req.
			SetHeader("Prefer", "return=minimal").
			SetQueryParamsFromValues(params).
			Delete(path)

	default:
		return &remote.Error{Code: remote.CodeBadQuery, Message: "unsupported operation " + string(op), Status: 400}
	}

	status = statusOf(resp)
	if err = CheckResponse(resp, err); err != nil {
		return err
	}
	if dest == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err = json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("decode %s response: %w", q.Table, err)
	}
	return nil
}

func (c *Client) representation(req *resty.Request, q *remote.Query, dest interface{}) {
	if dest != nil && q.Cardinality == remote.One {
		req.SetHeader("Accept", singleObjectMedia)
	}
}

func returnPreference(dest interface{}) string {
	if dest == nil {
		return "return=minimal"
	}
	return "return=representation"
}

func statusOf(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}

// writeCount parses a Content-Range like "0-24/3573" or "*/0"
func writeCount(contentRange string, dest interface{}) error {
	n, ok := dest.(*int64)
	if !ok {
		return fmt.Errorf("count destination must be *int64, got %T", dest)
	}
	i := strings.LastIndex(contentRange, "/")
	if i < 0 {
		return fmt.Errorf("missing count in Content-Range %q", contentRange)
	}
	total, err := strconv.ParseInt(contentRange[i+1:], 10, 64)
	if err != nil {
		return fmt.Errorf("parse Content-Range %q: %w", contentRange, err)
	}
	*n = total
	return nil
}

// FilterParams renders filters, ordering and limit as PostgREST query parameters
func FilterParams(q *remote.Query) url.Values {
	params := url.Values{}

	for _, f := range q.Filters {
		params.Add(f.Column, filterValue(f))
	}

	if len(q.Orders) > 0 {
		terms := make([]string, 0, len(q.Orders))
		for _, o := range q.Orders {
			dir := "desc"
			if o.Ascending {
				dir = "asc"
			}
			terms = append(terms, o.Column+"."+dir)
		}
		params.Set("order", strings.Join(terms, ","))
	}

	if q.RowLimit > 0 {
		params.Set("limit", strconv.Itoa(q.RowLimit))
	}

	return params
}

func filterValue(f remote.Filter) string {
	switch f.Op {
	case remote.FilterIn:
		return "in.(" + quoteList(f.Value) + ")"
	case remote.FilterContains:
		return "cs.{" + quoteList(f.Value) + "}"
	case remote.FilterTextSearch:
		op := "fts"
		switch f.Search.Type {
		case remote.SearchPlain:
			op = "plfts"
		case remote.SearchPhrase:
			op = "phfts"
		case remote.SearchWebsearch:
			op = "wfts"
		}
		if f.Search.Config != "" {
			op += "(" + f.Search.Config + ")"
		}
		return op + "." + fmt.Sprint(f.Value)
	default:
		return "eq." + fmt.Sprint(f.Value)
	}
}

// quoteList double-quotes every element so commas and parentheses survive
func quoteList(v interface{}) string {
	values, _ := v.([]string)
	quoted := make([]string, len(values))
	for i, s := range values {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ",")
}
