package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/session"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/sirupsen/logrus"
)

// Client performs authenticated JSON calls against the backend and classifies
// every outcome into exactly one of the remote error classes (network, http,
// business) or a decoded success payload.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	session   *session.Session
	logger    *logrus.Logger

	reloginProvider CodeProvider
	reloginInFlight atomic.Bool
}

func NewClient(cfg config.Config, sess *session.Session) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.RequestTimeout},
		session:   sess,
		logger:    sess.Logger(),
	}
}

// SetReloginProvider wires the credential source used for the single
// background re-login scheduled after a 401. Without one, 401 handling only
// clears the token.
func (c *Client) SetReloginProvider(p CodeProvider) {
	c.reloginProvider = p
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, needAuth bool) (json.RawMessage, error) {
	cid := utils.CorrelationIdFromContextOrNew(ctx)
	ctx = utils.SetCorrelationIdInContext(ctx, cid)
	data, err := c.doRaw(ctx, method, path, query, body, needAuth)
	if err != nil {
		// Every remote failure surfaces one transient user notification; the
		// logical operation usually still succeeds via its local fallback.
		c.session.NotifyError(err)
		config.LogError(c.logger, "remote", "do", method+" "+path, map[string]string{"correlationId": cid}, err)
	}
	return data, err
}

func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body interface{}, needAuth bool) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &utils.NetworkError{Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &utils.NetworkError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		req.Header.Set("X-Correlation-Id", cid)
	}
	if needAuth {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts land here too; the request deadline is the only bound on
		// how long an operation stays outstanding.
		return nil, &utils.NetworkError{Message: "connection failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &utils.NetworkError{Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &utils.HttpError{StatusCode: resp.StatusCode, Message: httpMessage(resp.StatusCode, raw)}
		if resp.StatusCode == 401 {
			c.handleUnauthorized()
		}
		return nil, herr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &utils.BusinessError{Code: -1, Message: "malformed response body"}
	}
	if env.Code != businessCodeOK {
		berr := &utils.BusinessError{Code: env.Code, Message: env.Message, Details: string(env.Details)}
		if env.Code == 401 {
			c.handleUnauthorized()
		}
		return nil, berr
	}
	return env.Data, nil
}

func httpMessage(status int, raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return http.StatusText(status)
}

// handleUnauthorized clears the stored credential and schedules exactly one
// asynchronous re-login attempt. The failing call still returns its error to
// the caller; it is never silently retried.
func (c *Client) handleUnauthorized() {
	if err := c.session.ClearToken(); err != nil {
		config.LogError(c.logger, "remote", "handleUnauthorized", "clear token", nil, err)
	}
	if c.reloginProvider == nil {
		return
	}
	if !c.reloginInFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.reloginInFlight.Store(false)
		time.Sleep(time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.Login(ctx, c.reloginProvider); err != nil {
			c.logger.WithField("module", "remote").Warn("background re-login failed")
			c.session.SetOnline(false)
		}
	}()
}

// CreateTransaction posts a new record; the server assigns id and createTime.
func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	data, err := c.do(ctx, http.MethodPost, endpointTransactions, nil, payloadFromInput(in), true)
	if err != nil {
		return models.Transaction{}, err
	}
	return decodeTransaction(data)
}

// UpdateTransaction replays a full record state under an existing remote id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, rec models.Transaction) (models.Transaction, error) {
	data, err := c.do(ctx, http.MethodPut, endpointTransaction(id), nil, payloadFromModel(rec), true)
	if err != nil {
		return models.Transaction{}, err
	}
	return decodeTransaction(data)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, endpointTransaction(id), nil, nil, true)
	return err
}

func (c *Client) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	data, err := c.do(ctx, http.MethodGet, endpointTransaction(id), nil, nil, true)
	if err != nil {
		return models.Transaction{}, err
	}
	return decodeTransaction(data)
}

func (c *Client) ListTransactions(ctx context.Context, filter models.ListFilter) (models.TransactionPage, error) {
	filter = filter.Normalize()
	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("pageSize", strconv.Itoa(filter.PageSize))
	if filter.Start != nil {
		query.Set("startDate", utils.FormatDate(*filter.Start))
	}
	if filter.End != nil {
		query.Set("endDate", utils.FormatDate(*filter.End))
	}

	data, err := c.do(ctx, http.MethodGet, endpointTransactions, query, nil, true)
	if err != nil {
		return models.TransactionPage{}, err
	}
	var payload listPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.TransactionPage{}, &utils.BusinessError{Code: -1, Message: "malformed list payload"}
	}
	page := models.TransactionPage{Total: payload.Total, Items: make([]models.Transaction, 0, len(payload.List))}
	for _, p := range payload.List {
		rec, err := p.toModel()
		if err != nil {
			return models.TransactionPage{}, &utils.BusinessError{Code: -1, Message: err.Error()}
		}
		page.Items = append(page.Items, rec)
	}
	return page, nil
}

func (c *Client) MonthlyStats(ctx context.Context, year int, month int) (models.MonthlyStats, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))

	data, err := c.do(ctx, http.MethodGet, endpointMonthlyStats, query, nil, true)
	if err != nil {
		return models.MonthlyStats{}, err
	}
	var payload monthlyStatsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.MonthlyStats{}, &utils.BusinessError{Code: -1, Message: "malformed stats payload"}
	}
	summary, err := payload.Summary.toSummary()
	if err != nil {
		return models.MonthlyStats{}, &utils.BusinessError{Code: -1, Message: err.Error()}
	}
	return models.MonthlyStats{Year: year, Month: month, Summary: summary}, nil
}

func (c *Client) YearlyStats(ctx context.Context, year int) (models.YearlyStats, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))

	data, err := c.do(ctx, http.MethodGet, endpointYearlyStats, query, nil, true)
	if err != nil {
		return models.YearlyStats{}, err
	}
	var payload yearlyStatsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.YearlyStats{}, &utils.BusinessError{Code: -1, Message: "malformed stats payload"}
	}
	summary, err := payload.Summary.toSummary()
	if err != nil {
		return models.YearlyStats{}, &utils.BusinessError{Code: -1, Message: err.Error()}
	}
	out := models.YearlyStats{Year: year, Summary: summary}
	for _, m := range payload.Months {
		ms, err := m.Summary.toSummary()
		if err != nil {
			return models.YearlyStats{}, &utils.BusinessError{Code: -1, Message: err.Error()}
		}
		out.Months = append(out.Months, models.MonthStat{Month: m.Month, Summary: ms})
	}
	return out, nil
}

func (c *Client) RangeStats(ctx context.Context, start, end time.Time, groupBy models.GroupBy) (models.RangeStats, error) {
	query := url.Values{}
	query.Set("startDate", utils.FormatDate(start))
	query.Set("endDate", utils.FormatDate(end))
	query.Set("groupBy", string(groupBy))

	data, err := c.do(ctx, http.MethodGet, endpointRangeStats, query, nil, true)
	if err != nil {
		return models.RangeStats{}, err
	}
	var payload rangeStatsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.RangeStats{}, &utils.BusinessError{Code: -1, Message: "malformed stats payload"}
	}
	summary, err := payload.Summary.toSummary()
	if err != nil {
		return models.RangeStats{}, &utils.BusinessError{Code: -1, Message: err.Error()}
	}
	out := models.RangeStats{
		Start:   payload.StartDate,
		End:     payload.EndDate,
		GroupBy: payload.GroupBy,
		Summary: summary,
	}
	for _, g := range payload.Groups {
		gs, err := g.Summary.toSummary()
		if err != nil {
			return models.RangeStats{}, &utils.BusinessError{Code: -1, Message: err.Error()}
		}
		out.Groups = append(out.Groups, models.StatsGroup{Key: g.Key, Summary: gs})
	}
	return out, nil
}

// Categories fetches the category catalog, optionally narrowed by type.
func (c *Client) Categories(ctx context.Context, t models.TransactionType) (models.CategoryCatalog, error) {
	query := url.Values{}
	if t != "" {
		query.Set("type", string(t))
	}
	data, err := c.do(ctx, http.MethodGet, endpointCategories, query, nil, true)
	if err != nil {
		return models.CategoryCatalog{}, err
	}
	var catalog models.CategoryCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return models.CategoryCatalog{}, &utils.BusinessError{Code: -1, Message: "malformed category payload"}
	}
	return catalog, nil
}

// Incremental returns the records the server changed since the watermark,
// plus the server time to persist as the next watermark.
func (c *Client) Incremental(ctx context.Context, since time.Time) ([]models.Transaction, time.Time, error) {
	query := url.Values{}
	if !since.IsZero() {
		query.Set("lastSyncTime", since.UTC().Format(time.RFC3339))
	}
	data, err := c.do(ctx, http.MethodGet, endpointIncremental, query, nil, true)
	if err != nil {
		return nil, time.Time{}, err
	}
	var payload incrementalPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, time.Time{}, &utils.BusinessError{Code: -1, Message: "malformed incremental payload"}
	}
	recs := make([]models.Transaction, 0, len(payload.Transactions))
	for _, p := range payload.Transactions {
		rec, err := p.toModel()
		if err != nil {
			return nil, time.Time{}, &utils.BusinessError{Code: -1, Message: err.Error()}
		}
		recs = append(recs, rec)
	}
	serverTime := time.Now().UTC()
	if payload.ServerTime != "" {
		if t, err := time.Parse(time.RFC3339, payload.ServerTime); err == nil {
			serverTime = t
		}
	}
	return recs, serverTime, nil
}

func decodeTransaction(data json.RawMessage) (models.Transaction, error) {
	var p transactionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Transaction{}, &utils.BusinessError{Code: -1, Message: "malformed transaction payload"}
	}
	rec, err := p.toModel()
	if err != nil {
		return models.Transaction{}, &utils.BusinessError{Code: -1, Message: err.Error()}
	}
	return rec, nil
}
