package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/shopspring/decimal"
)

// envelope is the uniform response body: HTTP 2xx alone is not success, the
// embedded code must also be the ok sentinel.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
	Data    json.RawMessage `json:"data"`
}

const businessCodeOK = 200

// transactionPayload is the wire shape of one record. Amounts travel as JSON
// numbers; dates as ISO strings (calendar date for Date, datetime for
// CreateTime).
type transactionPayload struct {
	ID         string                 `json:"id"`
	Type       models.TransactionType `json:"type"`
	Amount     json.Number            `json:"amount"`
	CategoryId string                 `json:"categoryId"`
	Note       string                 `json:"note,omitempty"`
	Date       string                 `json:"date"`
	CreateTime string                 `json:"createTime,omitempty"`
	// Deleted marks a server-side deletion in incremental responses.
	Deleted bool `json:"_deleted,omitempty"`
}

func (p transactionPayload) toModel() (models.Transaction, error) {
	amount, err := decimal.NewFromString(p.Amount.String())
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse amount %q: %w", p.Amount, err)
	}
	date, err := utils.ParseDate(p.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse date %q: %w", p.Date, err)
	}
	var createTime time.Time
	if p.CreateTime != "" {
		createTime, err = time.Parse(time.RFC3339, p.CreateTime)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("parse createTime %q: %w", p.CreateTime, err)
		}
	}
	return models.Transaction{
		ID:              p.ID,
		Type:            p.Type,
		Amount:          amount,
		CategoryId:      p.CategoryId,
		Note:            p.Note,
		Date:            date,
		CreateTime:      createTime,
		Deleted:         p.Deleted,
		RemoteConfirmed: true,
	}, nil
}

func payloadFromInput(in models.TransactionInput) transactionPayload {
	return transactionPayload{
		Type:       in.Type,
		Amount:     json.Number(in.Amount.String()),
		CategoryId: in.CategoryId,
		Note:       in.Note,
		Date:       in.Date,
	}
}

func payloadFromModel(t models.Transaction) transactionPayload {
	p := transactionPayload{
		ID:         t.ID,
		Type:       t.Type,
		Amount:     json.Number(t.Amount.String()),
		CategoryId: t.CategoryId,
		Note:       t.Note,
		Date:       utils.FormatDate(t.Date),
	}
	if !t.CreateTime.IsZero() {
		p.CreateTime = t.CreateTime.UTC().Format(time.RFC3339)
	}
	return p
}

type listPayload struct {
	List  []transactionPayload `json:"list"`
	Total int                  `json:"total"`
}

type summaryPayload struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Balance json.Number `json:"balance"`
}

func (p summaryPayload) toSummary() (models.StatsSummary, error) {
	income, err := decimal.NewFromString(p.Income.String())
	if err != nil {
		return models.StatsSummary{}, fmt.Errorf("parse income: %w", err)
	}
	expense, err := decimal.NewFromString(p.Expense.String())
	if err != nil {
		return models.StatsSummary{}, fmt.Errorf("parse expense: %w", err)
	}
	return models.StatsSummary{
		Income:  utils.FormatAmount(income),
		Expense: utils.FormatAmount(expense),
		Balance: utils.FormatAmount(income.Sub(expense)),
	}, nil
}

type monthlyStatsPayload struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Summary summaryPayload `json:"summary"`
}

type yearlyStatsPayload struct {
	Year    int            `json:"year"`
	Summary summaryPayload `json:"summary"`
	Months  []struct {
		Month   int            `json:"month"`
		Summary summaryPayload `json:"summary"`
	} `json:"months"`
}

type rangeStatsPayload struct {
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	GroupBy   models.GroupBy `json:"groupBy"`
	Summary   summaryPayload `json:"summary"`
	Groups    []struct {
		Key     string         `json:"key"`
		Summary summaryPayload `json:"summary"`
	} `json:"groups"`
}

type loginPayload struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
}

type incrementalPayload struct {
	Transactions []transactionPayload `json:"transactions"`
	ServerTime   string               `json:"serverTime"`
}
