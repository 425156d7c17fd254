package sources

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	pkgch "FinSight/pkg/clickhouse"
	applogger "FinSight/pkg/logger"
)

// universeLimit caps how many rows a screening fetch pulls from the table.
const universeLimit = 50

// FundamentalsDB adapts the read-only fundamentals/dividend database backed
// by ClickHouse. It is the highest-priority source in fusion.
type FundamentalsDB struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewFundamentalsDB(ch *pkgch.Client, table string) *FundamentalsDB {
	if table == "" {
		table = "finsight.fundamentals"
	}
	return &FundamentalsDB{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *FundamentalsDB) SetLogger(l *applogger.Logger) { s.l = l }

func (s *FundamentalsDB) ID() string                { return models.SourceFundamentals }
func (s *FundamentalsDB) Class() models.SourceClass { return models.ClassFundamental }

// Fetch reads per-ticker financial facts. With no tickers it returns the
// screening universe: the top dividend payers by yield.
func (s *FundamentalsDB) Fetch(ctx context.Context, tickers []string) ([]models.SourceResult, error) {
	start := time.Now()

	var (
		q    string
		args []any
	)
	if len(tickers) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(tickers)), ",")
		q = fmt.Sprintf(`
            SELECT ticker, dividend_yield, payout_ratio, safety_score, value_score, growth_rate, ex_dividend_date
            FROM %s
            WHERE ticker IN (%s)
        `, s.table, ph)
		for _, t := range tickers {
			args = append(args, t)
		}
	} else {
		q = fmt.Sprintf(`
            SELECT ticker, dividend_yield, payout_ratio, safety_score, value_score, growth_rate, ex_dividend_date
            FROM %s
            WHERE dividend_yield > 0
            ORDER BY dividend_yield DESC
            LIMIT %d
        `, s.table, universeLimit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("fundamentals query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, models.NewSourceError(models.SourceFundamentals, models.SourceErrNetwork, err)
	}
	defer rows.Close()

	now := time.Now()
	out := make([]models.SourceResult, 0, len(tickers))
	for rows.Next() {
		var (
			ticker       string
			yield        sql.NullFloat64
			payout       sql.NullFloat64
			safety       sql.NullFloat64
			value        sql.NullFloat64
			growth       sql.NullFloat64
			exDivDate    sql.NullTime
		)
		if err := rows.Scan(&ticker, &yield, &payout, &safety, &value, &growth, &exDivDate); err != nil {
			if s.l != nil {
				s.l.Error("fundamentals scan error", applogger.Error(err))
			}
			return nil, models.NewSourceError(models.SourceFundamentals, models.SourceErrParse, err)
		}

		fields := map[string]any{}
		if yield.Valid {
			fields[models.FieldYield] = yield.Float64
		}
		if payout.Valid {
			fields[models.FieldPayoutRatio] = payout.Float64
		}
		if safety.Valid {
			fields[models.FieldSafetyRating] = safety.Float64
		}
		if value.Valid {
			fields[models.FieldValueMetric] = value.Float64
		}
		if growth.Valid {
			fields[models.FieldGrowthRate] = growth.Float64
		}
		if exDivDate.Valid {
			fields[models.FieldExDividendDate] = exDivDate.Time.Format("2006-01-02")
		}
		if len(fields) == 0 {
			continue
		}
		out = append(out, models.SourceResult{
			Source:    models.SourceFundamentals,
			Ticker:    strings.ToUpper(ticker),
			Fields:    fields,
			FetchedAt: now,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewSourceError(models.SourceFundamentals, models.SourceErrNetwork, err)
	}

	if s.l != nil {
		s.l.Debug("fundamentals fetch ok",
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ repository.Source = (*FundamentalsDB)(nil)
