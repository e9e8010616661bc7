package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"signalrelay/src/database"
	"signalrelay/src/model"
)

func TestTradeEventRepositorySearch(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeEventRepository{db: mockDB}

	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	eventRows := func(returned ...model.TradeEvent) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"id", "action", "ticker", "side", "order_id", "timestamp"})
		for _, ev := range returned {
			rows.AddRow(ev.ID, ev.Action, ev.Ticker, ev.Side, ev.OrderID, ev.Timestamp)
		}
		return rows
	}

	open := model.TradeEvent{ID: "a", Action: model.TradeActionOpen, Ticker: "BTCUSDT", Side: "buy", OrderID: "1", Timestamp: at}
	closed := model.TradeEvent{ID: "b", Action: model.TradeActionClose, Ticker: "BTCUSDT", Side: "buy", OrderID: "2", Timestamp: at.Add(time.Hour)}

	t.Run("latest uses default ordering", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trade_events" ORDER BY timestamp DESC, id DESC LIMIT $1`)).
			WithArgs(5).
			WillReturnRows(eventRows(closed, open))

		results, err := repo.Latest(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "b", results[0].ID)
		assert.Equal(t, "a", results[1].ID)
	})

	t.Run("filters by ticker and action", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trade_events" WHERE ticker = $1 AND action = $2 ORDER BY timestamp DESC, id DESC LIMIT $3`)).
			WithArgs("BTCUSDT", model.TradeActionOpen, defaultSearchLimit).
			WillReturnRows(eventRows(open))

		results, err := repo.Search(context.Background(), TradeEventSearchOptions{
			Ticker: ptrString("BTCUSDT"),
			Action: ptrString(model.TradeActionOpen),
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, model.TradeActionOpen, results[0].Action)
	})

	t.Run("filters by window with pagination", func(t *testing.T) {
		from := at.Add(-time.Hour)
		to := at.Add(2 * time.Hour)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trade_events" WHERE timestamp >= $1 AND timestamp <= $2 ORDER BY timestamp DESC, id DESC LIMIT $3 OFFSET $4`)).
			WithArgs(from, to, 1, 1).
			WillReturnRows(eventRows(open))

		results, err := repo.Search(context.Background(), TradeEventSearchOptions{From: &from, To: &to, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].ID)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trade_events"`)).
			WillReturnError(fmt.Errorf("connection lost"))

		_, err := repo.Latest(context.Background(), 10)
		assert.Error(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeEventRepositoryCreateSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	repo := (&TradeEventRepository{}).WithDB(db)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := model.NewTradeEvent(model.TradeActionOpen, "ETHUSDT", "sell", at, map[string]interface{}{"size": "50"})
	first.OrderID = "o-1"
	second := model.NewTradeEvent(model.TradeActionError, "ETHUSDT", "sell", at.Add(time.Minute), map[string]interface{}{"error": "boom"})
	second.ErrorKind = "exchange_unavailable"

	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))
	assert.Error(t, repo.Create(ctx, &first), "duplicate ids are rejected")

	results, err := repo.Search(ctx, TradeEventSearchOptions{Ticker: ptrString("ETHUSDT")})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, second.ID, results[0].ID)
	assert.Equal(t, "exchange_unavailable", results[0].ErrorKind)
	assert.Equal(t, first.ID, results[1].ID)
	assert.Equal(t, "o-1", results[1].OrderID)
	assert.JSONEq(t, `{"size":"50"}`, results[1].Detail)

	errorsOnly, err := repo.Search(ctx, TradeEventSearchOptions{Action: ptrString(model.TradeActionError)})
	require.NoError(t, err)
	require.Len(t, errorsOnly, 1)
}

func TestWebhookAlertRepositorySQLite(t *testing.T) {
	db := newSQLiteDB(t)
	repo := (&WebhookAlertRepository{}).WithDB(db)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, raw := range []string{"Buy - BTCUSDT.P", "Sell - ETHUSDT.P", "TP - ETHUSDT.P"} {
		alert := &model.WebhookAlert{Raw: raw, ReceivedAt: at.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, alert))
		assert.NotZero(t, alert.ID)
	}

	latest, err := repo.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "TP - ETHUSDT.P", latest[0].Raw)
	assert.Equal(t, "Sell - ETHUSDT.P", latest[1].Raw)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

// newSQLiteDB opens an in-memory database private to the calling test.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in memory db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func ptrString(val string) *string {
	return &val
}
