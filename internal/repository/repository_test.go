package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeekaaay/EventManagement/internal/database"
	"github.com/Deeekaaay/EventManagement/internal/model"
)

// These tests need a real MySQL instance and are skipped unless
// TEST_DATABASE_DSN is set, e.g.
//
//	TEST_DATABASE_DSN="root:root@tcp(localhost:3306)/events_test?parseTime=true&loc=UTC"
//
// The schema is created on the fly; tests use uniquely named rows so
// they can run repeatedly against the same database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping())
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func uniqueTitle(t *testing.T) string {
	return fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())
}

func TestEventRepoCreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	ev := model.Event{
		Title:      uniqueTitle(t),
		Venue:      "Hall A",
		Day:        model.Fri,
		Price:      decimal.RequireFromString("25.50"),
		TotalSeats: 40,
		Enabled:    true,
	}
	require.NoError(t, repo.Create(ctx, &ev))
	require.NotZero(t, ev.ID)

	got, err := repo.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ev.Title, got.Title)
	assert.Equal(t, "25.50", got.Price.StringFixed(2))
	assert.Equal(t, 0, got.Sold)
	assert.Equal(t, 40, got.Remaining())
}

func TestEventRepoRejectsDuplicateListing(t *testing.T) {
	db := testDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	ev := model.Event{
		Title:      uniqueTitle(t),
		Venue:      "Hall A",
		Day:        model.Sat,
		Price:      decimal.New(10, 0),
		TotalSeats: 10,
		Enabled:    true,
	}
	require.NoError(t, repo.Create(ctx, &ev))

	dup := ev
	dup.ID = 0
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicateEvent)

	// Same title and venue on a different day is a distinct listing.
	other := dup
	other.Day = model.Sun
	assert.NoError(t, repo.Create(ctx, &other))
}

func TestEventRepoGetMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	repo := NewEventRepo(db)

	got, err := repo.GetEvent(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecrementAvailableGuard(t *testing.T) {
	db := testDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()

	ev := model.Event{
		Title:      uniqueTitle(t),
		Venue:      "Hall B",
		Day:        model.Fri,
		Price:      decimal.New(10, 0),
		TotalSeats: 3,
		Enabled:    true,
	}
	require.NoError(t, repo.Create(ctx, &ev))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.DecrementAvailableTx(ctx, tx, ev.ID, 2))
	// Only one seat left now, inside this transaction.
	assert.ErrorIs(t, repo.DecrementAvailableTx(ctx, tx, ev.ID, 2), ErrInsufficientSeats)
	require.NoError(t, tx.Rollback())

	// The rollback left the listing untouched.
	got, err := repo.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Remaining())
}

func TestOrderCommitDecrementsSeatsAtomically(t *testing.T) {
	db := testDB(t)
	events := NewEventRepo(db)
	orders := NewOrderRepo(db, events)
	users := NewUserRepo(db)
	ctx := context.Background()

	userID, err := users.Create(ctx, uniqueTitle(t), "password", "Test User", model.RoleUser, 4)
	require.NoError(t, err)

	ev := model.Event{
		Title:      uniqueTitle(t),
		Venue:      "Hall C",
		Day:        model.Fri,
		Price:      decimal.RequireFromString("20.00"),
		TotalSeats: 10,
		Enabled:    true,
	}
	require.NoError(t, events.Create(ctx, &ev))

	order := model.Order{
		UserID:     userID,
		PlacedAt:   time.Now().UTC(),
		TotalPrice: decimal.RequireFromString("60.00"),
		Items: []model.OrderItem{
			{EventID: ev.ID, Title: ev.Title, Venue: ev.Venue, Day: ev.Day, Quantity: 3, PricePerTicket: ev.Price},
		},
	}
	committed, err := orders.Commit(ctx, order)
	require.NoError(t, err)
	assert.NotZero(t, committed.ID)
	assert.Equal(t, model.FormatOrderNumber(committed.ID), committed.Number)

	got, err := events.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Sold)

	// A commit that oversells must roll back completely.
	order.Items[0].Quantity = 100
	_, err = orders.Commit(ctx, order)
	require.ErrorIs(t, err, ErrInsufficientSeats)

	got, err = events.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Sold)

	mine, err := orders.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, committed.Number, mine[0].Number)
	require.Len(t, mine[0].Items, 1)
	assert.Equal(t, 3, mine[0].Items[0].Quantity)
}

func TestEventUpdatePreservesConcurrentlySoldSeats(t *testing.T) {
	db := testDB(t)
	events := NewEventRepo(db)
	orders := NewOrderRepo(db, events)
	users := NewUserRepo(db)
	ctx := context.Background()

	userID, err := users.Create(ctx, uniqueTitle(t), "password", "Test User", model.RoleUser, 4)
	require.NoError(t, err)

	ev := model.Event{
		Title:      uniqueTitle(t),
		Venue:      "Hall D",
		Day:        model.Fri,
		Price:      decimal.RequireFromString("15.00"),
		TotalSeats: 10,
		Enabled:    true,
	}
	require.NoError(t, events.Create(ctx, &ev))

	// Tickets sold after the admin's form was loaded.
	_, err = orders.Commit(ctx, model.Order{
		UserID:     userID,
		PlacedAt:   time.Now().UTC(),
		TotalPrice: decimal.RequireFromString("30.00"),
		Items: []model.OrderItem{
			{EventID: ev.ID, Title: ev.Title, Venue: ev.Venue, Day: ev.Day, Quantity: 2, PricePerTicket: ev.Price},
		},
	})
	require.NoError(t, err)

	// The update carries a stale Sold of zero; the repository must read
	// the live count inside its own transaction and keep the two seats.
	stale := ev
	stale.Sold = 0
	stale.Price = decimal.RequireFromString("17.00")
	require.NoError(t, events.Update(ctx, stale))

	got, err := events.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Sold)
	assert.Equal(t, 8, got.Remaining())
	assert.Equal(t, "17.00", got.Price.StringFixed(2))

	// Shrinking capacity below the live sold count is rejected.
	shrunk := ev
	shrunk.TotalSeats = 1
	err = events.Update(ctx, shrunk)
	assert.ErrorIs(t, err, ErrCapacityBelowSold)

	got, err = events.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TotalSeats)
}

func TestUserRepo(t *testing.T) {
	db := testDB(t)
	users := NewUserRepo(db)
	ctx := context.Background()

	username := uniqueTitle(t)
	id, err := users.Create(ctx, username, "password1", "Alice", model.RoleUser, 4)
	require.NoError(t, err)

	_, err = users.Create(ctx, username, "password2", "Other", model.RoleUser, 4)
	assert.ErrorIs(t, err, ErrUsernameExists)

	got, err := users.GetByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = users.GetByUsername(ctx, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)
}
