package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPgInsertStoresBatchIDAsNullWhenAbsent(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)

	n := Notification{
		ID:          uuid.New(),
		RecipientID: uuid.New(),
		Type:        TypeStatusUpdate,
		Message:     "hello",
	}

	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(n.ID, n.RecipientID, n.Type, n.Message, (*uuid.UUID)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), n))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgFetchUnreadScansBatchID(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	recipient := uuid.New()
	batchID := uuid.New()
	since := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	created := since.Add(time.Hour)

	rows := mock.NewRows([]string{"id", "recipient_id", "type", "message", "is_read", "batch_id", "created_at"}).
		AddRow(uuid.New(), recipient, string(TypeBroadcast), "maintenance", false, &batchID, created).
		AddRow(uuid.New(), recipient, string(TypeStatusUpdate), "confirmed", false, (*uuid.UUID)(nil), created.Add(time.Minute))

	mock.ExpectQuery(`SELECT(.|\n)+FROM notifications`).
		WithArgs(recipient, since).
		WillReturnRows(rows)

	got, err := repo.FetchUnread(context.Background(), recipient, since)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, batchID, got[0].BatchID)
	assert.Equal(t, uuid.Nil, got[1].BatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgInsertBatchFallsBackWithoutSendBatch(t *testing.T) {
	mock := newMock(t)
	// The narrowed wrapper has no SendBatch, so the batch insert must take
	// its row-at-a-time fallback.
	repo := NewPgRepository(execOnly{mock})

	batchID := uuid.New()
	ns := []Notification{
		{ID: uuid.New(), RecipientID: uuid.New(), Type: TypeAlert, Message: "m", BatchID: batchID},
		{ID: uuid.New(), RecipientID: uuid.New(), Type: TypeAlert, Message: "m", BatchID: batchID},
	}

	for range ns {
		mock.ExpectExec(`INSERT INTO notifications`).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, repo.InsertBatch(context.Background(), ns))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// execOnly narrows the mock to the plain DB surface.
type execOnly struct {
	DB
}
