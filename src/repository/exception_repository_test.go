package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalrelay/src/model"
)

func TestExceptionRepositoryCreate(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewExceptionRepository().WithDB(db)

	exc := &model.Exception{
		Module:    "alert_controller",
		Method:    "AcceptAlert",
		Message:   "boom",
		Stack:     "goroutine 1",
		Level:     "error",
		Context:   `{"raw":"BTC buy"}`,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), exc))
	assert.NotZero(t, exc.ID)

	var stored []model.Exception
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "boom", stored[0].Message)
	assert.Equal(t, `{"raw":"BTC buy"}`, stored[0].Context)
}
