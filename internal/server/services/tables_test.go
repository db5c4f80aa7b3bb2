package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableService_CRUD(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewTableService(db, repotest.NewManager())
	ctx := context.Background()

	t1, err := s.Create(ctx, &models.Table{Number: 1, Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, models.LocationIndoor, t1.Location)
	assert.Equal(t, models.StatusAvailable, t1.Status)

	_, err = s.Create(ctx, &models.Table{Number: 1, Capacity: 2})
	var dup *common.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "number", dup.Field)

	t2, err := s.Create(ctx, &models.Table{Number: 2, Capacity: 2, Location: models.LocationOutdoor})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	upd, err := s.Update(ctx, t2.ID, TablePatch{Status: ptr(models.StatusOccupied), Notes: ptr("birthday")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, upd.Status)
	assert.Equal(t, 2, upd.Number)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.Update(ctx, t2.ID, TablePatch{Number: ptr(1)})
	require.ErrorAs(t, err, &dup)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Number)

	_, err = s.Delete(ctx, t1.ID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableService_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewTableService(db, repotest.NewManager())

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, MsgTableNotFound, messageOf(err))

	_, err = s.Delete(context.Background(), "nope")
	assert.Equal(t, MsgTableNotFound, messageOf(err))
}
