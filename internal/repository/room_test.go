package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/othello/internal/apperror"
	"github.com/rocketscienceinc/othello/internal/entity"
	"github.com/rocketscienceinc/othello/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(id string) *entity.Room {
	return &entity.Room{
		ID:        id,
		HostName:  "alice",
		Address:   "localhost:9091",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRoomRepository_Register(t *testing.T) {
	t.Run("Register_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a room
		room := newRoom("12345")

		// When: Register is called
		err := roomRepo.Register(ctx, room, time.Hour)

		// Then: the room is stored with a TTL
		require.NoError(t, err)
		assert.Greater(t, st.Redis.TTL("room:12345"), time.Duration(0))
	})

	t.Run("Register_Occupied", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a registered room
		require.NoError(t, roomRepo.Register(ctx, newRoom("12345"), time.Hour))

		// When: another host registers the same code
		err := roomRepo.Register(ctx, newRoom("12345"), time.Hour)

		// Then: ErrRoomOccupied is returned
		require.ErrorIs(t, err, apperror.ErrRoomOccupied)
	})

	t.Run("Register_Expires", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a room with a short TTL
		require.NoError(t, roomRepo.Register(ctx, newRoom("12345"), time.Minute))

		// When: the TTL passes
		st.Redis.FastForward(2 * time.Minute)

		// Then: the room is gone
		_, err := roomRepo.GetByID(ctx, "12345")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoomRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a registered room
		room := newRoom("54321")
		require.NoError(t, roomRepo.Register(ctx, room, time.Hour))

		// When: GetByID is called with existing ID
		retrieved, err := roomRepo.GetByID(ctx, room.ID)

		// Then: the retrieved room should match the saved room
		require.NoError(t, err)
		assert.Equal(t, room, retrieved)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: GetByID is called with non-existent ID
		retrieved, err := roomRepo.GetByID(ctx, "99999")

		// Then: an ErrRoomNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Empty(t, retrieved.ID)
	})
}

func TestRoomRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a registered room
		require.NoError(t, roomRepo.Register(ctx, newRoom("12345"), time.Hour))

		// When: DeleteByID is called with existing ID
		err := roomRepo.DeleteByID(ctx, "12345")

		// Then: no error should be returned and the room is gone
		require.NoError(t, err)

		_, err = roomRepo.GetByID(ctx, "12345")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: DeleteByID is called with non-existent ID
		err := roomRepo.DeleteByID(ctx, "99999")

		// Then: an ErrRoomNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoomRepository_Docker(t *testing.T) {
	ctx, st := suite.NewDocker(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: a room in a real Redis
	room := newRoom("24680")
	require.NoError(t, roomRepo.Register(ctx, room, time.Hour))

	// When: it is read back
	retrieved, err := roomRepo.GetByID(ctx, room.ID)

	// Then: it round-trips
	require.NoError(t, err)
	assert.Equal(t, room, retrieved)
}
