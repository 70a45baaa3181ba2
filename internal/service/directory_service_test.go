package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostelService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Equal(t, model.GenderMixed, env.hostel.GenderRestriction)

	_, err := env.hostels.Create(ctx, CreateHostelInput{
		Name:         "Queen Amina",
		HostelCampus: "Main",
		Block:        "B",
		Floor:        "2",
		Location:     "South gate",
	})
	assert.ErrorIs(t, err, apperr.ErrHostelExists)

	_, err = env.hostels.Create(ctx, CreateHostelInput{Name: "Only name"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.hostels.Create(ctx, CreateHostelInput{
		Name:              "Moremi",
		HostelCampus:      "Main",
		Block:             "C",
		Floor:             "1",
		Location:          "East",
		GenderRestriction: "other",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	female, err := env.hostels.Create(ctx, CreateHostelInput{
		Name:              "Moremi",
		HostelCampus:      "Main",
		Block:             "C",
		Floor:             "1",
		Location:          "East",
		GenderRestriction: model.GenderFemale,
	})
	require.NoError(t, err)

	list, err := env.hostels.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := env.hostels.GetByID(ctx, female.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moremi", got.Name)

	_, err = env.hostels.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrHostelNotFound)
}

func TestHostelService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.newRoom(t, 2)
	a := env.newStudent(t, "A")
	_, err := env.requests.CreateRequest(ctx, a.ID, room.ID, 0)
	require.NoError(t, err)

	history, err := env.queries.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Queen Amina", history[0].Items[0].HostelName)
	require.True(t, env.cache.ok)

	name := " Queen Amina II "
	female := model.GenderFemale
	updated, err := env.hostels.Update(ctx, env.hostel.ID, UpdateHostelInput{
		Name:              &name,
		GenderRestriction: &female,
	})
	require.NoError(t, err)
	assert.Equal(t, "Queen Amina II", updated.Name)
	assert.Equal(t, model.GenderFemale, updated.GenderRestriction)
	assert.Equal(t, "Main", updated.HostelCampus)

	// Переименование видно в истории
	assert.False(t, env.cache.ok)
	history, err = env.queries.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Queen Amina II", history[0].Items[0].HostelName)

	other, err := env.hostels.Create(ctx, CreateHostelInput{
		Name: "Moremi", HostelCampus: "Main", Block: "B", Floor: "1", Location: "East",
	})
	require.NoError(t, err)
	_, err = env.hostels.Update(ctx, other.ID, UpdateHostelInput{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrHostelExists)

	blank := "  "
	_, err = env.hostels.Update(ctx, other.ID, UpdateHostelInput{Location: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	bad := model.GenderRestriction("other")
	_, err = env.hostels.Update(ctx, other.ID, UpdateHostelInput{GenderRestriction: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.hostels.Update(ctx, 9999, UpdateHostelInput{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrHostelNotFound)
}

func TestHostelService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.newRoom(t, 1)

	err := env.hostels.Delete(ctx, env.hostel.ID)
	assert.ErrorIs(t, err, apperr.ErrHostelHasRooms)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, env.rooms.Delete(ctx, room.ID))
	require.NoError(t, env.hostels.Delete(ctx, env.hostel.ID))

	_, err = env.hostels.GetByID(ctx, env.hostel.ID)
	assert.ErrorIs(t, err, apperr.ErrHostelNotFound)
	assert.ErrorIs(t, env.hostels.Delete(ctx, env.hostel.ID), apperr.ErrHostelNotFound)
}

func TestStudentService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	chatID := int64(42)
	st, err := env.students.Register(ctx, RegisterStudentInput{
		FirstName:      " Ada ",
		LastName:       "Obi",
		MatricNumber:   "CSC/2020/001",
		TelegramChatID: &chatID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", st.FirstName)

	got, err := env.students.GetByID(ctx, st.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TelegramChatID)
	assert.Equal(t, chatID, *got.TelegramChatID)

	_, err = env.students.Register(ctx, RegisterStudentInput{LastName: "NoFirst"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.students.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrStudentNotFound)
}
