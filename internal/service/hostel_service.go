package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"go.uber.org/zap"
)

type HostelService struct {
	store   repository.Store
	history HistoryCache
	logger  *zap.Logger
}

func NewHostelService(store repository.Store, history HistoryCache, logger *zap.Logger) *HostelService {
	return &HostelService{
		store:   store,
		history: history,
		logger:  logger,
	}
}

type CreateHostelInput struct {
	Name              string
	HostelCampus      string
	Block             string
	Floor             string
	Location          string
	GenderRestriction model.GenderRestriction
	Description       string
}

// UpdateHostelInput nil - поле не меняется
type UpdateHostelInput struct {
	Name              *string
	HostelCampus      *string
	Block             *string
	Floor             *string
	Location          *string
	GenderRestriction *model.GenderRestriction
	Description       *string
}

type requiredField struct {
	field string
	value string
}

func validateRequired(fields ...requiredField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperr.Validation(f.field + " is required")
		}
	}
	return nil
}

func validateGender(g model.GenderRestriction) error {
	switch g {
	case model.GenderMale, model.GenderFemale, model.GenderMixed:
		return nil
	default:
		return apperr.Validation("genderRestriction must be one of: male, female, mixed")
	}
}

// Create создаёт общежитие
func (s *HostelService) Create(ctx context.Context, in CreateHostelInput) (*model.Hostel, error) {
	err := validateRequired(
		requiredField{"name", in.Name},
		requiredField{"hostelCampus", in.HostelCampus},
		requiredField{"block", in.Block},
		requiredField{"floor", in.Floor},
		requiredField{"location", in.Location},
	)
	if err != nil {
		return nil, err
	}

	if in.GenderRestriction == "" {
		in.GenderRestriction = model.GenderMixed
	}
	if err := validateGender(in.GenderRestriction); err != nil {
		return nil, err
	}

	hostel := &model.Hostel{
		Name:              strings.TrimSpace(in.Name),
		HostelCampus:      strings.TrimSpace(in.HostelCampus),
		Block:             strings.TrimSpace(in.Block),
		Floor:             strings.TrimSpace(in.Floor),
		Location:          strings.TrimSpace(in.Location),
		GenderRestriction: in.GenderRestriction,
		Description:       in.Description,
	}

	if err := s.store.Hostels().Create(ctx, hostel); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, err
		}
		return nil, fmt.Errorf("create hostel: %w", err)
	}

	s.logger.Info("Hostel created",
		zap.Int64("hostel_id", hostel.ID),
		zap.String("name", hostel.Name),
	)

	return hostel, nil
}

// Update меняет переданные поля общежития
func (s *HostelService) Update(ctx context.Context, hostelID int64, in UpdateHostelInput) (*model.Hostel, error) {
	hostel, err := s.GetByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&hostel.Name, in.Name)
	set(&hostel.HostelCampus, in.HostelCampus)
	set(&hostel.Block, in.Block)
	set(&hostel.Floor, in.Floor)
	set(&hostel.Location, in.Location)
	if in.Description != nil {
		hostel.Description = *in.Description
	}
	if in.GenderRestriction != nil {
		hostel.GenderRestriction = *in.GenderRestriction
	}

	err = validateRequired(
		requiredField{"name", hostel.Name},
		requiredField{"hostelCampus", hostel.HostelCampus},
		requiredField{"block", hostel.Block},
		requiredField{"floor", hostel.Floor},
		requiredField{"location", hostel.Location},
	)
	if err != nil {
		return nil, err
	}
	if err := validateGender(hostel.GenderRestriction); err != nil {
		return nil, err
	}

	if err := s.store.Hostels().Update(ctx, hostel); err != nil {
		return nil, fmt.Errorf("update hostel: %w", err)
	}

	// Название общежития входит в историю заявок
	invalidateHistory(ctx, s.history, s.logger)

	s.logger.Info("Hostel updated",
		zap.Int64("hostel_id", hostel.ID),
		zap.String("name", hostel.Name),
	)

	return hostel, nil
}

// Delete удаляет общежитие без комнат
func (s *HostelService) Delete(ctx context.Context, hostelID int64) error {
	if err := s.store.Hostels().Delete(ctx, hostelID); err != nil {
		return fmt.Errorf("delete hostel: %w", err)
	}

	s.logger.Info("Hostel deleted", zap.Int64("hostel_id", hostelID))
	return nil
}

// GetByID получает общежитие по ID
func (s *HostelService) GetByID(ctx context.Context, hostelID int64) (*model.Hostel, error) {
	hostel, err := s.store.Hostels().GetByID(ctx, hostelID)
	if err != nil {
		return nil, fmt.Errorf("get hostel: %w", err)
	}
	if hostel == nil {
		return nil, apperr.ErrHostelNotFound
	}
	return hostel, nil
}

// List получает все общежития
func (s *HostelService) List(ctx context.Context) ([]*model.Hostel, error) {
	hostels, err := s.store.Hostels().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}
	return hostels, nil
}
