// Package manager owns the schedule lifecycle: creation, the claim/free/edit
// mutations, the active-schedule selection policy, and the one-shot
// completion dispatch.
package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vigil/internal/metrics"
	"vigil/internal/model"
	"vigil/internal/notify"
	"vigil/internal/slots"
)

// ScheduleStore is the storage surface the manager needs.
type ScheduleStore interface {
	GetSchedule(ctx context.Context, id string) (*model.Schedule, error)
	ListSchedules(ctx context.Context) ([]model.Schedule, error)
	SaveSchedule(ctx context.Context, s *model.Schedule) error
	MergeSchedule(ctx context.Context, id string, fields map[string]any) error
	DeleteSchedule(ctx context.Context, id string) error
	GetAdminConfig(ctx context.Context) (*model.AdminConfig, error)
	SaveAdminConfig(ctx context.Context, cfg *model.AdminConfig) error
	GetMessagingConfig(ctx context.Context) (*model.MessagingConfig, error)
	SaveMessagingConfig(ctx context.Context, msg *model.MessagingConfig, admin *model.AdminConfig) error
}

// Notifier dispatches a rendered summary to the configured destination.
type Notifier interface {
	SendSummary(ctx context.Context, number, text string) error
}

// Service provides schedule operations.
type Service struct {
	store    ScheduleStore
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a schedule manager.
func NewService(store ScheduleStore, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "manager").Logger(),
		now:      time.Now,
	}
}

// CreateSchedule validates the range, generates the slot sequence and
// persists a fresh schedule. Validation failures never reach the store.
func (s *Service) CreateSchedule(ctx context.Context, startDate, endDate time.Time, startHour, endHour int) (*model.Schedule, error) {
	start := model.Day(startDate)
	end := model.Day(endDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start date after end date", model.ErrInvalidRange)
	}
	if !slots.ValidHour(startHour) || !slots.ValidHour(endHour) {
		return nil, fmt.Errorf("%w: hours outside 0-24", model.ErrInvalidRange)
	}

	// A single day with startHour >= endHour generates nothing and is
	// rejected here as an empty range.
	generated := slots.Generate(start, end, startHour, endHour)
	if len(generated) == 0 {
		return nil, model.ErrEmptyRange
	}

	schedule := &model.Schedule{
		ID:        model.ScheduleID(start),
		Slots:     generated,
		StartDate: start,
		EndDate:   end,
		StartHour: startHour,
		EndHour:   endHour,
	}
	if err := s.store.SaveSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	metrics.IncScheduleCreated()
	s.logger.Info().
		Str("schedule_id", schedule.ID).
		Int("slots", len(schedule.Slots)).
		Msg("schedule created")
	return schedule, nil
}

// GetSchedule loads one schedule by id.
func (s *Service) GetSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	return s.store.GetSchedule(ctx, id)
}

// ListSchedules returns all schedules ordered by start date.
func (s *Service) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	return s.store.ListSchedules(ctx)
}

// ActiveSchedule loads the schedule list and applies the selection policy
// for the given reference day. Returns nil without error when nothing
// current or upcoming exists.
func (s *Service) ActiveSchedule(ctx context.Context, today time.Time) (*model.Schedule, error) {
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return SelectActive(schedules, today), nil
}

// SelectActive picks the schedule to present for the reference day: the one
// whose range contains the day, else the one starting soonest after it, else
// the earliest-starting candidate. Schedules fully in the past are excluded
// up front. Pure; derived state is recomputed here rather than stored.
func SelectActive(schedules []model.Schedule, today time.Time) *model.Schedule {
	// Calendar-day labels compare lexicographically, independent of the
	// location today carries.
	day := today.Format(model.DayFormat)

	var candidates []model.Schedule
	for _, sched := range schedules {
		if !sched.EndsBefore(today) {
			candidates = append(candidates, sched)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for i := range candidates {
		if candidates[i].Contains(today) {
			return &candidates[i]
		}
	}

	var next *model.Schedule
	for i := range candidates {
		start := candidates[i].StartDate.Format(model.DayFormat)
		if start <= day {
			continue
		}
		if next == nil || start < next.StartDate.Format(model.DayFormat) {
			next = &candidates[i]
		}
	}
	if next != nil {
		return next
	}

	earliest := &candidates[0]
	for i := range candidates {
		if candidates[i].StartDate.Format(model.DayFormat) < earliest.StartDate.Format(model.DayFormat) {
			earliest = &candidates[i]
		}
	}
	return earliest
}

// ClaimSlot books the slot starting at the given instant. Conflicts are
// detected against the stored snapshot before any write.
func (s *Service) ClaimSlot(ctx context.Context, scheduleID string, startsAt time.Time, name, password string) (*model.Schedule, error) {
	if err := model.ValidateMemberName(name); err != nil {
		return nil, err
	}

	schedule, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	slot := schedule.FindSlot(startsAt)
	if slot == nil {
		return nil, model.ErrSlotNotFound
	}
	if err := slot.Claim(name, password); err != nil {
		return nil, err
	}

	if err := s.saveSlots(ctx, schedule); err != nil {
		return nil, err
	}
	metrics.IncSlotMutation("claim")
	s.logger.Info().
		Str("schedule_id", scheduleID).
		Time("slot", startsAt).
		Msg("slot claimed")

	s.maybeDispatch(ctx, schedule)
	return schedule, nil
}

// FreeSlot releases a booked slot. Non-admins must supply the slot's own
// passcode and are blocked entirely when the member-delete toggle is off.
func (s *Service) FreeSlot(ctx context.Context, scheduleID string, startsAt time.Time, suppliedPassword string, isAdmin bool) (*model.Schedule, error) {
	schedule, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	slot := schedule.FindSlot(startsAt)
	if slot == nil {
		return nil, model.ErrSlotNotFound
	}
	if !slot.IsBooked() {
		return nil, model.ErrNotBooked
	}

	if !isAdmin {
		cfg, err := s.store.GetAdminConfig(ctx)
		if err != nil {
			return nil, err
		}
		if !cfg.UserCanDeleteBookings {
			return nil, model.ErrNotAllowed
		}
		if suppliedPassword != slot.Booking.Password {
			return nil, model.ErrWrongPassword
		}
	}

	if err := slot.Free(); err != nil {
		return nil, err
	}
	if err := s.saveSlots(ctx, schedule); err != nil {
		return nil, err
	}
	metrics.IncSlotMutation("free")
	s.logger.Info().
		Str("schedule_id", scheduleID).
		Time("slot", startsAt).
		Bool("admin", isAdmin).
		Msg("slot freed")
	return schedule, nil
}

// EditBooking replaces the member name on a booked slot, leaving its
// passcode untouched. Admin-only by contract; callers gate access.
func (s *Service) EditBooking(ctx context.Context, scheduleID string, startsAt time.Time, newName string) (*model.Schedule, error) {
	if err := model.ValidateMemberName(newName); err != nil {
		return nil, err
	}

	schedule, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	slot := schedule.FindSlot(startsAt)
	if slot == nil {
		return nil, model.ErrSlotNotFound
	}
	if err := slot.Rename(newName); err != nil {
		return nil, err
	}

	if err := s.saveSlots(ctx, schedule); err != nil {
		return nil, err
	}
	metrics.IncSlotMutation("edit")
	s.logger.Info().
		Str("schedule_id", scheduleID).
		Time("slot", startsAt).
		Msg("booking edited")
	return schedule, nil
}

// DeleteSchedule removes a schedule permanently. Deleting an absent id is
// not an error.
func (s *Service) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	metrics.IncScheduleDeleted()
	s.logger.Info().Str("schedule_id", id).Msg("schedule deleted")
	return nil
}

// saveSlots persists the mutated slot array as a partial merge write so the
// schedule's other fields stay untouched.
func (s *Service) saveSlots(ctx context.Context, schedule *model.Schedule) error {
	return s.store.MergeSchedule(ctx, schedule.ID, map[string]any{
		"slots": schedule.Slots,
	})
}

// maybeDispatch fires the completion summary exactly once: on the mutation
// that makes every slot booked while the sent flag is still down. Dispatch
// failures are logged, not propagated; the claim that triggered them has
// already been persisted.
func (s *Service) maybeDispatch(ctx context.Context, schedule *model.Schedule) {
	if !schedule.AllSlotsBooked() || schedule.SummarySent {
		return
	}

	if err := s.dispatchSummary(ctx, schedule); err != nil {
		s.logger.Error().Err(err).
			Str("schedule_id", schedule.ID).
			Msg("completion dispatch failed")
		return
	}

	schedule.SummarySent = true
	if err := s.store.MergeSchedule(ctx, schedule.ID, map[string]any{
		"whatsAppSent": true,
	}); err != nil {
		s.logger.Error().Err(err).
			Str("schedule_id", schedule.ID).
			Msg("failed to persist dispatch flag")
		return
	}
	metrics.IncSummaryDispatched("auto")
}

// RedispatchSummary re-sends the summary on explicit admin request,
// regardless of the one-shot flag.
func (s *Service) RedispatchSummary(ctx context.Context, scheduleID string) error {
	schedule, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	if err := s.dispatchSummary(ctx, schedule); err != nil {
		return err
	}
	metrics.IncSummaryDispatched("manual")
	return nil
}

func (s *Service) dispatchSummary(ctx context.Context, schedule *model.Schedule) error {
	text := notify.FormatSummary(schedule)
	if text == "" {
		return fmt.Errorf("%w: nothing booked to dispatch", model.ErrNotBooked)
	}
	cfg, err := s.store.GetMessagingConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Number == "" {
		return fmt.Errorf("destination number not configured")
	}
	return s.notifier.SendSummary(ctx, cfg.Number, text)
}
