package rides

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campus-carpool/rides-api/internal/domain"
	clockport "github.com/campus-carpool/rides-api/internal/ports/out/clock"
	"github.com/campus-carpool/rides-api/internal/ports/out/feedbackrepo"
	"github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
	"github.com/campus-carpool/rides-api/internal/ports/out/notifier"
	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
	"github.com/campus-carpool/rides-api/internal/ports/out/userrepo"
)

// DefaultDuplicateThreshold is the time-proximity cutoff below which a
// proposed ride counts as a duplicate of an existing offer.
const DefaultDuplicateThreshold = 60 * time.Minute

type Service struct {
	rides       riderepo.Repository
	memberships membershiprepo.Repository
	users       userrepo.Repository
	feedback    feedbackrepo.Repository
	gateway     notifier.Gateway
	clock       clockport.Clock

	log          *slog.Logger
	dupThreshold time.Duration
	newRideID    func() domain.RideID
}

func NewService(
	ridesRepo riderepo.Repository,
	membershipsRepo membershiprepo.Repository,
	usersRepo userrepo.Repository,
	feedbackRepo feedbackrepo.Repository,
	gateway notifier.Gateway,
	clk clockport.Clock,
) *Service {
	return &Service{
		rides:        ridesRepo,
		memberships:  membershipsRepo,
		users:        usersRepo,
		feedback:     feedbackRepo,
		gateway:      gateway,
		clock:        clk,
		log:          slog.Default(),
		dupThreshold: DefaultDuplicateThreshold,
		newRideID: func() domain.RideID {
			return domain.RideID(uuid.NewString())
		},
	}
}

// SetLogger overrides the logger used for swallowed notification failures.
func (s *Service) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetDuplicateThreshold overrides the near-duplicate cutoff.
func (s *Service) SetDuplicateThreshold(d time.Duration) {
	if d > 0 {
		s.dupThreshold = d
	}
}

// SetNewRideIDForTest overrides ride ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewRideIDForTest(fn func() domain.RideID) {
	if fn != nil {
		s.newRideID = fn
	}
}

// CreateRide validates and persists a ride offer. A recurring input is
// expanded into its full routine first; every generated instance is checked
// against the driver's existing offers, and a single duplicate aborts the
// whole batch so no partial routine is committed.
func (s *Service) CreateRide(ctx context.Context, driver domain.UserID, in CreateRideInput) ([]domain.Ride, error) {
	if _, err := s.users.GetByID(ctx, driver); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid caller", Details: map[string]any{"userId": "caller does not exist"}}
		}
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid date", Details: map[string]any{"date": "must be set"}}
	}
	if in.Slots < 1 {
		return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid slots", Details: map[string]any{"slots": "must be >= 1"}}
	}
	if (len(in.WeekDays) == 0) != (in.RepeatsUntil == nil) {
		return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid recurrence rule", Details: map[string]any{"week_days": "week_days and repeats_until must be provided together"}}
	}

	now := s.clock.Now()
	template := riderepo.Ride{
		Zone:         in.Zone,
		Neighborhood: in.Neighborhood,
		Going:        in.Going,
		Place:        in.Place,
		Route:        in.Route,
		Description:  in.Description,
		Hub:          in.Hub,
		Slots:        in.Slots,
		Date:         in.Date,
		WeekDays:     append([]time.Weekday(nil), in.WeekDays...),
		RepeatsUntil: cloneTimePtr(in.RepeatsUntil),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	batch, err := expandRoutine(template)
	if err != nil {
		return nil, err
	}

	existing, err := s.offeredRides(ctx, driver)
	if err != nil {
		return nil, err
	}
	for _, r := range batch {
		res := classifyProposal(existing, r.Date, r.Going, s.dupThreshold)
		if res.Status == ValidationDuplicate {
			return nil, &Error{
				Status:  409,
				Code:    "RIDE_DUPLICATE",
				Message: res.Message,
				Details: map[string]any{"date": r.Date.Format(time.RFC3339)},
			}
		}
	}

	// Assign identifiers: the first element is the routine's origin; every
	// sibling points back at it.
	originID := s.newRideID()
	batch[0].ID = originID
	for i := 1; i < len(batch); i++ {
		id := originID
		batch[i].ID = s.newRideID()
		batch[i].RoutineID = &id
	}

	if err := s.rides.CreateBatch(ctx, batch); err != nil {
		if errors.Is(err, riderepo.ErrAlreadyExists) {
			return nil, &Error{Status: 409, Code: "RIDE_ID_CONFLICT", Message: "ride id conflict"}
		}
		return nil, err
	}
	for _, r := range batch {
		m := membershiprepo.Membership{
			RideID:    r.ID,
			UserID:    driver,
			Status:    domain.StatusDriver,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.memberships.Create(ctx, m); err != nil {
			return nil, err
		}
	}

	out := make([]domain.Ride, 0, len(batch))
	for _, r := range batch {
		out = append(out, toDomainRide(r))
	}
	return out, nil
}

// ValidateDuplicate classifies a proposed departure against the caller's
// existing offers without persisting anything.
func (s *Service) ValidateDuplicate(ctx context.Context, driver domain.UserID, date time.Time, going bool) (ValidationResult, error) {
	existing, err := s.offeredRides(ctx, driver)
	if err != nil {
		return ValidationResult{}, err
	}
	return classifyProposal(existing, date, going, s.dupThreshold), nil
}

// DeleteRide removes a single ride and its memberships. Only a driver of the
// ride may delete it; remaining members are told the ride was cancelled.
func (s *Service) DeleteRide(ctx context.Context, rideID domain.RideID, caller domain.UserID) error {
	if _, err := s.getRide(ctx, rideID); err != nil {
		return err
	}
	if err := s.requireStatus(ctx, rideID, caller, domain.StatusDriver); err != nil {
		return err
	}

	s.notifyRideMembers(ctx, rideID, caller, notifier.Event{
		Kind:    notifier.EventRideCancelled,
		RideID:  rideID,
		ActorID: caller,
	})

	if err := s.memberships.DeleteByRide(ctx, rideID); err != nil {
		return err
	}
	if err := s.feedback.DeleteByRide(ctx, rideID); err != nil {
		return err
	}
	return s.rides.Delete(ctx, rideID)
}

// DeleteRoutine removes the origin ride and all of its siblings. The caller
// must be a driver of the origin ride.
func (s *Service) DeleteRoutine(ctx context.Context, routineID domain.RideID, caller domain.UserID) error {
	if _, err := s.getRide(ctx, routineID); err != nil {
		return err
	}
	if err := s.requireStatus(ctx, routineID, caller, domain.StatusDriver); err != nil {
		return err
	}

	deleted, err := s.rides.DeleteRoutine(ctx, routineID)
	if err != nil {
		if errors.Is(err, riderepo.ErrNotFound) {
			return &Error{Status: 404, Code: "RIDE_NOT_FOUND", Message: "ride not found"}
		}
		return err
	}
	for _, id := range deleted {
		s.notifyRideMembers(ctx, id, caller, notifier.Event{
			Kind:    notifier.EventRideCancelled,
			RideID:  id,
			ActorID: caller,
		})
		if err := s.memberships.DeleteByRide(ctx, id); err != nil {
			return err
		}
		if err := s.feedback.DeleteByRide(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// RequestJoin records the caller's interest in a ride as a pending
// membership and notifies the ride's drivers. A previously rejected user may
// request again; any other existing membership is a conflict.
func (s *Service) RequestJoin(ctx context.Context, rideID domain.RideID, user domain.UserID) error {
	if _, err := s.getRide(ctx, rideID); err != nil {
		return err
	}

	now := s.clock.Now()
	existing, err := s.memberships.Get(ctx, rideID, user)
	switch {
	case err == nil:
		switch existing.Status {
		case domain.StatusRejected:
			existing.Status = domain.StatusPending
			existing.UpdatedAt = now
			if err := s.memberships.Save(ctx, existing); err != nil {
				return err
			}
		case domain.StatusDriver, domain.StatusPending, domain.StatusAccepted:
			return &Error{Status: 409, Code: "MEMBERSHIP_ALREADY_EXISTS", Message: "a membership already exists for this ride"}
		default:
			return &Error{Status: 409, Code: "INVALID_MEMBERSHIP_STATE", Message: "membership is in an unknown state"}
		}
	case errors.Is(err, membershiprepo.ErrNotFound):
		m := membershiprepo.Membership{
			RideID:    rideID,
			UserID:    user,
			Status:    domain.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.memberships.Create(ctx, m); err != nil {
			if errors.Is(err, membershiprepo.ErrAlreadyExists) {
				// Lost a race with another request for the same pair.
				return &Error{Status: 409, Code: "MEMBERSHIP_ALREADY_EXISTS", Message: "a membership already exists for this ride"}
			}
			return err
		}
	default:
		return err
	}

	members, err := s.memberships.ListByRide(ctx, rideID)
	if err != nil {
		return err
	}
	ev := notifier.Event{Kind: notifier.EventJoinRequested, RideID: rideID, ActorID: user}
	for _, m := range members {
		if m.Status == domain.StatusDriver {
			s.notifyUser(ctx, m.UserID, ev)
		}
	}
	return nil
}

// AnswerJoinRequest accepts or rejects a pending join request. Only a driver
// of the ride may answer; rejected memberships are retained so history and
// re-request logic can observe them.
func (s *Service) AnswerJoinRequest(ctx context.Context, rideID domain.RideID, caller, target domain.UserID, accept bool) error {
	if _, err := s.getRide(ctx, rideID); err != nil {
		return err
	}
	if err := s.requireStatus(ctx, rideID, caller, domain.StatusDriver); err != nil {
		return err
	}

	m, err := s.memberships.Get(ctx, rideID, target)
	if err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return &Error{Status: 404, Code: "MEMBERSHIP_NOT_FOUND", Message: "no join request from this user"}
		}
		return err
	}
	if m.Status != domain.StatusPending {
		return &Error{Status: 409, Code: "MEMBERSHIP_NOT_PENDING", Message: "join request is not pending", Details: map[string]any{"status": string(m.Status)}}
	}

	ev := notifier.Event{RideID: rideID, ActorID: caller}
	if accept {
		m.Status = domain.StatusAccepted
		ev.Kind = notifier.EventJoinAccepted
	} else {
		m.Status = domain.StatusRejected
		ev.Kind = notifier.EventJoinRejected
	}
	m.UpdatedAt = s.clock.Now()
	if err := s.memberships.Save(ctx, m); err != nil {
		return err
	}
	s.notifyUser(ctx, target, ev)
	return nil
}

// LeaveRide removes the caller's membership. Accepted riders simply leave;
// a driver leaving with no co-driver cancels the ride for everyone.
func (s *Service) LeaveRide(ctx context.Context, rideID domain.RideID, user domain.UserID) error {
	if _, err := s.getRide(ctx, rideID); err != nil {
		return err
	}
	m, err := s.memberships.Get(ctx, rideID, user)
	if err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return &Error{Status: 404, Code: "MEMBERSHIP_NOT_FOUND", Message: "no membership on this ride"}
		}
		return err
	}

	switch m.Status {
	case domain.StatusAccepted:
		if err := s.memberships.Delete(ctx, rideID, user); err != nil {
			return err
		}
		s.notifyRideMembers(ctx, rideID, user, notifier.Event{
			Kind:    notifier.EventMemberLeft,
			RideID:  rideID,
			ActorID: user,
		})
		return nil
	case domain.StatusDriver:
		members, err := s.memberships.ListByRide(ctx, rideID)
		if err != nil {
			return err
		}
		for _, other := range members {
			if other.UserID != user && other.Status == domain.StatusDriver {
				// Another driver remains; leave like any member.
				if err := s.memberships.Delete(ctx, rideID, user); err != nil {
					return err
				}
				s.notifyRideMembers(ctx, rideID, user, notifier.Event{
					Kind:    notifier.EventMemberLeft,
					RideID:  rideID,
					ActorID: user,
				})
				return nil
			}
		}
		// Last driver out cancels the ride.
		s.notifyRideMembers(ctx, rideID, user, notifier.Event{
			Kind:    notifier.EventRideCancelled,
			RideID:  rideID,
			ActorID: user,
		})
		if err := s.memberships.DeleteByRide(ctx, rideID); err != nil {
			return err
		}
		if err := s.feedback.DeleteByRide(ctx, rideID); err != nil {
			return err
		}
		return s.rides.Delete(ctx, rideID)
	case domain.StatusPending, domain.StatusRejected:
		return &Error{Status: 409, Code: "INVALID_MEMBERSHIP_STATE", Message: "only accepted members or drivers can leave a ride", Details: map[string]any{"status": string(m.Status)}}
	default:
		return &Error{Status: 409, Code: "INVALID_MEMBERSHIP_STATE", Message: "membership is in an unknown state"}
	}
}

// FinishRide marks the trip as done. Finishing an already-done ride is a
// no-op success.
func (s *Service) FinishRide(ctx context.Context, rideID domain.RideID, caller domain.UserID) error {
	r, err := s.getRide(ctx, rideID)
	if err != nil {
		return err
	}
	if err := s.requireStatus(ctx, rideID, caller, domain.StatusDriver); err != nil {
		return err
	}
	if r.Done {
		return nil
	}
	r.Done = true
	r.UpdatedAt = s.clock.Now()
	return s.rides.Save(ctx, r)
}

// SendChatMessage relays a message to the other non-rejected members of the
// ride. Nothing is persisted.
func (s *Service) SendChatMessage(ctx context.Context, rideID domain.RideID, sender domain.UserID, text string) error {
	if strings.TrimSpace(text) == "" {
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid message", Details: map[string]any{"message": "must be non-empty"}}
	}
	if _, err := s.getRide(ctx, rideID); err != nil {
		return err
	}
	m, err := s.memberships.Get(ctx, rideID, sender)
	if err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return &Error{Status: 403, Code: "FORBIDDEN", Message: "sender is not a member of this ride"}
		}
		return err
	}
	if m.Status == domain.StatusRejected {
		return &Error{Status: 403, Code: "FORBIDDEN", Message: "rejected members cannot send messages"}
	}

	s.notifyRideMembers(ctx, rideID, sender, notifier.Event{
		Kind:    notifier.EventChatMessage,
		RideID:  rideID,
		ActorID: sender,
		Message: text,
	})
	return nil
}

// GetRequesters returns the users with pending join requests on a ride.
// Only a driver of the ride may see them.
func (s *Service) GetRequesters(ctx context.Context, rideID domain.RideID, caller domain.UserID) ([]domain.User, error) {
	if _, err := s.getRide(ctx, rideID); err != nil {
		return nil, err
	}
	if err := s.requireStatus(ctx, rideID, caller, domain.StatusDriver); err != nil {
		return nil, err
	}

	members, err := s.memberships.ListByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0)
	for _, m := range members {
		if m.Status != domain.StatusPending {
			continue
		}
		u, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// SaveFeedback attaches a rider's note to a ride. Only accepted riders may
// leave feedback.
func (s *Service) SaveFeedback(ctx context.Context, rideID domain.RideID, user domain.UserID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid feedback", Details: map[string]any{"feedback": "must be non-empty"}}
	}
	if _, err := s.getRide(ctx, rideID); err != nil {
		return err
	}
	if err := s.requireStatus(ctx, rideID, user, domain.StatusAccepted); err != nil {
		return err
	}
	return s.feedback.Upsert(ctx, domain.Feedback{
		RideID:    rideID,
		UserID:    user,
		Comment:   comment,
		CreatedAt: s.clock.Now(),
	})
}

// ListUpcomingRides returns every not-done ride departing from now on, each
// with its driver's profile. Rides still waiting for a driver are omitted.
func (s *Service) ListUpcomingRides(ctx context.Context) ([]domain.RideWithDriver, error) {
	rs, err := s.rides.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	out := make([]domain.RideWithDriver, 0, len(rs))
	for _, r := range rs {
		driver, ok, err := s.driverOf(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.RideWithDriver{Ride: toDomainRide(r), Driver: driver})
	}
	return out, nil
}

// GetMyActiveRides returns the user's not-yet-done rides where they drive or
// ride as an accepted member.
func (s *Service) GetMyActiveRides(ctx context.Context, user domain.UserID) ([]domain.RideWithDriver, error) {
	ids, err := s.rideIDsWithStatus(ctx, user, domain.StatusDriver, domain.StatusAccepted)
	if err != nil {
		return nil, err
	}
	rs, err := s.rides.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RideWithDriver, 0, len(rs))
	for _, r := range rs {
		if r.Done {
			continue
		}
		driver, ok, err := s.driverOf(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.RideWithDriver{Ride: toDomainRide(r), Driver: driver})
	}
	return out, nil
}

func (s *Service) getRide(ctx context.Context, rideID domain.RideID) (riderepo.Ride, error) {
	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, riderepo.ErrNotFound) {
			return riderepo.Ride{}, &Error{Status: 404, Code: "RIDE_NOT_FOUND", Message: "ride not found"}
		}
		return riderepo.Ride{}, err
	}
	return r, nil
}

// requireStatus guards a transition on the caller holding the given status.
func (s *Service) requireStatus(ctx context.Context, rideID domain.RideID, user domain.UserID, want domain.MembershipStatus) error {
	m, err := s.memberships.Get(ctx, rideID, user)
	if err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return &Error{Status: 403, Code: "FORBIDDEN", Message: "caller has no membership on this ride"}
		}
		return err
	}
	if m.Status != want {
		return &Error{Status: 403, Code: "FORBIDDEN", Message: "caller does not hold the required role", Details: map[string]any{"required": string(want)}}
	}
	return nil
}

// offeredRides returns the rides on which the user holds driver status.
func (s *Service) offeredRides(ctx context.Context, user domain.UserID) ([]riderepo.Ride, error) {
	ids, err := s.rideIDsWithStatus(ctx, user, domain.StatusDriver)
	if err != nil {
		return nil, err
	}
	return s.rides.ListByIDs(ctx, ids)
}

func (s *Service) rideIDsWithStatus(ctx context.Context, user domain.UserID, statuses ...domain.MembershipStatus) ([]domain.RideID, error) {
	ms, err := s.memberships.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RideID, 0, len(ms))
	for _, m := range ms {
		for _, st := range statuses {
			if m.Status == st {
				out = append(out, m.RideID)
				break
			}
		}
	}
	return out, nil
}

func (s *Service) driverOf(ctx context.Context, rideID domain.RideID) (domain.User, bool, error) {
	ms, err := s.memberships.ListByRide(ctx, rideID)
	if err != nil {
		return domain.User{}, false, err
	}
	for _, m := range ms {
		if m.Status != domain.StatusDriver {
			continue
		}
		u, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			return domain.User{}, false, err
		}
		return u, true, nil
	}
	return domain.User{}, false, nil
}

// notifyUser fires a best-effort notification; failures are logged and
// swallowed, never surfaced to the caller.
func (s *Service) notifyUser(ctx context.Context, user domain.UserID, ev notifier.Event) {
	if err := s.gateway.NotifyUser(ctx, user, ev); err != nil {
		s.log.Warn("notification delivery failed",
			"event", string(ev.Kind), "user", string(user), "error", err)
	}
}

func (s *Service) notifyRideMembers(ctx context.Context, rideID domain.RideID, exclude domain.UserID, ev notifier.Event) {
	if err := s.gateway.NotifyRideMembers(ctx, rideID, exclude, ev); err != nil {
		s.log.Warn("notification delivery failed",
			"event", string(ev.Kind), "ride", string(rideID), "error", err)
	}
}

func toDomainRide(r riderepo.Ride) domain.Ride {
	out := domain.Ride{
		ID:           r.ID,
		Zone:         r.Zone,
		Neighborhood: r.Neighborhood,
		Going:        r.Going,
		Place:        r.Place,
		Route:        r.Route,
		Description:  r.Description,
		Hub:          r.Hub,
		Slots:        r.Slots,
		Date:         r.Date,
		Done:         r.Done,
	}
	if len(r.WeekDays) > 0 {
		out.WeekDays = append([]time.Weekday(nil), r.WeekDays...)
	}
	out.RepeatsUntil = cloneTimePtr(r.RepeatsUntil)
	if r.RoutineID != nil {
		v := *r.RoutineID
		out.RoutineID = &v
	}
	return out
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
