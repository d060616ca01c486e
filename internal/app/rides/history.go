package rides

import (
	"context"
	"errors"
	"sort"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/feedbackrepo"
	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

// GetHistory returns the user's completed rides, ascending by date. A ride
// is included iff it is done and the user holds a driver or accepted
// membership on it; pending and rejected memberships never count. Each
// result carries the driver's profile, the accepted riders and the ride's
// feedback, if any.
func (s *Service) GetHistory(ctx context.Context, user domain.UserID) ([]domain.RideDetails, error) {
	ids, err := s.rideIDsWithStatus(ctx, user, domain.StatusDriver, domain.StatusAccepted)
	if err != nil {
		return nil, err
	}
	rs, err := s.rides.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RideDetails, 0, len(rs))
	for _, r := range rs {
		if !r.Done {
			continue
		}
		d, err := s.enrichRide(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetHistoryCounts summarizes the user's completed rides: offered counts
// driver memberships, taken counts accepted ones.
func (s *Service) GetHistoryCounts(ctx context.Context, user domain.UserID) (domain.HistoryCounts, error) {
	ms, err := s.memberships.ListByUser(ctx, user)
	if err != nil {
		return domain.HistoryCounts{}, err
	}

	var counts domain.HistoryCounts
	for _, m := range ms {
		switch m.Status {
		case domain.StatusDriver, domain.StatusAccepted:
		default:
			continue
		}
		r, err := s.rides.GetByID(ctx, m.RideID)
		if err != nil {
			if errors.Is(err, riderepo.ErrNotFound) {
				continue
			}
			return domain.HistoryCounts{}, err
		}
		if !r.Done {
			continue
		}
		if m.Status == domain.StatusDriver {
			counts.OfferedCount++
		} else {
			counts.TakenCount++
		}
	}
	return counts, nil
}

// enrichRide performs the read-side join: driver record, accepted riders and
// nullable feedback.
func (s *Service) enrichRide(ctx context.Context, r riderepo.Ride) (domain.RideDetails, error) {
	out := domain.RideDetails{
		Ride:   toDomainRide(r),
		Riders: []domain.User{},
	}

	ms, err := s.memberships.ListByRide(ctx, r.ID)
	if err != nil {
		return domain.RideDetails{}, err
	}
	for _, m := range ms {
		switch m.Status {
		case domain.StatusDriver:
			u, err := s.users.GetByID(ctx, m.UserID)
			if err != nil {
				return domain.RideDetails{}, err
			}
			out.Driver = u
		case domain.StatusAccepted:
			u, err := s.users.GetByID(ctx, m.UserID)
			if err != nil {
				return domain.RideDetails{}, err
			}
			out.Riders = append(out.Riders, u)
		case domain.StatusPending, domain.StatusRejected:
			// Never surfaced in history.
		}
	}
	sort.Slice(out.Riders, func(i, j int) bool { return out.Riders[i].ID < out.Riders[j].ID })

	fb, err := s.feedback.GetByRide(ctx, r.ID)
	switch {
	case err == nil:
		out.Feedback = &fb
	case errors.Is(err, feedbackrepo.ErrNotFound):
	default:
		return domain.RideDetails{}, err
	}
	return out, nil
}
