package httpapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/campus-carpool/rides-api/internal/domain"
)

// The wire format keeps the legacy mobile-client field names: myzone for the
// zone, mydate/mytime for the departure split into date and time, and
// week_days as a comma-separated ordinal list ("0"=Sunday .. "6"=Saturday).

type rideJSON struct {
	ID           string                    `json:"id"`
	MyZone       string                    `json:"myzone"`
	Neighborhood string                    `json:"neighborhood"`
	Going        bool                      `json:"going"`
	Place        string                    `json:"place"`
	Route        string                    `json:"route"`
	Description  string                    `json:"description"`
	Hub          string                    `json:"hub"`
	Slots        int                       `json:"slots"`
	MyDate       string                    `json:"mydate"`
	MyTime       string                    `json:"mytime"`
	WeekDays     nullable.Nullable[string] `json:"week_days,omitempty"`
	RepeatsUntil *openapi_types.Date       `json:"repeats_until,omitempty"`
	RoutineID    nullable.Nullable[string] `json:"routine_id,omitempty"`
	Done         bool                      `json:"done"`
}

type userJSON struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Profile       string  `json:"profile"`
	Course        string  `json:"course"`
	PhoneNumber   string  `json:"phone_number"`
	Email         string  `json:"email"`
	CarOwner      bool    `json:"car_owner"`
	CarModel      string  `json:"car_model"`
	CarColor      string  `json:"car_color"`
	CarPlate      string  `json:"car_plate"`
	Location      string  `json:"location"`
	FaceID        *string `json:"face_id,omitempty"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty"`
}

type rideWithDriverJSON struct {
	rideJSON
	Driver userJSON `json:"driver"`
}

type feedbackJSON struct {
	UserID  string `json:"user_id"`
	Comment string `json:"comment"`
}

type rideDetailsJSON struct {
	rideJSON
	Driver   userJSON      `json:"driver"`
	Riders   []userJSON    `json:"riders"`
	Feedback *feedbackJSON `json:"feedback,omitempty"`
}

type historyCountsJSON struct {
	OfferedCount int `json:"offeredCount"`
	TakenCount   int `json:"takenCount"`
}

type validationResultJSON struct {
	Valid   bool   `json:"valid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type createRideRequest struct {
	MyZone       string              `json:"myzone"`
	Neighborhood string              `json:"neighborhood"`
	Going        bool                `json:"going"`
	Place        string              `json:"place"`
	Route        string              `json:"route"`
	Description  string              `json:"description"`
	Hub          string              `json:"hub"`
	Slots        int                 `json:"slots"`
	MyDate       string              `json:"mydate"`
	MyTime       string              `json:"mytime"`
	WeekDays     *string             `json:"week_days,omitempty"`
	RepeatsUntil *openapi_types.Date `json:"repeats_until,omitempty"`
}

type rideRefRequest struct {
	RideID string `json:"rideId"`
}

type answerJoinRequest struct {
	RideID   string `json:"rideId"`
	UserID   string `json:"userId"`
	Accepted bool   `json:"accepted"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type feedbackRequest struct {
	RideID   string `json:"rideId"`
	Feedback string `json:"feedback"`
}

// --- conversions ---

func toRideJSON(r domain.Ride) rideJSON {
	out := rideJSON{
		ID:           string(r.ID),
		MyZone:       r.Zone,
		Neighborhood: r.Neighborhood,
		Going:        r.Going,
		Place:        r.Place,
		Route:        r.Route,
		Description:  r.Description,
		Hub:          r.Hub,
		Slots:        r.Slots,
		MyDate:       r.Date.Format("2006-01-02"),
		MyTime:       r.Date.Format("15:04:05"),
		Done:         r.Done,
	}
	if len(r.WeekDays) > 0 {
		out.WeekDays = nullable.NewNullableWithValue(formatWeekDays(r.WeekDays))
	}
	if r.RepeatsUntil != nil {
		d := openapi_types.Date{Time: *r.RepeatsUntil}
		out.RepeatsUntil = &d
	}
	if r.RoutineID != nil {
		out.RoutineID = nullable.NewNullableWithValue(string(*r.RoutineID))
	}
	return out
}

func toUserJSON(u domain.User) userJSON {
	return userJSON{
		ID:            string(u.ID),
		Name:          u.Name,
		Profile:       u.Profile,
		Course:        u.Course,
		PhoneNumber:   u.PhoneNumber,
		Email:         u.Email,
		CarOwner:      u.CarOwner,
		CarModel:      u.CarModel,
		CarColor:      u.CarColor,
		CarPlate:      u.CarPlate,
		Location:      u.Location,
		FaceID:        u.FaceID,
		ProfilePicURL: u.ProfilePicURL,
	}
}

func toRideWithDriverJSON(r domain.RideWithDriver) rideWithDriverJSON {
	return rideWithDriverJSON{
		rideJSON: toRideJSON(r.Ride),
		Driver:   toUserJSON(r.Driver),
	}
}

func toRideDetailsJSON(d domain.RideDetails) rideDetailsJSON {
	out := rideDetailsJSON{
		rideJSON: toRideJSON(d.Ride),
		Driver:   toUserJSON(d.Driver),
		Riders:   make([]userJSON, 0, len(d.Riders)),
	}
	for _, u := range d.Riders {
		out.Riders = append(out.Riders, toUserJSON(u))
	}
	if d.Feedback != nil {
		out.Feedback = &feedbackJSON{
			UserID:  string(d.Feedback.UserID),
			Comment: d.Feedback.Comment,
		}
	}
	return out
}

func formatWeekDays(wd []time.Weekday) string {
	parts := make([]string, 0, len(wd))
	for _, d := range wd {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func parseWeekDays(s string) ([]time.Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("week_days entry %q is not a number", p)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

// parseDateTime combines the mydate/mytime pair into one UTC instant.
// Seconds in mytime are optional.
func parseDateTime(dateStr, timeStr string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(dateStr), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("mydate must be YYYY-MM-DD")
	}
	ts := strings.TrimSpace(timeStr)
	var t time.Time
	if t, err = time.Parse("15:04:05", ts); err != nil {
		if t, err = time.Parse("15:04", ts); err != nil {
			return time.Time{}, fmt.Errorf("mytime must be HH:MM or HH:MM:SS")
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}
