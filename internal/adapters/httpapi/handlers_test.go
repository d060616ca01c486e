package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memclock "github.com/campus-carpool/rides-api/internal/adapters/memory/clock"
	memfeedbackrepo "github.com/campus-carpool/rides-api/internal/adapters/memory/feedbackrepo"
	memmembershiprepo "github.com/campus-carpool/rides-api/internal/adapters/memory/membershiprepo"
	memriderepo "github.com/campus-carpool/rides-api/internal/adapters/memory/riderepo"
	memuserrepo "github.com/campus-carpool/rides-api/internal/adapters/memory/userrepo"
	"github.com/campus-carpool/rides-api/internal/adapters/push/lognotifier"
	"github.com/campus-carpool/rides-api/internal/app/rides"
	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
	"github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

type fixture struct {
	handler     http.Handler
	users       *memuserrepo.Repo
	ridesRepo   *memriderepo.Repo
	memberships *memmembershiprepo.Repo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memuserrepo.NewRepo()
	ridesRepo := memriderepo.NewRepo()
	memberships := memmembershiprepo.NewRepo()
	feedback := memfeedbackrepo.NewRepo()
	clk := memclock.NewManualClock(time.Date(2016, 10, 1, 12, 0, 0, 0, time.UTC))

	svc := rides.NewService(ridesRepo, memberships, users, feedback, lognotifier.NewGateway(nil), clk)
	handler := NewRouter(NewServer(svc), RouterOptions{
		AuthMiddleware: NewAuthMiddleware(users),
	})
	return &fixture{handler: handler, users: users, ridesRepo: ridesRepo, memberships: memberships}
}

func (f *fixture) addUser(id domain.UserID, token string) {
	f.users.Put(domain.User{ID: id, Name: "User " + string(id)}, token)
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("token", token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/ride/all", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status=%d, want 200", rec.Code)
	}
}

func TestRouter_CreateAndListRides(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addUser("11111111-1111-1111-1111-111111111111", "tok-alice")

	rec := f.do(t, http.MethodPost, "/ride", "tok-alice", `{
		"myzone": "North",
		"neighborhood": "Island Gardens",
		"place": "Beach",
		"route": "Red Line",
		"hub": "A",
		"slots": 4,
		"going": true,
		"mydate": "2016-10-24",
		"mytime": "16:40:00",
		"week_days": "2,4",
		"repeats_until": "2016-11-01"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}
	var created []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("created %d rides, want 4", len(created))
	}
	if created[0]["mydate"] != "2016-10-24" || created[0]["mytime"] != "16:40:00" {
		t.Fatalf("origin wire form=%v", created[0])
	}
	if created[1]["week_days"] != "2,4" {
		t.Fatalf("sibling week_days=%v, want \"2,4\"", created[1]["week_days"])
	}

	rec = f.do(t, http.MethodGet, "/ride/all", "tok-alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", rec.Code, rec.Body.String())
	}
	var listed []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 4 {
		t.Fatalf("listed %d rides, want 4", len(listed))
	}
	driver, ok := listed[0]["driver"].(map[string]any)
	if !ok || driver["id"] != "11111111-1111-1111-1111-111111111111" {
		t.Fatalf("driver=%v", listed[0]["driver"])
	}
}

func TestRouter_ValidateDuplicate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addUser("11111111-1111-1111-1111-111111111111", "tok-alice")

	rec := f.do(t, http.MethodPost, "/ride", "tok-alice", `{
		"myzone": "North",
		"slots": 2,
		"going": true,
		"mydate": "2016-10-24",
		"mytime": "16:00:00"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/ride/validateDuplicate?date=2016-10-24&time=16:30:00&going=true", "tok-alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("validate status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res validationResultJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode validate response: %v", err)
	}
	if res.Valid || res.Status != "duplicate" {
		t.Fatalf("result=%+v, want duplicate", res)
	}
	if res.Message != "The user has already offered a ride on the specified date." {
		t.Fatalf("message=%q", res.Message)
	}
}

func TestRouter_JoinWorkflow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	driverID := domain.UserID("11111111-1111-1111-1111-111111111111")
	riderID := domain.UserID("22222222-2222-2222-2222-222222222222")
	f.addUser(driverID, "tok-driver")
	f.addUser(riderID, "tok-rider")

	ctx := context.Background()
	if err := f.ridesRepo.Create(ctx, riderepo.Ride{
		ID:    "33333333-3333-3333-3333-333333333333",
		Zone:  "North",
		Going: true,
		Slots: 3,
		Date:  time.Date(2016, 12, 1, 8, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed ride: %v", err)
	}
	if err := f.memberships.Create(ctx, membershiprepo.Membership{
		RideID: "33333333-3333-3333-3333-333333333333",
		UserID: driverID,
		Status: domain.StatusDriver,
	}); err != nil {
		t.Fatalf("seed driver membership: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/ride/requestJoin", "tok-rider",
		`{"rideId": "33333333-3333-3333-3333-333333333333"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("requestJoin status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/ride/getRequesters/33333333-3333-3333-3333-333333333333", "tok-driver", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("getRequesters status=%d body=%s", rec.Code, rec.Body.String())
	}
	var requesters []userJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &requesters); err != nil {
		t.Fatalf("decode requesters: %v", err)
	}
	if len(requesters) != 1 || requesters[0].ID != string(riderID) {
		t.Fatalf("requesters=%+v", requesters)
	}

	// Non-drivers cannot see requesters.
	rec = f.do(t, http.MethodGet, "/ride/getRequesters/33333333-3333-3333-3333-333333333333", "tok-rider", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("getRequesters as rider status=%d, want 403", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/ride/answerJoinRequest", "tok-driver",
		`{"rideId": "33333333-3333-3333-3333-333333333333", "userId": "`+string(riderID)+`", "accepted": true}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("answerJoinRequest status=%d body=%s", rec.Code, rec.Body.String())
	}

	m, err := f.memberships.Get(ctx, "33333333-3333-3333-3333-333333333333", riderID)
	if err != nil || m.Status != domain.StatusAccepted {
		t.Fatalf("membership=%+v err=%v, want accepted", m, err)
	}
}

func TestRouter_ErrorShape(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addUser("11111111-1111-1111-1111-111111111111", "tok-alice")

	rec := f.do(t, http.MethodPost, "/ride/requestJoin", "tok-alice",
		`{"rideId": "99999999-9999-9999-9999-999999999999"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
	var er errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if er.Error.Code != "RIDE_NOT_FOUND" {
		t.Fatalf("code=%q, want RIDE_NOT_FOUND", er.Error.Code)
	}
}
