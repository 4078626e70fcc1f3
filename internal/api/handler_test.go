package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authn "github.com/johnnywrightiv/workout-tracker-sub000/internal/auth"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/persistence/memory"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/validation"
	sessionauth "github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

type outbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (o *outbox) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links[to] = resetURL
	return nil
}

func (o *outbox) token(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	link, ok := o.links[email]
	require.True(t, ok, "no reset email for %s", email)
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

type testServer struct {
	handler http.Handler
	tokens  *sessionauth.TokenService
	store   *memory.Store
	mail    *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	tokens, err := sessionauth.NewTokenService(sessionauth.Config{Secret: "handler-test-secret", Issuer: "workout-tracker"})
	require.NoError(t, err)
	mail := &outbox{links: map[string]string{}}
	logger := zerolog.Nop()

	accounts := domain.NewAccountService(store, authn.NewHasher(bcrypt.MinCost), tokens, mail,
		domain.AccountConfig{BaseURL: "http://localhost:3000", ResetTTL: time.Hour}, logger)

	h := NewHandler(Dependencies{
		Accounts:   accounts,
		Workouts:   domain.NewWorkoutService(store, nil, logger),
		Templates:  domain.NewTemplateService(store, nil, logger),
		Verifier:   tokens,
		Cookies:    authn.CookieWriter{MaxAge: tokens.TTL()},
		CORSOrigin: "http://localhost:3000",
		Logger:     logger,
	})
	return &testServer{handler: h.Routes(), tokens: tokens, store: store, mail: mail}
}

type response struct {
	status  int
	header  http.Header
	cookies []*http.Cookie
	body    []byte
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dst), string(r.body))
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	res := rec.Result()
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return response{status: res.StatusCode, header: res.Header, cookies: res.Cookies(), body: raw}
}

func sessionCookie(t *testing.T, res response) *http.Cookie {
	t.Helper()
	for _, c := range res.cookies {
		if c.Name == sessionauth.CookieName {
			return c
		}
	}
	t.Fatalf("response carries no %q cookie", sessionauth.CookieName)
	return nil
}

func (s *testServer) signup(t *testing.T, email string) *http.Cookie {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": "Abcdefg1!", "name": "A",
	}, nil)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	return sessionCookie(t, res)
}

func sampleWorkout() map[string]any {
	return map[string]any{
		"name":      "Leg Day",
		"startTime": "2024-05-06T18:00:00Z",
		"endTime":   "2024-05-06T19:15:00Z",
		"notes":     "felt strong",
		"exercises": []map[string]any{
			{"name": "Squat", "sets": 5, "reps": 5, "weight": 120, "exerciseType": "Strength", "completed": true},
			{"name": "Bike", "duration": 10, "speed": 25, "exerciseType": "Cardio"},
		},
	}
}

func TestSignupLoginAndListScenario(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "Abcdefg1!", "name": "A",
	}, nil)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))

	var created AuthResponse
	res.decode(t, &created)
	require.Equal(t, "a@x.com", created.User.Email)
	require.Equal(t, domain.DefaultPreferences(), created.User.Preferences)

	identity, err := s.tokens.Verify(sessionCookie(t, res).Value)
	require.NoError(t, err)
	require.Equal(t, created.User.ID, identity.UserID)

	res = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, res.status)
	require.JSONEq(t, `{"type":"unauthorized","detail":"Invalid credentials"}`, string(res.body))

	res = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "Abcdefg1!"}, nil)
	require.Equal(t, http.StatusOK, res.status)
	cookie := sessionCookie(t, res)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 3600, cookie.MaxAge)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	res = s.do(t, http.MethodGet, "/api/workouts", nil, cookie)
	require.Equal(t, http.StatusOK, res.status)
	require.Equal(t, "[]", strings.TrimSpace(string(res.body)))
}

func TestSignupWithTakenEmailConflicts(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@x.com")

	res := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "A@X.com", "password": "Abcdefg1!", "name": "Again",
	}, nil)
	require.Equal(t, http.StatusConflict, res.status)
}

func TestSignupValidationReportsFields(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "not-an-email", "password": "short", "name": "",
	}, nil)
	require.Equal(t, http.StatusBadRequest, res.status)

	var body errorResponse
	res.decode(t, &body)
	require.Equal(t, "validation_failed", body.Type)
	fields := map[string]bool{}
	for _, f := range body.Errors {
		fields[f.Field] = true
	}
	require.True(t, fields["email"])
	require.True(t, fields["password"])
	require.True(t, fields["name"])
}

func TestLoginFailuresAreByteIdentical(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@x.com")

	wrongPassword := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "Wrong123!"}, nil)
	unknownEmail := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@x.com", "password": "Abcdefg1!"}, nil)

	require.Equal(t, http.StatusUnauthorized, wrongPassword.status)
	require.Equal(t, wrongPassword.status, unknownEmail.status)
	require.Equal(t, wrongPassword.body, unknownEmail.body)
	require.Empty(t, wrongPassword.cookies)
	require.Empty(t, unknownEmail.cookies)
}

func TestGuardRejectsMissingOrMalformedTokens(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, http.MethodGet, "/api/workouts", nil, nil)
	require.Equal(t, http.StatusUnauthorized, res.status)
	require.JSONEq(t, `{"type":"unauthorized","detail":"Authentication required"}`, string(res.body))

	res = s.do(t, http.MethodGet, "/api/templates", nil, &http.Cookie{Name: "token", Value: "garbage"})
	require.Equal(t, http.StatusUnauthorized, res.status)

	// Well-shaped but unsigned tokens get past the guard and are rejected by the handler.
	res = s.do(t, http.MethodGet, "/api/workouts", nil, &http.Cookie{Name: "token", Value: "aaa.bbb.ccc"})
	require.Equal(t, http.StatusUnauthorized, res.status)

	res = s.do(t, http.MethodGet, "/dashboard?tab=week", nil, nil)
	require.Equal(t, http.StatusSeeOther, res.status)
	require.Equal(t, "/login?redirect=%2Fdashboard%3Ftab%3Dweek", res.header.Get("Location"))

	res = s.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, res.status)
}

func TestBearerTokenIsAccepted(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	req := httptest.NewRequest(http.MethodGet, "/api/workouts", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExpiredSessionIsUnauthenticated(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@x.com")

	issuedAt := time.Now().Add(-2 * time.Hour)
	old, err := sessionauth.NewTokenService(sessionauth.Config{Secret: "handler-test-secret", Issuer: "workout-tracker"},
		sessionauth.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	token, _, err := old.Issue(domain.NewID())
	require.NoError(t, err)

	res := s.do(t, http.MethodGet, "/api/workouts", nil, &http.Cookie{Name: "token", Value: token})
	require.Equal(t, http.StatusUnauthorized, res.status)
}

func TestCheckAndLogout(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	res := s.do(t, http.MethodGet, "/api/auth/check", nil, cookie)
	require.Equal(t, http.StatusOK, res.status)
	var check CheckResponse
	res.decode(t, &check)
	require.True(t, check.IsAuthenticated)
	require.Equal(t, "a@x.com", check.User.Email)

	res = s.do(t, http.MethodGet, "/api/auth/check", nil, nil)
	require.Equal(t, http.StatusUnauthorized, res.status)
	require.JSONEq(t, `{"isAuthenticated":false}`, string(res.body))

	res = s.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, res.status)
	cleared := sessionCookie(t, res)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)
	require.Contains(t, res.header.Get("Set-Cookie"), "Max-Age=0")
}

func TestWorkoutsAreOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice@x.com")
	bob := s.signup(t, "bob@x.com")

	res := s.do(t, http.MethodPost, "/api/workouts", sampleWorkout(), alice)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	var workout domain.Workout
	res.decode(t, &workout)
	require.Equal(t, 75, workout.Duration)
	require.Len(t, workout.Exercises, 2)

	path := "/api/workouts/" + workout.ID
	missing := "/api/workouts/" + domain.NewID()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPut {
			body = sampleWorkout()
		}
		foreign := s.do(t, method, path, body, bob)
		absent := s.do(t, method, missing, body, bob)
		require.Equal(t, http.StatusNotFound, foreign.status, method)
		require.Equal(t, absent.status, foreign.status, method)
		require.Equal(t, absent.body, foreign.body, method)
	}

	res = s.do(t, http.MethodGet, "/api/workouts", nil, bob)
	require.Equal(t, "[]", strings.TrimSpace(string(res.body)))

	updated := sampleWorkout()
	updated["name"] = "Leg Day II"
	res = s.do(t, http.MethodPut, path, updated, alice)
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	res.decode(t, &workout)
	require.Equal(t, "Leg Day II", workout.Name)

	res = s.do(t, http.MethodDelete, path, nil, alice)
	require.Equal(t, http.StatusOK, res.status)
	res = s.do(t, http.MethodGet, path, nil, alice)
	require.Equal(t, http.StatusNotFound, res.status)
}

func TestTemplatesAreOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice@x.com")
	bob := s.signup(t, "bob@x.com")

	res := s.do(t, http.MethodPost, "/api/templates", map[string]any{
		"name":      "Pull",
		"duration":  40,
		"exercises": []map[string]any{{"name": "Row", "sets": 4, "reps": 10, "weight": 60, "exerciseType": "Strength"}},
	}, alice)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	var template domain.Template
	res.decode(t, &template)

	path := "/api/templates/" + template.ID
	missing := "/api/templates/" + domain.NewID()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPut {
			body = map[string]any{"name": "Taken over"}
		}
		foreign := s.do(t, method, path, body, bob)
		absent := s.do(t, method, missing, body, bob)
		require.Equal(t, http.StatusNotFound, foreign.status, method)
		require.Equal(t, absent.status, foreign.status, method)
		require.Equal(t, absent.body, foreign.body, method)
		require.JSONEq(t, `{"type":"not_found","detail":"template not found"}`, string(foreign.body), method)
	}

	res = s.do(t, http.MethodGet, path, nil, alice)
	require.Equal(t, http.StatusOK, res.status)
	var after domain.Template
	res.decode(t, &after)
	require.Equal(t, "Pull", after.Name)
	require.Equal(t, 40, after.Duration)
	require.Len(t, after.Exercises, 1)
	require.Equal(t, template.UpdatedAt, after.UpdatedAt)
}

func TestMalformedWorkoutIDIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	res := s.do(t, http.MethodGet, "/api/workouts/12345", nil, cookie)
	require.Equal(t, http.StatusBadRequest, res.status)
	require.JSONEq(t, `{"type":"invalid_id","detail":"invalid workout id"}`, string(res.body))
}

func TestWorkoutValidationReportsNestedFields(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	payload := sampleWorkout()
	payload["endTime"] = "2024-05-06T17:00:00Z"
	payload["exercises"] = []map[string]any{{"name": "", "reps": 5000, "exerciseType": "Yoga"}}

	res := s.do(t, http.MethodPost, "/api/workouts", payload, cookie)
	require.Equal(t, http.StatusBadRequest, res.status)

	var body errorResponse
	res.decode(t, &body)
	fields := map[string]string{}
	for _, f := range body.Errors {
		fields[f.Field] = f.Message
	}
	require.Contains(t, fields, "endTime")
	require.Contains(t, fields, "exercises[0].name")
	require.Contains(t, fields, "exercises[0].reps")
	require.Equal(t, "must be one of: Strength, Cardio", fields["exercises[0].exerciseType"])

	res = s.do(t, http.MethodPost, "/api/workouts", map[string]any{"name": "No start"}, cookie)
	require.Equal(t, http.StatusBadRequest, res.status)
	require.Contains(t, string(res.body), `"field":"startTime"`)
}

func TestTemplatesCRUD(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice@x.com")
	bob := s.signup(t, "bob@x.com")

	res := s.do(t, http.MethodPost, "/api/templates", map[string]any{
		"name":      "Push",
		"duration":  45,
		"exercises": []map[string]any{{"name": "Bench", "sets": 3, "reps": 8, "exerciseType": "Strength"}},
	}, alice)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	var template domain.Template
	res.decode(t, &template)

	res = s.do(t, http.MethodGet, "/api/templates/"+template.ID, nil, bob)
	require.Equal(t, http.StatusNotFound, res.status)

	res = s.do(t, http.MethodGet, "/api/templates", nil, alice)
	var list []domain.Template
	res.decode(t, &list)
	require.Len(t, list, 1)

	res = s.do(t, http.MethodPut, "/api/templates/"+template.ID, map[string]any{"name": "Push v2"}, alice)
	require.Equal(t, http.StatusOK, res.status)

	res = s.do(t, http.MethodDelete, "/api/templates/"+template.ID, nil, bob)
	require.Equal(t, http.StatusNotFound, res.status)
	res = s.do(t, http.MethodDelete, "/api/templates/"+template.ID, nil, alice)
	require.Equal(t, http.StatusOK, res.status)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@x.com")

	known := s.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "a@x.com"}, nil)
	unknown := s.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "ghost@x.com"}, nil)
	require.Equal(t, http.StatusOK, known.status)
	require.Equal(t, known.status, unknown.status)
	require.Equal(t, known.body, unknown.body)

	token := s.mail.token(t, "a@x.com")

	res := s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{"token": token, "password": "weak"}, nil)
	require.Equal(t, http.StatusBadRequest, res.status)

	res = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{"token": token, "password": "N3wPass!word"}, nil)
	require.Equal(t, http.StatusOK, res.status, string(res.body))

	res = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{"token": token, "password": "Other1!pass"}, nil)
	require.Equal(t, http.StatusBadRequest, res.status)
	require.JSONEq(t, `{"type":"invalid_token","detail":"Invalid or expired reset token"}`, string(res.body))

	res = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "N3wPass!word"}, nil)
	require.Equal(t, http.StatusOK, res.status)
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	res := s.do(t, http.MethodGet, "/api/user/preferences", nil, cookie)
	require.Equal(t, http.StatusOK, res.status)
	require.JSONEq(t, `{"colorScheme":"system","measurementSystem":"metric"}`, string(res.body))

	res = s.do(t, http.MethodPut, "/api/user/preferences", map[string]string{"colorScheme": "green"}, cookie)
	require.Equal(t, http.StatusBadRequest, res.status)
	require.Contains(t, string(res.body), `"field":"colorScheme"`)

	res = s.do(t, http.MethodGet, "/api/user/preferences", nil, cookie)
	require.JSONEq(t, `{"colorScheme":"system","measurementSystem":"metric"}`, string(res.body))

	res = s.do(t, http.MethodPut, "/api/user/preferences", map[string]string{"colorScheme": "dark"}, cookie)
	require.Equal(t, http.StatusOK, res.status)
	require.JSONEq(t, `{"colorScheme":"dark","measurementSystem":"metric"}`, string(res.body))

	res = s.do(t, http.MethodPut, "/api/user/preferences", map[string]string{"measurementSystem": "imperial"}, nil)
	require.Equal(t, http.StatusUnauthorized, res.status)
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	res := s.do(t, http.MethodPut, "/api/user/password", map[string]string{"currentPassword": "nope", "newPassword": "N3wPass!word"}, cookie)
	require.Equal(t, http.StatusBadRequest, res.status)
	require.Contains(t, string(res.body), "incorrect_password")

	res = s.do(t, http.MethodPut, "/api/user/password", map[string]string{"currentPassword": "Abcdefg1!", "newPassword": "N3wPass!word"}, cookie)
	require.Equal(t, http.StatusOK, res.status)

	res = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "N3wPass!word"}, nil)
	require.Equal(t, http.StatusOK, res.status)
}

func TestProgressSummarisesOwnWorkouts(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	res := s.do(t, http.MethodPost, "/api/workouts", sampleWorkout(), cookie)
	require.Equal(t, http.StatusCreated, res.status)

	res = s.do(t, http.MethodGet, "/api/progress", nil, cookie)
	require.Equal(t, http.StatusOK, res.status)
	var progress domain.Progress
	res.decode(t, &progress)
	require.Equal(t, 1, progress.TotalWorkouts)
	require.Equal(t, 75, progress.TotalDuration)
	require.Equal(t, 3000.0, progress.TotalVolume)
	require.Len(t, progress.PersonalBests, 1)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"type":"invalid_request","detail":"unable to parse body"}`, rec.Body.String())
}

func TestUnknownBodyFieldsAreRejected(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signup(t, "a@x.com")

	payload := sampleWorkout()
	payload["userId"] = "someone-else"
	res := s.do(t, http.MethodPost, "/api/workouts", payload, cookie)
	require.Equal(t, http.StatusBadRequest, res.status)

	var body errorResponse
	res.decode(t, &body)
	require.Equal(t, "validation_failed", body.Type)
	require.Equal(t, []validation.FieldError{{Field: "userId", Message: "is not an accepted field"}}, body.Errors)

	res = s.do(t, http.MethodGet, "/api/workouts", nil, cookie)
	require.Equal(t, "[]", strings.TrimSpace(string(res.body)))

	res = s.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "b@x.com", "password": "Abcdefg1!", "name": "B", "isAdmin": true,
	}, nil)
	require.Equal(t, http.StatusBadRequest, res.status)
	require.Contains(t, string(res.body), `"field":"isAdmin"`)
}

func TestCORSPreflightSkipsGuard(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, http.MethodOptions, "/api/workouts", nil, nil)
	require.Equal(t, http.StatusNoContent, res.status)
	require.Equal(t, "http://localhost:3000", res.header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", res.header.Get("Access-Control-Allow-Credentials"))
}
