package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"skillgrid/internal/auth"
	"skillgrid/internal/models"
	"skillgrid/internal/services"
	"skillgrid/internal/testutil"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "secret1"

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.OpenDB(t)

	store, err := services.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	hub := services.NewProfileHub()
	profiles := services.NewProfileService(gdb, hub)
	r := gin.New()
	r.Use(sessions.Sessions("skillgrid_session", cookie.NewStore([]byte("test-secret"))))
	RegisterRoutes(r, &Deps{
		DB:            gdb,
		Hub:           hub,
		Profiles:      profiles,
		Accounts:      services.NewAccountService(profiles, nil, "FACULTY-CODE"),
		Registrations: services.NewRegistrationService(gdb),
		Verification:  services.NewVerificationService(gdb, hub, nil),
		Leaderboard:   services.NewLeaderboardService(gdb),
		Catalog:       services.NewCatalogService(gdb, services.NewUploader(store, time.Second), 0),
	})
	return &testServer{engine: r, db: gdb}
}

// client keeps the session cookie between requests.
type client struct {
	srv     *testServer
	cookies map[string]*http.Cookie
}

func (s *testServer) client() *client {
	return &client{srv: s, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	cl.srv.engine.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		cl.cookies[ck.Name] = ck
	}
	return w
}

func (cl *client) send(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return cl.do(t, req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signIn creates a verified account with a password and logs it in.
func (s *testServer) signIn(t *testing.T, id, name string, role models.Role, credits int) (*client, models.User) {
	t.Helper()
	usr := testutil.CreateUser(t, s.db, id, name, role, credits)
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, s.db.Model(&usr).Update("password_hash", hash).Error)

	path := "/api/auth/login"
	if role.IsStaff() {
		path = "/api/faculty/auth/login"
	}
	cl := s.client()
	w := cl.send(t, http.MethodPost, path, gin.H{"email": usr.Email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return cl, usr
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w := srv.client().send(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAreaGuards(t *testing.T) {
	srv := newTestServer(t)
	anon := srv.client()
	student, _ := srv.signIn(t, "s1", "Asha", models.RoleStudent, 0)
	faculty, _ := srv.signIn(t, "f1", "Dr. Rao", models.RoleFaculty, 0)

	tests := []struct {
		name         string
		cl           *client
		method, path string
		wantStatus   int
		wantRedirect string
	}{
		{"anonymous student area", anon, http.MethodGet, "/api/events", http.StatusUnauthorized, auth.PathStudentLogin},
		{"anonymous faculty area", anon, http.MethodGet, "/api/faculty/events", http.StatusUnauthorized, auth.PathFacultyLogin},
		{"anonymous me", anon, http.MethodGet, "/api/me", http.StatusUnauthorized, auth.PathStudentLogin},
		{"student in faculty area", student, http.MethodGet, "/api/faculty/events", http.StatusForbidden, auth.PathStudentHome},
		{"faculty in student area", faculty, http.MethodGet, "/api/events", http.StatusForbidden, auth.PathFacultyHome},
		{"student on login", student, http.MethodPost, "/api/auth/login", http.StatusForbidden, auth.PathStudentHome},
		{"faculty on faculty login", faculty, http.MethodPost, "/api/faculty/auth/login", http.StatusForbidden, auth.PathFacultyHome},
		{"student allowed", student, http.MethodGet, "/api/events", http.StatusOK, ""},
		{"faculty allowed", faculty, http.MethodGet, "/api/faculty/events", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.cl.send(t, tt.method, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantRedirect != "" {
				assert.Equal(t, tt.wantRedirect, decode(t, w)["redirect"])
			}
		})
	}
}

func TestStudentMayOpenFacultyLogin(t *testing.T) {
	srv := newTestServer(t)
	student, usr := srv.signIn(t, "s1", "Asha", models.RoleStudent, 0)

	w := student.send(t, http.MethodPost, "/api/faculty/auth/login", gin.H{"email": usr.Email, "password": testPassword})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "This account does not have faculty access.", decode(t, w)["error"])
}

func TestSignupVerifyAndLogin(t *testing.T) {
	srv := newTestServer(t)
	cl := srv.client()

	w := cl.send(t, http.MethodPost, "/api/auth/signup", gin.H{"name": "Asha", "email": "Asha@Campus.test", "password": testPassword})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = cl.send(t, http.MethodPost, "/api/auth/signup", gin.H{"name": "Asha", "email": "asha@campus.test", "password": testPassword})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = cl.send(t, http.MethodPost, "/api/auth/login", gin.H{"email": "asha@campus.test", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Please verify your email before signing in.", decode(t, w)["error"])

	var usr models.User
	require.NoError(t, srv.db.First(&usr, "email = ?", "asha@campus.test").Error)
	require.NotEmpty(t, usr.VerifyCode)

	w = cl.send(t, http.MethodPost, "/api/auth/verify-email", gin.H{"email": usr.Email, "code": "000000x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = cl.send(t, http.MethodPost, "/api/auth/resend-code", gin.H{"email": usr.Email})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = cl.send(t, http.MethodPost, "/api/auth/verify-email", gin.H{"email": usr.Email, "code": usr.VerifyCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, auth.PathStudentLogin, decode(t, w)["redirect"])

	// 验证码不等于登录凭据
	w = cl.send(t, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = cl.send(t, http.MethodPost, "/api/auth/login", gin.H{"email": "asha@campus.test", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, auth.PathStudentHome, decode(t, w)["redirect"])

	w = cl.send(t, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "STUDENT", me["role"])
	assert.EqualValues(t, 0, me["total_credits"])

	w = cl.send(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = cl.send(t, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFacultySignupNeedsAccessCode(t *testing.T) {
	srv := newTestServer(t)
	cl := srv.client()

	w := cl.send(t, http.MethodPost, "/api/faculty/auth/signup", gin.H{"name": "Dr. Rao", "email": "rao@campus.test", "password": testPassword, "access_code": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = cl.send(t, http.MethodPost, "/api/faculty/auth/signup", gin.H{"name": "Dr. Rao", "email": "rao@campus.test", "password": testPassword, "access_code": "FACULTY-CODE"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, auth.PathFacultyLogin, decode(t, w)["redirect"])
}

func TestRegisterVerifyAndReject(t *testing.T) {
	srv := newTestServer(t)
	testutil.CreateEvent(t, srv.db, "e1", "AI Hackathon", "2024-06-15", 100)
	testutil.CreateEvent(t, srv.db, "e2", "Writing Workshop", "2024-05-10", 30)
	student, usr := srv.signIn(t, "s1", "Asha", models.RoleStudent, 0)
	faculty, _ := srv.signIn(t, "f1", "Dr. Rao", models.RoleFaculty, 0)

	for _, id := range []string{"e1", "e2", "e1"} {
		w := student.send(t, http.MethodPost, "/api/events/"+id+"/register", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := student.send(t, http.MethodPost, "/api/events/missing/register", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = faculty.send(t, http.MethodGet, "/api/faculty/verifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	queue := decode(t, w)
	assert.Len(t, queue["pending"], 2)
	assert.Len(t, queue["history"], 0)

	w = faculty.send(t, http.MethodPost, "/api/faculty/verifications/"+usr.ID+"/e1/verify", gin.H{"skill_key": "technical"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	verified := decode(t, w)["student"].(map[string]interface{})
	assert.EqualValues(t, 100, verified["total_credits"])
	assert.EqualValues(t, 10, verified["skills"].(map[string]interface{})["technical"])

	w = faculty.send(t, http.MethodPost, "/api/faculty/verifications/"+usr.ID+"/e1/verify", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = faculty.send(t, http.MethodPost, "/api/faculty/verifications/"+usr.ID+"/e2/reject", gin.H{"reason": "No attendance record."})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = student.send(t, http.MethodPost, "/api/faculty/verifications/"+usr.ID+"/e2/reject", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = student.send(t, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.EqualValues(t, 100, me["user"].(map[string]interface{})["total_credits"])
	assert.EqualValues(t, 2, me["unread_count"])

	w = student.send(t, http.MethodGet, "/api/registrations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	regs := decode(t, w)["registrations"].([]interface{})
	require.Len(t, regs, 1)
	assert.Equal(t, "Verified", regs[0].(map[string]interface{})["status"])

	w = student.send(t, http.MethodGet, "/api/me/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reasons []string
	for _, n := range decode(t, w)["notifications"].([]interface{}) {
		reasons = append(reasons, n.(map[string]interface{})["reason"].(string))
	}
	assert.Contains(t, reasons, "No attendance record.")

	w = student.send(t, http.MethodGet, "/api/me/credits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["history"], 1)
}

func TestLeaderboardLimit(t *testing.T) {
	srv := newTestServer(t)
	testutil.CreateUser(t, srv.db, "s2", "Bo", models.RoleStudent, 50)
	testutil.CreateUser(t, srv.db, "s3", "Cy", models.RoleStudent, 70)
	student, _ := srv.signIn(t, "s1", "Asha", models.RoleStudent, 10)

	w := student.send(t, http.MethodGet, "/api/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode(t, w)["leaderboard"].([]interface{})
	require.Len(t, entries, 2)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "s3", first["id"])
	assert.EqualValues(t, 1, first["rank"])

	w = student.send(t, http.MethodGet, "/api/leaderboard?limit=abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["leaderboard"], 3)
}

func TestRewardsAffordability(t *testing.T) {
	srv := newTestServer(t)
	faculty, _ := srv.signIn(t, "f1", "Dr. Rao", models.RoleFaculty, 0)
	student, _ := srv.signIn(t, "s1", "Asha", models.RoleStudent, 150)

	for _, r := range []gin.H{
		{"name": "Food Lab", "cost": 100, "category": "Voucher"},
		{"name": "Hoodie", "cost": 500, "category": "Merch"},
	} {
		w := faculty.send(t, http.MethodPost, "/api/faculty/rewards", r)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := student.send(t, http.MethodGet, "/api/rewards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 150, body["total_credits"])
	rewards := body["rewards"].([]interface{})
	require.Len(t, rewards, 2)
	assert.Equal(t, true, rewards[0].(map[string]interface{})["affordable"])
	assert.Equal(t, false, rewards[1].(map[string]interface{})["affordable"])
}

func eventForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="poster.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestCreateEventMultipart(t *testing.T) {
	srv := newTestServer(t)
	faculty, _ := srv.signIn(t, "f1", "Dr. Rao", models.RoleFaculty, 0)

	fields := map[string]string{
		"title": "Robotics Meetup", "date": "2024-06-22", "category": "Club Activity", "credits": "100",
		"description": "Bring **your** rover.",
		"leadership":  "20", "creativity": "20", "teamwork": "20", "technical": "20", "communication": "20",
	}
	body, ct := eventForm(t, fields, true)
	req := httptest.NewRequest(http.MethodPost, "/api/faculty/events", body)
	req.Header.Set("Content-Type", ct)
	w := faculty.do(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decode(t, w)["event"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(event["image"].(string), "/uploads/events/"), event["image"])
	assert.Contains(t, event["description_html"], "<strong>your</strong>")

	fields["technical"] = "30"
	body, ct = eventForm(t, fields, false)
	req = httptest.NewRequest(http.MethodPost, "/api/faculty/events", body)
	req.Header.Set("Content-Type", ct)
	w = faculty.do(t, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Skill points split must exactly match total credits.", decode(t, w)["error"])

	w = faculty.send(t, http.MethodGet, "/api/faculty/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode(t, w)["events"].([]interface{})
	require.Len(t, events, 1)

	id := events[0].(map[string]interface{})["id"].(string)
	w = faculty.send(t, http.MethodDelete, "/api/faculty/events/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = faculty.send(t, http.MethodDelete, "/api/faculty/events/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
