package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"schoolfanta/internal/domain"
	"schoolfanta/internal/email"
	"schoolfanta/internal/middleware"
	"schoolfanta/internal/utils"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testJWTSecret signs session tokens in tests
const testJWTSecret = "test-secret"

// setupTestDB opens an isolated in-memory SQLite database with the full
// schema migrated. cache=shared with a single connection keeps every GORM
// session on the same memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Account{},
		&domain.School{},
		&domain.RealPlayer{},
		&domain.FantasyTeam{},
		&domain.TeamPlayer{},
		&domain.VerificationToken{},
	))
	return db
}

// newTestMailer returns a disabled mailer, so nothing leaves the process
func newTestMailer() *email.Mailer {
	return email.NewMailer("", "SchoolFanta <test@example.com>", "http://api.test", "http://front.test")
}

// newTestRouter wires the full route table the way cmd/server does,
// with a disabled mailer and no Redis
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mailer := newTestMailer()
	r := gin.New()
	r.POST("/auth/signup", SignupHandler(db, mailer))
	r.POST("/auth/login", LoginHandler(db, testJWTSecret))
	r.GET("/auth/providers", ProvidersHandler(false, "http://api.test"))
	r.GET("/auth/verify-email", VerifyEmailHandler(db, mailer, "http://front.test"))
	r.GET("/me/email/verify", VerifyEmailChangeHandler(db, "http://front.test"))
	auth := middleware.JWTAuthMiddleware(testJWTSecret)
	r.GET("/me", auth, MeHandler(db))
	r.PUT("/me", auth, UpdateMeHandler(db))
	r.POST("/me/password", auth, ChangePasswordHandler(db))
	r.POST("/me/email", auth, RequestEmailChangeHandler(db, mailer))
	r.POST("/auth/resend-verification", auth, ResendVerificationHandler(db, mailer))
	r.GET("/players", auth, GetAvailablePlayersHandler(db, nil))
	r.GET("/team", auth, GetTeamHandler(db))
	r.GET("/team/budget", auth, GetBudgetHandler(db, nil))
	r.POST("/team", auth, CreateTeamHandler(db, nil))
	return r
}

// createTestUser inserts a credentials user and returns it with a session token
func createTestUser(t *testing.T, db *gorm.DB, emailAddr, password string, budget int) (*domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		Email:        emailAddr,
		PasswordHash: string(hash),
		Name:         "Test User",
		Budget:       budget,
	}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateJWT(user.ID, testJWTSecret)
	require.NoError(t, err)
	return &user, token
}

// testSquad holds the seeded player IDs grouped by role, each slice in
// descending value order
type testSquad struct {
	GK  []string
	DEF []string
	MID []string
	ATT []string
}

// seedTestPlayers inserts one school with enough players of each role to
// build both valid and invalid rosters:
// GK 8,5,7 - DEF 10,8,7,6,4,3 - MID 12,9,7,6,5,4 - ATT 15,11,8,2
func seedTestPlayers(t *testing.T, db *gorm.DB) testSquad {
	t.Helper()
	school := domain.School{Name: "Liceo Test"}
	require.NoError(t, db.Create(&school).Error)
	create := func(role string, values []int) []string {
		ids := make([]string, len(values))
		for i, v := range values {
			p := domain.RealPlayer{
				SchoolID: school.ID,
				Name:     fmt.Sprintf("%s Player %d", role, i+1),
				Role:     role,
				Value:    v,
			}
			require.NoError(t, db.Create(&p).Error)
			ids[i] = p.ID
		}
		return ids
	}
	return testSquad{
		GK:  create(domain.RoleGK, []int{8, 5, 7}),
		DEF: create(domain.RoleDEF, []int{10, 8, 7, 6, 4, 3}),
		MID: create(domain.RoleMID, []int{12, 9, 7, 6, 5, 4}),
		ATT: create(domain.RoleATT, []int{15, 11, 8, 2}),
	}
}

// validRoster picks 2 GK, 5 DEF, 5 MID, 3 ATT costing 93 credits:
// GK 8+5, DEF 8+7+6+4+3, MID 9+7+6+5+4, ATT 11+8+2
func (s testSquad) validRoster() []string {
	ids := []string{s.GK[0], s.GK[1]}
	ids = append(ids, s.DEF[1:6]...)
	ids = append(ids, s.MID[1:6]...)
	ids = append(ids, s.ATT[1], s.ATT[2], s.ATT[3])
	return ids
}

// expensiveRoster picks the priciest valid composition, costing 121:
// GK 8+5, DEF 10+8+7+6+4, MID 12+9+7+6+5, ATT 15+11+8
func (s testSquad) expensiveRoster() []string {
	ids := []string{s.GK[0], s.GK[1]}
	ids = append(ids, s.DEF[0:5]...)
	ids = append(ids, s.MID[0:5]...)
	ids = append(ids, s.ATT[0], s.ATT[1], s.ATT[2])
	return ids
}

// doJSON performs a request with an optional bearer token and JSON body,
// returning the recorder and the decoded response body
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	resp := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" &&
		w.Code != http.StatusFound {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}
