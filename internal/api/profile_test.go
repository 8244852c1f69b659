package api

import (
	"net/http"
	"schoolfanta/internal/domain"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMe(t *testing.T) {
	db := setupTestDB(t)
	user, token := createTestUser(t, db, "user@example.com", "Password1", 100)
	r := newTestRouter(db)

	w, resp := doJSON(t, r, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, resp["id"])
	assert.Equal(t, "user@example.com", resp["email"])
	assert.Equal(t, float64(100), resp["budget"])
	assert.Equal(t, false, resp["hasTeam"])
	assert.Equal(t, true, resp["hasPassword"])
	assert.Equal(t, false, resp["hasGoogleAccount"])
	// the hash never appears in any shape
	assert.NotContains(t, resp, "passwordHash")
	assert.NotContains(t, resp, "password_hash")
}

func TestMeWithGoogleAccount(t *testing.T) {
	db := setupTestDB(t)
	user, token := createTestUser(t, db, "user@example.com", "Password1", 100)
	require.NoError(t, db.Create(&domain.Account{
		UserID:            user.ID,
		Provider:          "google",
		ProviderAccountID: "google-sub-123",
	}).Error)
	r := newTestRouter(db)

	w, resp := doJSON(t, r, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["hasGoogleAccount"])
}

func TestUpdateMe(t *testing.T) {
	db := setupTestDB(t)
	user, token := createTestUser(t, db, "user@example.com", "Password1", 100)
	r := newTestRouter(db)

	w, resp := doJSON(t, r, http.MethodPut, "/me", token, map[string]any{
		"name":      "  New Name  ",
		"firstName": "New",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New Name", resp["name"]) // trimmed
	assert.Equal(t, "New", resp["firstName"])

	// fields that were not sent stay untouched
	var updated domain.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, user.LastName, updated.LastName)

	// over-long values are capped at the column limit
	w, resp = doJSON(t, r, http.MethodPut, "/me", token, map[string]any{
		"firstName": strings.Repeat("x", 80),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, strings.Repeat("x", 50), resp["firstName"])

	// an empty body has nothing to apply
	w, resp = doJSON(t, r, http.MethodPut, "/me", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_UPDATE", resp["code"])
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	user, token := createTestUser(t, db, "user@example.com", "Password1", 100)
	r := newTestRouter(db)

	w, _ := doJSON(t, r, http.MethodPost, "/me/password", token, map[string]any{
		"password":        "NewSecret2",
		"confirmPassword": "NewSecret2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated domain.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("NewSecret2")))

	// the new password now signs in, the old one no longer does
	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "user@example.com", "password": "NewSecret2",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "user@example.com", "password": "Password1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePasswordValidation(t *testing.T) {
	db := setupTestDB(t)
	_, token := createTestUser(t, db, "user@example.com", "Password1", 100)
	r := newTestRouter(db)

	cases := []struct {
		name    string
		pass    string
		confirm string
		code    string
	}{
		{"mismatch", "NewSecret2", "Different2", "PASSWORD_MISMATCH"},
		{"weak", "weak", "weak", "WEAK_PASSWORD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := doJSON(t, r, http.MethodPost, "/me/password", token, map[string]any{
				"password":        tc.pass,
				"confirmPassword": tc.confirm,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.code, resp["code"])
		})
	}
}

func TestEmailChangeFlow(t *testing.T) {
	db := setupTestDB(t)
	user, token := createTestUser(t, db, "old@example.com", "Password1", 100)
	r := newTestRouter(db)

	w, _ := doJSON(t, r, http.MethodPost, "/me/email", token, map[string]any{
		"email": "New@Example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// the address is unchanged until the link is clicked
	var pending domain.User
	require.NoError(t, db.First(&pending, "id = ?", user.ID).Error)
	assert.Equal(t, "old@example.com", pending.Email)

	var vt domain.VerificationToken
	require.NoError(t, db.Where("identifier = ?", "email-change:"+user.ID+":new@example.com").First(&vt).Error)

	// clicking the link applies the normalized address and marks it verified
	w, _ = doJSON(t, r, http.MethodGet, "/me/email/verify?token="+vt.Token, "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://front.test/me?emailSuccess=true", w.Header().Get("Location"))

	var updated domain.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.NotNil(t, updated.EmailVerified)

	// the token is consumed
	var count int64
	require.NoError(t, db.Model(&domain.VerificationToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmailChangeRejections(t *testing.T) {
	db := setupTestDB(t)
	_, token := createTestUser(t, db, "old@example.com", "Password1", 100)
	createTestUser(t, db, "taken@example.com", "Password1", 100)
	r := newTestRouter(db)

	cases := []struct {
		name  string
		email string
		code  string
	}{
		{"same address", "old@example.com", "SAME_EMAIL"},
		{"taken address", "taken@example.com", "EMAIL_TAKEN"},
		{"bad shape", "not-an-email", "INVALID_EMAIL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := doJSON(t, r, http.MethodPost, "/me/email", token, map[string]any{
				"email": tc.email,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.code, resp["code"])
		})
	}
}

func TestEmailChangeTakenWhilePending(t *testing.T) {
	db := setupTestDB(t)
	user, token := createTestUser(t, db, "old@example.com", "Password1", 100)
	r := newTestRouter(db)

	w, _ := doJSON(t, r, http.MethodPost, "/me/email", token, map[string]any{
		"email": "new@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// another account claims the address before the link is clicked
	createTestUser(t, db, "new@example.com", "Password1", 100)

	var vt domain.VerificationToken
	require.NoError(t, db.Where("identifier = ?", "email-change:"+user.ID+":new@example.com").First(&vt).Error)

	w, _ = doJSON(t, r, http.MethodGet, "/me/email/verify?token="+vt.Token, "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "emailError=EmailTaken")

	// the original address survives
	var unchanged domain.User
	require.NoError(t, db.First(&unchanged, "id = ?", user.ID).Error)
	assert.Equal(t, "old@example.com", unchanged.Email)
}
