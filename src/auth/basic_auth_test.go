package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return Config{AdminUser: "admin", AdminPasswordHash: string(hash), Realm: "test"}
}

func protected(cfg Config) http.Handler {
	return BasicAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := GetUserFromContext(r.Context())
		_, _ = w.Write([]byte(user))
	}))
}

func TestBasicAuth(t *testing.T) {
	cfg := testConfig(t)

	cases := []struct {
		name string
		user string
		pass string
		set  bool
		want int
	}{
		{name: "no credentials", want: http.StatusUnauthorized},
		{name: "wrong password", user: "admin", pass: "nope", set: true, want: http.StatusUnauthorized},
		{name: "wrong user", user: "root", pass: "s3cret", set: true, want: http.StatusUnauthorized},
		{name: "valid", user: "admin", pass: "s3cret", set: true, want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			if tc.set {
				req.SetBasicAuth(tc.user, tc.pass)
			}
			rr := httptest.NewRecorder()
			protected(cfg).ServeHTTP(rr, req)

			assert.Equal(t, tc.want, rr.Code)
			if tc.want == http.StatusUnauthorized {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), `realm="test"`)
			} else {
				assert.Equal(t, "admin", rr.Body.String())
			}
		})
	}
}

func TestBasicAuthWithoutHashRejectsAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth("admin", "")
	rr := httptest.NewRecorder()

	protected(Config{AdminUser: "admin"}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, CheckCredentials(Config{AdminUser: "a", AdminPasswordHash: hash}, "a", "pw"))

	_, err = HashPassword("")
	assert.Error(t, err)
}
