package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alunos/internal/app/auth"
	"github.com/yigit/alunos/internal/app/controllers"
	"github.com/yigit/alunos/internal/app/repositories"
	"github.com/yigit/alunos/internal/app/services"
	"github.com/yigit/alunos/internal/middleware"
	pkgauth "github.com/yigit/alunos/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := repositories.NewMemoryRepositories()
	provider := auth.NewSessionProvider(
		repos.AccountStore,
		repos.SessionStore,
		pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, TokenIssuer: "alunos-test"}),
		pkgauth.NewPasswordHasher(bcrypt.MinCost),
		zerolog.Nop(),
	)
	authService := services.NewAuthService(provider, zerolog.Nop())

	router := gin.New()
	SetupRouter(router,
		controllers.NewAuthController(authService, zerolog.Nop()),
		controllers.NewStudentController(services.NewStudentService(repos.StudentGateway)),
		middleware.NewAuthMiddleware(authService),
	)
	return router
}

func call(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func signIn(t *testing.T, router *gin.Engine) string {
	t.Helper()
	creds := gin.H{"email": "professor@escola.com", "password": "segredo123"}

	code, _ := call(t, router, http.MethodPost, "/api/v1/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, router, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, code)
	var token struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func student(reg, cpf string) gin.H {
	return gin.H{
		"full_name":           "Ana Silva",
		"registration_number": reg,
		"cpf":                 cpf,
		"birth_date":          "2004-08-21",
		"email":               "ana@example.com",
		"phone":               "11987654321",
	}
}

func TestHealthAndPing(t *testing.T) {
	router := newTestRouter(t)

	code, env := call(t, router, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", rec.Body.String())
}

func TestStudentsRequireBearerToken(t *testing.T) {
	router := newTestRouter(t)

	code, env := call(t, router, http.MethodGet, "/api/v1/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = call(t, router, http.MethodGet, "/api/v1/students", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestStudentCRUD(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	code, env := call(t, router, http.MethodPost, "/api/v1/students", token, student("2024001", "12345678901"))
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Aluno cadastrado!", env.Message)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = call(t, router, http.MethodPost, "/api/v1/students", token, student("2024001", "10987654321"))
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "registration_number", env.Error.Field)
	assert.Equal(t, "Esta matrícula já está cadastrada.", env.Error.Message)

	invalid := student("2024002", "123")
	code, env = call(t, router, http.MethodPost, "/api/v1/students", token, invalid)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "cpf", env.Error.Field)
	assert.Equal(t, "CPF deve conter 11 dígitos", env.Error.Message)

	updated := student("2024001", "12345678901")
	updated["full_name"] = "Ana Maria Silva"
	code, env = call(t, router, http.MethodPut, "/api/v1/students/"+created.ID, token, updated)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Aluno atualizado!", env.Message)

	code, env = call(t, router, http.MethodGet, "/api/v1/students?search=maria", token, nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Students []struct {
			FullName string `json:"full_name"`
		} `json:"students"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Ana Maria Silva", list.Students[0].FullName)

	code, _ = call(t, router, http.MethodDelete, "/api/v1/students/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = call(t, router, http.MethodGet, "/api/v1/students", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 0, list.Total)
}

func TestLogoutEndsSession(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	code, _ := call(t, router, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := call(t, router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logout realizado", env.Message)

	code, _ = call(t, router, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
