package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/api/http/handlers"
	"github.com/spec-kit/code-arena/internal/auth"
	"github.com/spec-kit/code-arena/internal/config"
	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/observability"
	"github.com/spec-kit/code-arena/internal/persistence"
	"github.com/spec-kit/code-arena/internal/service"
)

type testApp struct {
	app     *fiber.App
	store   *persistence.Store
	authSvc *service.AuthService
	metrics *observability.Metrics
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.Config{
		App:  config.AppConfig{Name: "code-arena", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4},
	}
	store, err := persistence.OpenStore(context.Background(), config.StoreConfig{Driver: config.StoreDriverMemory}, nil, logger)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	authSvc := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users, Dispatcher: dispatcher})
	progression := service.NewProgressionService(service.ProgressionDependencies{
		UserRepo: store.Users, ProblemRepo: store.Problems, Dispatcher: dispatcher, Logger: logger,
	})
	problems := service.NewProblemService(store.Problems, store.Users, dispatcher)
	rankings := service.NewRankingService(store.Users, nil, logger)
	service.NewAuditService(dispatcher, logger, metrics).RegisterHandlers()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, nil, metrics),
		Users:          handlers.NewUsersHandler(authSvc, service.NewUserService(store.Users)),
		Problems:       handlers.NewProblemsHandler(problems, progression),
		Rankings:       handlers.NewRankingsHandler(rankings),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager(), store.Users),
	})
	return &testApp{app: app, store: store, authSvc: authSvc, metrics: metrics}
}

func (a *testApp) signup(t *testing.T, username string) (string, *domain.User) {
	t.Helper()
	result, err := a.authSvc.RegisterUser(context.Background(), service.SignupInput{
		Username: username, Email: username + "@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	return result.AccessToken, result.User
}

func (a *testApp) addProblem(t *testing.T, id string, d domain.Difficulty) {
	t.Helper()
	p := domain.NewProblem("Problem "+id, d, "Array", 1, "desc")
	p.ID = id
	require.NoError(t, a.store.Problems.Create(context.Background(), p))
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestSolveEndpoint(t *testing.T) {
	a := newTestApp(t)
	token, _ := a.signup(t, "ana")
	a.addProblem(t, "p1", domain.DifficultyMedium)

	status, body := a.do(t, nethttp.MethodPatch, "/api/problems/p1/solve", token, nil)
	require.Equal(t, nethttp.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(300), data["awardedPoints"])
	assert.Equal(t, "Bronze III", data["oldTier"])
	assert.Equal(t, "Bronze II", data["newTier"])
	assert.Equal(t, float64(300), data["newTotalPoints"])
	assert.Equal(t, float64(1), data["problemsSolved"])

	status, body = a.do(t, nethttp.MethodPatch, "/api/problems/p1/solve", token, nil)
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "ALREADY_SOLVED", errorCode(body))

	status, body = a.do(t, nethttp.MethodPatch, "/api/problems/missing/solve", token, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "PROBLEM_NOT_FOUND", errorCode(body))

	status, body = a.do(t, nethttp.MethodPatch, "/api/problems/p1/solve", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	assert.Equal(t, int64(1), a.metrics.Snapshot().ProblemSolves)
}

func TestSignupLoginAndProfile(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, nethttp.MethodPost, "/auth/signup", "", map[string]string{
		"username": "ben", "email": "ben@example.com", "password": "secret1", "country": "NP",
	})
	require.Equal(t, nethttp.StatusCreated, status, body)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Bronze III", user["tier"])
	assert.Equal(t, float64(0), user["points"])

	status, body = a.do(t, nethttp.MethodPost, "/auth/signup", "", map[string]string{
		"username": "ben2", "email": "ben@example.com", "password": "secret1",
	})
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "EMAIL_TAKEN", errorCode(body))

	status, body = a.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email": "ben@example.com", "password": "wrong1",
	})
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, body = a.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email": "ben@example.com", "password": "secret1",
	})
	require.Equal(t, nethttp.StatusOK, status)
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)

	status, body = a.do(t, nethttp.MethodGet, "/api/user", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ben", body["data"].(map[string]any)["username"])

	status, body = a.do(t, nethttp.MethodGet, "/api/user/stats", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Bronze III", body["data"].(map[string]any)["tier"])
}

func TestProblemListShowsSolvedFlag(t *testing.T) {
	a := newTestApp(t)
	token, _ := a.signup(t, "cy")
	a.addProblem(t, "p1", domain.DifficultyEasy)
	a.addProblem(t, "p2", domain.DifficultyHard)

	status, _ := a.do(t, nethttp.MethodPatch, "/api/problems/p2/solve", token, nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, body := a.do(t, nethttp.MethodGet, "/api/problems", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	solved := map[string]string{}
	for _, item := range body["data"].([]any) {
		row := item.(map[string]any)
		solved[row["id"].(string)] = row["solved"].(string)
	}
	assert.Equal(t, map[string]string{"p1": "No", "p2": "Yes"}, solved)

	status, body = a.do(t, nethttp.MethodGet, "/api/problems/p2", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Yes", body["data"].(map[string]any)["solved"])
}

func TestCreateProblemRequiresAdmin(t *testing.T) {
	a := newTestApp(t)
	token, _ := a.signup(t, "dee")
	payload := map[string]any{"title": "Sum", "difficulty": "Easy", "category": "Math", "description": "add"}

	status, body := a.do(t, nethttp.MethodPost, "/api/problems", token, payload)
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	admin := domain.NewUser("root", "root@example.com", "h", "", "", "")
	admin.Role = domain.UserRoleAdmin
	require.NoError(t, a.store.Users.Create(context.Background(), admin))
	_, adminToken, err := a.authSvc.TokenManager().GenerateToken(admin.ID, admin.Role)
	require.NoError(t, err)

	status, body = a.do(t, nethttp.MethodPost, "/api/problems", adminToken, payload)
	require.Equal(t, nethttp.StatusCreated, status, body)
	assert.Equal(t, float64(100), body["data"].(map[string]any)["points"])
}

func TestRankingsEndpoint(t *testing.T) {
	a := newTestApp(t)
	token, _ := a.signup(t, "eve")
	a.signup(t, "fin")
	a.addProblem(t, "p1", domain.DifficultyEasy)
	status, _ := a.do(t, nethttp.MethodPatch, "/api/problems/p1/solve", token, nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, body := a.do(t, nethttp.MethodGet, "/api/rankings?limit=1", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	rows := body["data"].([]any)
	require.Len(t, rows, 1)
	top := rows[0].(map[string]any)
	assert.Equal(t, "eve", top["username"])
	assert.Equal(t, float64(1), top["rank"])
}

func TestHealthEndpoints(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "ok", deps["memory"])
	assert.Equal(t, "disabled", deps["redis"])

	status, _ = a.do(t, nethttp.MethodGet, "/health/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
}
