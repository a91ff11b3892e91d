package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/timetables/:semester/:batch", handlers...)
	return router
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/S1/A", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresBearerToken(t *testing.T) {
	router := newTestRouter(JWT(validatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}))

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer bad").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, "Bearer good").Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	var seen *models.JWTClaims
	router := newTestRouter(OptionalJWT(validatorStub{claims: &models.JWTClaims{UserID: "u1"}}), func(c *gin.Context) {
		seen = Claims(c)
	})

	assert.Equal(t, http.StatusNoContent, serve(router, "Bearer bad").Code)
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusNoContent, serve(router, "bearer good").Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
}

func TestRBAC(t *testing.T) {
	withRole := func(role models.UserRole) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
		}
	}

	assert.Equal(t, http.StatusUnauthorized, serve(newTestRouter(RequireRoles(models.RoleAdmin)), "").Code)
	assert.Equal(t, http.StatusForbidden, serve(newTestRouter(withRole(models.RoleStudent), RequireRoles(models.RoleAdmin)), "").Code)
	assert.Equal(t, http.StatusNoContent, serve(newTestRouter(withRole(models.RoleAdmin), RequireRoles(models.RoleAdmin)), "").Code)
	assert.Equal(t, http.StatusNoContent, serve(newTestRouter(withRole(models.RoleSuperAdmin), RequireRoles(models.RoleAdmin)), "").Code)
}

type observerStub struct {
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.path = path
	o.status = status
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &observerStub{}
	router := newTestRouter(Metrics(observer))
	router.Use(Metrics(observer))

	serve(router, "")
	assert.Equal(t, "/timetables/:semester/:batch", observer.path)
	assert.Equal(t, http.StatusNoContent, observer.status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/nowhere", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, "unmatched", observer.path)
	assert.Equal(t, http.StatusNotFound, observer.status)
}

type auditStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditStub) Create(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return a.err
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	repo := &auditStub{}
	router := newTestRouter(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	}, Audit(repo, nil, models.AuditActionTimetableExport, "timetable"))

	serve(router, "")
	require.Len(t, repo.logs, 1)
	log := repo.logs[0]
	assert.Equal(t, models.AuditActionTimetableExport, log.Action)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "admin-1", *log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "S1/A", *log.ResourceID)
	assert.Contains(t, string(log.NewValues), `"status":204`)
}

func TestAuditSkipsFailuresAndSurvivesWriteErrors(t *testing.T) {
	repo := &auditStub{}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/timetables/:semester/:batch", Audit(repo, nil, models.AuditActionTimetableGenerate, "timetable"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})
	serve(router, "")
	assert.Empty(t, repo.logs)

	repo.err = errors.New("insert failed")
	assert.Equal(t, http.StatusNoContent, serve(newTestRouter(Audit(repo, nil, "X", "timetable")), "").Code)
	assert.Len(t, repo.logs, 1)
}
