package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos/activity"
	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	"github.com/yungbote/assignment-backend/internal/data/repos/compliance"
	"github.com/yungbote/assignment-backend/internal/data/repos/content"
	"github.com/yungbote/assignment-backend/internal/data/repos/testutil"
	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/domain/access"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	httpH "github.com/yungbote/assignment-backend/internal/http/handlers"
	httpMW "github.com/yungbote/assignment-backend/internal/http/middleware"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/platform/clock"
	"github.com/yungbote/assignment-backend/internal/realtime"
	"github.com/yungbote/assignment-backend/internal/services"
)

type testServer struct {
	db     *gorm.DB
	engine *gin.Engine
	auth   services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	clk := clock.Fixed(time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC))
	metrics := observability.NewMetrics()

	batches := assignments.NewBatchRepo(db, log)
	entries := assignments.NewUserAssignmentRepo(db, log)
	completions := assignments.NewTaskCompletionRepo(db, log)
	users := user.NewUserRepo(db, log)
	videos := content.NewAiVideoRepo(db, log)
	records := compliance.NewRecordRepo(db, log)
	logs := activity.NewActivityLogRepo(db, log)

	hub := realtime.NewSSEHub(log)
	notifier := services.NewAssignmentNotifier(&services.HubEmitter{Hub: hub})
	audit := services.NewAuditSink(log, records, logs, metrics)
	stats := services.NewBatchStatsService(log, batches, entries, services.NewLocalLocker(time.Second), metrics)
	reward := services.NewRewardGate(log, clk, users, entries, videos, notifier, metrics)
	auth := services.NewAuthService(log, users, "router-test-secret", time.Hour)

	matrix, err := access.Default()
	if err != nil {
		t.Fatalf("access matrix: %v", err)
	}
	engine := NewRouter(RouterConfig{
		Log:            log,
		Metrics:        metrics,
		RequestTimeout: 5 * time.Second,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth, matrix),
		AssignmentHandler: httpH.NewAssignmentHandler(services.NewAssignmentService(
			db, log, clk, batches, entries, completions, stats, reward, audit, notifier, metrics)),
		ComplianceHandler: httpH.NewComplianceHandler(services.NewComplianceService(log, clk, users, batches, entries, records)),
		BatchHandler:      httpH.NewBatchHandler(services.NewBatchService(db, log, batches, entries, users, audit, notifier, metrics)),
		AiVideoHandler:    httpH.NewAiVideoHandler(services.NewAiVideoService(log, users, entries, videos, audit)),
		RealtimeHandler:   httpH.NewRealtimeHandler(log, hub),
		HealthHandler:     httpH.NewHealthHandler(db),
	})
	return &testServer{db: db, engine: engine, auth: auth}
}

func (s *testServer) token(t *testing.T, u *types.User) string {
	t.Helper()
	tok, err := s.auth.IssueToken(context.Background(), u)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthcheck", "/readyz"} {
		if rec := s.do(t, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", path, rec.Code)
		}
	}
}

func TestAuthAndCapabilities(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	member := testutil.SeedUser(t, ctx, s.db, "member@example.com")
	finance := testutil.SeedUser(t, ctx, s.db, "finance@example.com", testutil.AsAdmin("FINANCE"))
	tech := testutil.SeedUser(t, ctx, s.db, "tech@example.com", testutil.AsAdmin("TECHNICIAN"))
	manager := testutil.SeedUser(t, ctx, s.db, "manager@example.com", testutil.AsAdmin("USER_MANAGER"))

	cases := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"anonymous", "/api/assignments", "", http.StatusUnauthorized},
		{"member today", "/api/assignments", s.token(t, member), http.StatusOK},
		{"member admin list", "/api/admin/assignments", s.token(t, member), http.StatusForbidden},
		{"finance admin list", "/api/admin/assignments", s.token(t, finance), http.StatusForbidden},
		{"technician admin list", "/api/admin/assignments", s.token(t, tech), http.StatusOK},
		{"technician compliance", "/api/admin/users/" + member.ID.String() + "/compliance", s.token(t, tech), http.StatusForbidden},
		{"manager compliance", "/api/admin/users/" + member.ID.String() + "/compliance", s.token(t, manager), http.StatusOK},
		{"manager videos", "/api/admin/ai-videos", s.token(t, manager), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := s.do(t, http.MethodGet, tc.path, tc.token, nil); rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBatchLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	tech := s.token(t, testutil.SeedUser(t, ctx, s.db, "tech@example.com", testutil.AsAdmin("TECHNICIAN")))
	member := testutil.SeedUser(t, ctx, s.db, "member@example.com")
	memberTok := s.token(t, member)

	links := testutil.Links("2026-10-19", 2)
	rec := s.do(t, http.MethodPost, "/api/admin/assignments/upload", tech, map[string]any{
		"date":  "2026-10-19",
		"links": links,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: status=%d body=%s", rec.Code, rec.Body.String())
	}
	batch := decode[types.Batch](t, rec)

	rec = s.do(t, http.MethodPost, "/api/admin/assignments/upload", tech, map[string]any{"date": "2026-10-19", "links": links})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate upload: status=%d", rec.Code)
	}

	if rec = s.do(t, http.MethodPost, "/api/admin/assignments/"+batch.ID.String()+"/distribute", tech, nil); rec.Code != http.StatusOK {
		t.Fatalf("distribute: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec = s.do(t, http.MethodPost, "/api/admin/assignments/"+batch.ID.String()+"/distribute", tech, nil); rec.Code != http.StatusConflict {
		t.Fatalf("redistribute: status=%d", rec.Code)
	}

	today := decode[services.TodayView](t, s.do(t, http.MethodGet, "/api/assignments", memberTok, nil))
	if today.TotalCount != 2 {
		t.Fatalf("today: total=%d", today.TotalCount)
	}

	rec = s.do(t, http.MethodPost, "/api/assignments/complete", memberTok, map[string]any{"link": links[0].URL})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status=%d body=%s", rec.Code, rec.Body.String())
	}
	res := decode[map[string]any](t, rec)
	if res["status"] != string(domassign.EntryInProgress) || res["reward"] != nil {
		t.Fatalf("complete payload: %v", res)
	}

	rec = s.do(t, http.MethodPost, "/api/assignments/complete", memberTok, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing link: status=%d", rec.Code)
	}

	nc := decode[map[string][]services.NonCompliantUser](t,
		s.do(t, http.MethodGet, "/api/admin/assignments/"+batch.ID.String()+"/non-compliant", tech, nil))
	if len(nc["users"]) != 1 || nc["users"][0].TasksCompleted != 1 {
		t.Fatalf("non-compliant: %+v", nc)
	}
}

func TestUploadCSVOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tech := s.token(t, testutil.SeedUser(t, context.Background(), s.db, "tech@example.com", testutil.AsAdmin("SUPER_ADMIN")))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("date", "2026-10-25")
	fw, err := mw.CreateFormFile("csvFile", "links.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte("url,type\nhttps://youtube.com/watch?v=z,Short\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/assignments/upload-csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tech)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload-csv: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if b := decode[types.Batch](t, rec); b.TotalLinks != 1 || b.Date != "2026-10-25" {
		t.Fatalf("imported batch: %+v", b)
	}
}
