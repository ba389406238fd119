package v1

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"rais/internal/model"
	"rais/internal/store"
)

func TestUpdateConfig_BatchRatesTakeEffectImmediately(t *testing.T) {
	gin.SetMode(gin.TestMode)

	permanent, err := store.New(filepath.Join(t.TempDir(), "rais.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { permanent.Close() })

	policy := model.NewRiskPolicy(0.08, 0.15)
	twoTier := store.NewTwoTier(store.NewSessionStore(policy), permanent)

	h := NewHandler(twoTier, nil, testRisk())
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))

	body := strings.NewReader(`{"batchWatchRate":0.05,"batchHighRate":0.10}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/config", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("patch status want=200 got=%d body=%s", w.Code, w.Body.String())
	}

	// 共享策略立即采用新阈值，不需要重启
	watch, high := twoTier.RiskPolicy().Rates()
	if watch != 0.05 || high != 0.10 {
		t.Fatalf("policy rates want=0.05/0.10 got=%v/%v", watch, high)
	}
	if got := twoTier.RiskPolicy().Classify(0.12); got != model.RiskHigh {
		t.Fatalf("0.12 after update want=%s got=%s", model.RiskHigh, got)
	}

	// 同时落盘，重启后沿用
	v, err := permanent.GetConfigFloat("batch_watch_rate")
	if err != nil {
		t.Fatalf("read persisted rate: %v", err)
	}
	if v != 0.05 {
		t.Fatalf("persisted watch rate want=0.05 got=%v", v)
	}
}
