package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	swapDto "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/dto"
	swap "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/service"
	"github.com/raunak23427/mutual-skill-sync/pkg/ratelimiter"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
)

type stubSwapService struct {
	swap.SwapService
	err error
}

func (s *stubSwapService) CreateSwap(ctx context.Context, requesterID uuid.UUID, req swapDto.CreateSwapRequest) (*swapDto.SwapResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &swapDto.SwapResponse{}, nil
}

func postSwap(h *SwapHandler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/swaps", func(c *gin.Context) {
		c.Set(response.KeyProfileID, uuid.New())
		c.Next()
	}, h.CreateSwap)

	body := `{"recipient_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/swaps", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSwapRateLimited(t *testing.T) {
	h := NewSwapHandler(&stubSwapService{err: &ratelimiter.RateLimitError{
		Message:    "please wait",
		RetryAfter: 42 * time.Second,
	}})

	w := postSwap(h)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "42" {
		t.Fatalf("Retry-After = %q, want 42", got)
	}
	if !strings.Contains(w.Body.String(), "please wait") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestCreateSwapCreated(t *testing.T) {
	w := postSwap(NewSwapHandler(&stubSwapService{}))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") != "" {
		t.Fatal("unexpected Retry-After on success")
	}
}
