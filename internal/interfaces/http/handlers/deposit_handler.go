package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/interfaces/http/middleware"
	"spot-deposits.backend/internal/interfaces/http/response"
	"spot-deposits.backend/internal/usecases"
	"spot-deposits.backend/pkg/logger"
	"spot-deposits.backend/pkg/redis"
)

const depositAddressCacheTTL = 5 * time.Minute

type depositService interface {
	GetDepositAddress(ctx context.Context, userID uuid.UUID, currency, chain string) (*usecases.DepositAddressView, error)
}

type watchService interface {
	Watch(ctx context.Context, userID uuid.UUID, req usecases.WatchRequest) (string, error)
	Disconnect(userID uuid.UUID)
}

// DepositHandler handles deposit address and watch endpoints
type DepositHandler struct {
	deposits depositService
	manager  watchService
	upgrader websocket.Upgrader
	useCache bool
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(deposits *usecases.DepositUsecase, manager *usecases.MonitorManager) *DepositHandler {
	return &DepositHandler{
		deposits: deposits,
		manager:  manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// session token auth happens in middleware; origins are not restricted
			CheckOrigin: func(*http.Request) bool { return true },
		},
		useCache: true,
	}
}

// WithoutCache disables the redis response cache (used by tests)
func (h *DepositHandler) WithoutCache() *DepositHandler {
	h.useCache = false
	return h
}

// GetDepositAddress returns the stored deposit address for a currency/chain
// GET /api/v1/finance/currency/:type/:code/:method
func (h *DepositHandler) GetDepositAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	walletType := c.Param("type")
	currency := c.Param("code")
	chain := c.Param("method")
	if walletType != "SPOT" {
		response.Error(c, domainerrors.BadRequest("only SPOT wallets support deposit addresses"))
		return
	}

	cacheKey := fmt.Sprintf("deposit-address:%s:%s:%s", userID, currency, chain)
	if h.useCache {
		if cached, err := redis.Get(c.Request.Context(), cacheKey); err == nil && cached != "" {
			var view usecases.DepositAddressView
			if json.Unmarshal([]byte(cached), &view) == nil {
				response.Success(c, http.StatusOK, view)
				return
			}
		}
	}

	view, err := h.deposits.GetDepositAddress(c.Request.Context(), userID, currency, chain)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.useCache {
		if raw, err := json.Marshal(view); err == nil {
			_ = redis.Set(c.Request.Context(), cacheKey, string(raw), depositAddressCacheTTL)
		}
	}
	response.Success(c, http.StatusOK, view)
}

// WatchDeposits upgrades to a websocket and feeds each text frame to the
// monitor manager as a watch request
// GET /api/v1/finance/deposit/spot
func (h *DepositHandler) WatchDeposits(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}
	defer conn.Close()

	// every accepted watch frame takes one connection reference
	registered := 0
	defer func() {
		for ; registered > 0; registered-- {
			h.manager.Disconnect(userID)
		}
	}()

	ctx := c.Request.Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		req, err := usecases.ParseWatchRequest(raw)
		if err != nil {
			h.writeWatchResult(conn, "error", watchErrorDetail(err))
			continue
		}
		chain, err := h.manager.Watch(ctx, userID, req)
		if err != nil {
			logger.Warn(ctx, "watch request rejected",
				zap.String("user_id", userID.String()),
				zap.String("chain", req.Chain),
				zap.Error(err),
			)
			h.writeWatchResult(conn, "error", watchErrorDetail(err))
			continue
		}
		registered++
		// the chain actually being polled; per-user monitors mean an
		// earlier watch for another chain wins
		h.writeWatchResult(conn, "watching", chain)
	}
}

func (h *DepositHandler) writeWatchResult(conn *websocket.Conn, status, detail string) {
	_ = conn.WriteJSON(gin.H{"status": status, "detail": detail})
}

// watchErrorDetail mirrors the HTTP error masking for watch frames:
// domain errors pass through, everything else stays inside.
func watchErrorDetail(err error) string {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch {
	case errors.Is(err, domainerrors.ErrUnauthorized),
		errors.Is(err, domainerrors.ErrForbidden),
		errors.Is(err, domainerrors.ErrNotFound),
		errors.Is(err, domainerrors.ErrWalletNotFound),
		errors.Is(err, domainerrors.ErrAddressNotFound),
		errors.Is(err, domainerrors.ErrTokenNotFound),
		errors.Is(err, domainerrors.ErrInvalidInput),
		errors.Is(err, domainerrors.ErrInvalidPayload),
		errors.Is(err, domainerrors.ErrUnsupportedChain):
		return err.Error()
	default:
		return "internal server error"
	}
}
