package escrow

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stayhub/internal/domain"
	"stayhub/internal/pkg/response"
)

// LedgerReader lists the credits the releases produced, for operator
// reconciliation.
type LedgerReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error)
}

// Handler exposes a manual sweep trigger and the release ledger for
// operators. The periodic path goes through the scheduler and the job
// lock; the sweep endpoint is for backfills and incident recovery and
// shares the same idempotent sweep, so running both at once only
// costs wasted work.
type Handler struct {
	service *Service
	ledger  LedgerReader
}

func NewHandler(service *Service, ledger LedgerReader) *Handler {
	return &Handler{service: service, ledger: ledger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/escrow/sweep", h.RunSweep)
	rg.GET("/ledger/:user_id", h.ListLedger)
}

func (h *Handler) RunSweep(c *gin.Context) {
	res, err := h.service.RunSweep(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SWEEP_FAILED", err.Error())
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) ListLedger(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.ledger.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load ledger entries")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}
