package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/pkg/middleware"
	"pedegas/internal/service/inventoryservice"
)

// InventoryService define o contrato que o Handler espera da camada de Serviço.
type InventoryService interface {
	List(ctx context.Context, gasStationID string) ([]inventoryservice.ItemView, error)
	Create(ctx context.Context, gasStationID string, item domain.InventoryItem) (inventoryservice.ItemView, error)
	Update(ctx context.Context, gasStationID string, item domain.InventoryItem) (inventoryservice.ItemView, error)
	Adjust(ctx context.Context, gasStationID string, adjustment domain.StockAdjustmentRequest) (inventoryservice.ItemView, error)
	Delete(ctx context.Context, gasStationID, itemID string) error
}

// AdjustRequest representa o payload de ajuste de quantidade.
type AdjustRequest struct {
	Delta int `json:"delta"`
}

// Handler agrupa todos os métodos de Handler do estoque.
type Handler struct {
	Service InventoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc InventoryService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}
	var vErr *apperror.ValidationError
	if errors.As(err, &vErr) {
		errorResponse.Details = vErr.Messages()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// stationFromContext extrai o posto do token; falha vira 401.
func (h *Handler) stationFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return "", false
	}
	return claims.StationID, true
}

// CollectionHandler lida com GET e POST em /v1/inventory.
// @Summary Lista ou cadastra itens de estoque do posto
// @Tags inventory
// @Accept json
// @Produce json
// @Success 200 {array} inventoryservice.ItemView "Itens com status derivado"
// @Success 201 {object} inventoryservice.ItemView "Item criado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou violações de validação"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /inventory [get]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stationID, ok := h.stationFromContext(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		views, err := h.Service.List(ctx, stationID)
		h.handleServiceResponse(w, r, views, err, http.StatusOK)

	case http.MethodPost:
		var item domain.InventoryItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
			return
		}

		view, err := h.Service.Create(ctx, stationID, item)
		h.handleServiceResponse(w, r, view, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ItemHandler lida com as rotas /v1/inventory/{id} e /v1/inventory/{id}/adjust.
// PUT atualiza o item, DELETE remove, POST em /adjust aplica um delta de quantidade.
// @Summary Atualiza, remove ou ajusta a quantidade de um item de estoque
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path string true "ID do item"
// @Success 200 {object} inventoryservice.ItemView "Item com status recalculado"
// @Success 204 "Item removido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou delta zero"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 404 {object} domain.ErrorResponse "Item não encontrado neste posto"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /inventory/{id} [put]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stationID, ok := h.stationFromContext(w, r)
	if !ok {
		return
	}

	// Padrões aceitos: /v1/inventory/{id} e /v1/inventory/{id}/adjust
	path := strings.TrimPrefix(r.URL.Path, "/v1/inventory/")
	segments := strings.Split(strings.Trim(path, "/"), "/")

	itemID := segments[0]
	if itemID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do item ausente na URL."), http.StatusOK)
		return
	}

	if len(segments) == 2 && segments[1] == "adjust" {
		h.adjust(ctx, w, r, stationID, itemID)
		return
	}
	if len(segments) != 1 {
		http.Error(w, "Rota não encontrada", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var item domain.InventoryItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
			return
		}
		item.ID = itemID

		view, err := h.Service.Update(ctx, stationID, item)
		h.handleServiceResponse(w, r, view, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.Delete(ctx, stationID, itemID)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) adjust(ctx context.Context, w http.ResponseWriter, r *http.Request, stationID, itemID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	view, err := h.Service.Adjust(ctx, stationID, domain.StockAdjustmentRequest{ItemID: itemID, Delta: req.Delta})
	h.handleServiceResponse(w, r, view, err, http.StatusOK)
}
