package deliveryman

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
)

// DeliverymanService define o contrato que o Handler espera da camada de Serviço.
type DeliverymanService interface {
	Create(ctx context.Context, gasStationID string, deliveryman domain.Deliveryman) (domain.Deliveryman, error)
	Update(ctx context.Context, gasStationID string, deliveryman domain.Deliveryman) (domain.Deliveryman, error)
	List(ctx context.Context, gasStationID string) ([]domain.Deliveryman, error)
	Activate(ctx context.Context, gasStationID, deliverymanID string) error
	Deactivate(ctx context.Context, gasStationID, deliverymanID string) error
}

// Handler agrupa todos os métodos de Handler de entregadores.
type Handler struct {
	Service DeliverymanService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc DeliverymanService, log logger.Logger) *Handler {
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

func (h *Handler) stationFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return "", false
	}
	return claims.StationID, true
}

// CollectionHandler lida com GET e POST em /v1/deliverymen.
// @Summary Lista ou cadastra entregadores do posto
// @Tags deliverymen
// @Accept json
// @Produce json
// @Success 200 {array} domain.Deliveryman "Entregadores do posto"
// @Success 201 {object} domain.Deliveryman "Entregador criado (ativo, com a permissão padrão)"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou violações de validação"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 409 {object} domain.ErrorResponse "E-mail ou CPF já em uso por outro entregador"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /deliverymen [get]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stationID, ok := h.stationFromContext(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		deliverymen, err := h.Service.List(ctx, stationID)
		h.handleServiceResponse(w, r, deliverymen, err, http.StatusOK)

	case http.MethodPost:
		var newDeliveryman domain.Deliveryman
		if err := json.NewDecoder(r.Body).Decode(&newDeliveryman); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
			return
		}

		created, err := h.Service.Create(ctx, stationID, newDeliveryman)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ItemHandler lida com /v1/deliverymen/{id} (PUT) e as ações
// /activate e /deactivate (POST).
// @Summary Atualiza um entregador ou altera sua situação (ativo/inativo)
// @Tags deliverymen
// @Accept json
// @Produce json
// @Param id path string true "ID do entregador"
// @Success 200 {object} domain.Deliveryman "Entregador atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou violações de validação"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 404 {object} domain.ErrorResponse "Entregador não encontrado neste posto"
// @Failure 409 {object} domain.ErrorResponse "E-mail ou CPF já em uso por outro entregador"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /deliverymen/{id} [put]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stationID, ok := h.stationFromContext(w, r)
	if !ok {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/deliverymen/")
	segments := strings.Split(strings.Trim(path, "/"), "/")

	deliverymanID := segments[0]
	if deliverymanID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do entregador ausente na URL."), http.StatusOK)
		return
	}

	if len(segments) == 1 {
		if r.Method != http.MethodPut {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}

		var update domain.Deliveryman
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
			return
		}
		update.ID = deliverymanID

		updated, err := h.Service.Update(ctx, stationID, update)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)
		return
	}

	if len(segments) != 2 {
		http.Error(w, "Rota não encontrada", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	switch segments[1] {
	case "activate":
		err := h.Service.Activate(ctx, stationID, deliverymanID)
		h.respondAction(w, r, err, "Entregador ativado.")

	case "deactivate":
		err := h.Service.Deactivate(ctx, stationID, deliverymanID)
		h.respondAction(w, r, err, "Entregador desativado.")

	default:
		http.Error(w, "Rota não encontrada", http.StatusNotFound)
	}
}

func (h *Handler) respondAction(w http.ResponseWriter, r *http.Request, err error, successMessage string) {
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, map[string]string{"message": successMessage}, nil, http.StatusOK)
}
