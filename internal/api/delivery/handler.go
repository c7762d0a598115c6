package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/pkg/middleware"
)

// DeliveryService define o contrato que o Handler espera da camada de Serviço.
type DeliveryService interface {
	Create(ctx context.Context, gasStationID string, delivery domain.Delivery) (domain.Delivery, error)
	List(ctx context.Context, gasStationID string, filter domain.DeliveryFilter) ([]domain.Delivery, error)
	Get(ctx context.Context, gasStationID, deliveryID string) (domain.Delivery, error)
	Accept(ctx context.Context, gasStationID, deliveryID, deliverymanID string) error
	Reject(ctx context.Context, gasStationID, deliveryID string) error
	Start(ctx context.Context, gasStationID, deliveryID string) error
	Complete(ctx context.Context, gasStationID, deliveryID string) error
	GenerateInvoice(ctx context.Context, gasStationID, deliveryID string) (string, error)
}

// AcceptRequest representa o payload do aceite de um pedido.
type AcceptRequest struct {
	DeliverymanID string `json:"deliveryman_id"`
}

// Handler agrupa todos os métodos de Handler de pedidos de entrega.
type Handler struct {
	Service DeliveryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc DeliveryService, log logger.Logger) *Handler {
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

// CollectionHandler lida com GET e POST em /v1/deliveries.
// No GET, os filtros vêm da query string: status, priority, from e to (RFC 3339).
// @Summary Lista ou cadastra pedidos de entrega do posto
// @Tags deliveries
// @Accept json
// @Produce json
// @Param status query string false "Filtro por status (pending, accepted, in_progress, delivered, rejected)"
// @Param priority query string false "Filtro por prioridade (low, medium, high)"
// @Param from query string false "Início do período (RFC 3339)"
// @Param to query string false "Fim do período (RFC 3339)"
// @Success 200 {array} domain.Delivery "Pedidos do posto"
// @Success 201 {object} domain.Delivery "Pedido criado (status pending)"
// @Failure 400 {object} domain.ErrorResponse "Payload ou filtro inválido"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /deliveries [get]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stationID, ok := h.stationFromContext(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		filter, err := parseFilter(r)
		if err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}

		deliveries, err := h.Service.List(ctx, stationID, filter)
		h.handleServiceResponse(w, r, deliveries, err, http.StatusOK)

	case http.MethodPost:
		var newDelivery domain.Delivery
		if err := json.NewDecoder(r.Body).Decode(&newDelivery); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
			return
		}

		created, err := h.Service.Create(ctx, stationID, newDelivery)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ItemHandler lida com /v1/deliveries/{id} e as ações do ciclo de vida:
// /accept, /reject, /start, /complete e /invoice (todas via POST).
// @Summary Consulta um pedido ou executa uma ação do seu ciclo de vida
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Delivery "Pedido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 404 {object} domain.ErrorResponse "Pedido não encontrado neste posto"
// @Failure 409 {object} domain.ErrorResponse "Transição de status não permitida ou nota já emitida"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /deliveries/{id} [get]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stationID, ok := h.stationFromContext(w, r)
	if !ok {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/deliveries/")
	segments := strings.Split(strings.Trim(path, "/"), "/")

	deliveryID := segments[0]
	if deliveryID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do pedido ausente na URL."), http.StatusOK)
		return
	}

	if len(segments) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}
		found, err := h.Service.Get(ctx, stationID, deliveryID)
		h.handleServiceResponse(w, r, found, err, http.StatusOK)
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
	case "accept":
		var req AcceptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
			return
		}
		err := h.Service.Accept(ctx, stationID, deliveryID, req.DeliverymanID)
		h.respondAction(w, r, err, "Pedido aceito.")

	case "reject":
		err := h.Service.Reject(ctx, stationID, deliveryID)
		h.respondAction(w, r, err, "Pedido recusado.")

	case "start":
		err := h.Service.Start(ctx, stationID, deliveryID)
		h.respondAction(w, r, err, "Entrega iniciada.")

	case "complete":
		err := h.Service.Complete(ctx, stationID, deliveryID)
		h.respondAction(w, r, err, "Entrega concluída.")

	case "invoice":
		invoiceNumber, err := h.Service.GenerateInvoice(ctx, stationID, deliveryID)
		if err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
		h.handleServiceResponse(w, r, map[string]string{"invoice_number": invoiceNumber}, nil, http.StatusOK)

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

// parseFilter monta o DeliveryFilter a partir da query string.
func parseFilter(r *http.Request) (domain.DeliveryFilter, error) {
	query := r.URL.Query()
	filter := domain.DeliveryFilter{
		Status:   domain.DeliveryStatus(query.Get("status")),
		Priority: domain.DeliveryPriority(query.Get("priority")),
	}

	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.DeliveryFilter{}, apperror.NewValidationError("Parâmetro 'from' inválido. Use o formato RFC 3339.")
		}
		filter.From = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.DeliveryFilter{}, apperror.NewValidationError("Parâmetro 'to' inválido. Use o formato RFC 3339.")
		}
		filter.To = parsed
	}

	return filter, nil
}
