package station

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/pkg/middleware"
	"pedegas/internal/service/stationservice"
)

// StationService define o contrato que o Handler espera da camada de Serviço.
type StationService interface {
	GetProfile(ctx context.Context, stationID string) (stationservice.StationProfile, error)
	UpdateProfile(ctx context.Context, stationID string, update domain.GasStationUpdate) (stationservice.StationProfile, error)
}

// Handler agrupa os métodos de Handler do perfil do posto.
type Handler struct {
	Service StationService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StationService, log logger.Logger) *Handler {
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

// ProfileHandler lida com GET e PUT em /v1/stations/me.
// O posto é sempre o do token: não há acesso ao perfil de outros postos.
// @Summary Consulta ou atualiza o perfil do posto autenticado
// @Tags stations
// @Accept json
// @Produce json
// @Param update body domain.GasStationUpdate false "Campos editáveis (apenas no PUT; CNPJ é imutável)"
// @Success 200 {object} stationservice.StationProfile "Perfil do posto"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /stations/me [get]
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := h.Service.GetProfile(ctx, claims.StationID)
		h.handleServiceResponse(w, r, profile, err, http.StatusOK)

	case http.MethodPut:
		var update domain.GasStationUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
			return
		}

		profile, err := h.Service.UpdateProfile(ctx, claims.StationID, update)
		h.handleServiceResponse(w, r, profile, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
