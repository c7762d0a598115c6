package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
)

// UserService define o contrato para as operações de conta do usuário.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (string, domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carrega o token emitido e os dados básicos do usuário.
type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// PasswordResetRequest representa o pedido de redefinição de senha.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm representa a confirmação da redefinição de senha.
type PasswordResetConfirm struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
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
	// Erros de validação carregam a lista completa de violações.
	var vErr *apperror.ValidationError
	if errors.As(err, &vErr) {
		errorResponse.Details = vErr.Messages()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// RegisterUserHandler lida com a requisição POST /v1/register.
// @Summary Registra um novo posto com seu usuário dono
// @Description Valida os dados, cria o posto (plano free) e o usuário dono com a senha hasheada.
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Dados do cadastro (usuário + posto)"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou violações de validação"
// @Failure 409 {object} domain.ErrorResponse "E-mail ou CNPJ já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	newUser, err := h.Service.Register(ctx, reg)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	// O PasswordHash não vaza na resposta (tag json:"-" na struct).
	h.handleServiceResponse(w, r, newUser, nil, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha, verifica as credenciais e a situação do plano e emite um JSON Web Token.
// @Tags users
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} LoginResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas ou plano vencido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	tokenString, loggedUser, err := h.Service.Login(ctx, loginReq.Email, loginReq.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, LoginResponse{Token: tokenString, User: loggedUser}, nil, http.StatusOK)
}

// RequestPasswordResetHandler lida com a requisição POST /v1/password-reset.
// @Summary Solicita a redefinição de senha
// @Description Gera um token opaco de uso único com TTL. E-mails desconhecidos recebem a mesma resposta de sucesso.
// @Tags users
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "E-mail da conta"
// @Success 202 {object} map[string]string "Solicitação aceita"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /password-reset [post]
func (h *Handler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusAccepted)
		return
	}

	// O token não volta na resposta: o envio por e-mail é responsabilidade
	// de outro processo. A resposta é a mesma para e-mails desconhecidos.
	if _, err := h.Service.RequestPasswordReset(ctx, req.Email); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusAccepted)
		return
	}

	response := map[string]string{"message": "Se o e-mail estiver cadastrado, as instruções de redefinição serão enviadas."}
	h.handleServiceResponse(w, r, response, nil, http.StatusAccepted)
}

// ResetPasswordHandler lida com a requisição POST /v1/password-reset/confirm.
// @Summary Confirma a redefinição de senha
// @Description Valida o token opaco, grava o novo hash de senha e invalida o token.
// @Tags users
// @Accept json
// @Produce json
// @Param confirm body PasswordResetConfirm true "Token e nova senha"
// @Success 200 {object} map[string]string "Senha redefinida"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou senhas não conferem"
// @Failure 401 {object} domain.ErrorResponse "Token inválido ou expirado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /password-reset/confirm [post]
func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req PasswordResetConfirm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	if err := h.Service.ResetPassword(ctx, req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	response := map[string]string{"message": "Senha redefinida com sucesso."}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}
