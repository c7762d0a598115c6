package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError é a interface central para todos os erros customizados do PedeGás.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular o erro subjacente
}

// --- Tipos de Erro de Domínio ---

// ValidationError representa falhas de validação de dados de entrada.
// Msgs carrega todas as violações encontradas; o chamador corrige e reenvia.
type ValidationError struct {
	Msgs []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Erro de Validação: %s", strings.Join(e.Msgs, "; "))
}
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// Messages expõe a lista ordenada de violações, uma por regra.
func (e *ValidationError) Messages() []string { return e.Msgs }

// NewValidationError cria um erro de validação com uma única mensagem.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msgs: []string{msg}}
}

// NewValidationErrors cria um erro de validação agregando todas as violações.
func NewValidationErrors(msgs []string) AppError {
	return &ValidationError{Msgs: msgs}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito de regra de negócio
// (e.g., e-mail ou CNPJ já cadastrados, OCC).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa falha de autenticação ou sessão inválida.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura ---

// InternalError representa falhas inesperadas do backend (DB, cache, rede).
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
// Falhas de infraestrutura conhecidas (conexão recusada, timeout) chegam ao
// usuário já traduzidas pela tabela de localização.
func NewDBError(msg string, err error) AppError {
	if localized, ok := LocalizeBackend(err); ok {
		return NewInternalError(localized, err)
	}
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Localização de erros do backend ---

// backendMessages mapeia substrings conhecidas de erros do backend para
// mensagens em pt-BR exibíveis ao usuário. Erros que não casam com nenhuma
// entrada passam adiante sem alteração, para nada ser engolido em silêncio.
var backendMessages = []struct {
	substring string
	localized string
}{
	{"invalid login credentials", "E-mail ou senha incorretos."},
	{"duplicate key value", "Já existe um registro com esses dados."},
	{"connection refused", "Serviço temporariamente indisponível. Tente novamente."},
	{"context deadline exceeded", "O servidor demorou para responder. Tente novamente."},
}

// LocalizeBackend tenta traduzir um erro do backend para uma mensagem
// conhecida em pt-BR. Retorna a mensagem localizada e true, ou a mensagem
// original e false se o erro não for reconhecido.
func LocalizeBackend(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	msg := strings.ToLower(err.Error())
	for _, entry := range backendMessages {
		if strings.Contains(msg, entry.substring) {
			return entry.localized, true
		}
	}
	return err.Error(), false
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para código HTTP, categoria e mensagem.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tenta a tabela de localização antes do genérico.
	if localized, ok := LocalizeBackend(err); ok {
		return http.StatusInternalServerError, "BACKEND_ERROR", localized
	}
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
