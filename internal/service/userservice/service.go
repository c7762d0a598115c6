package userservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/cache"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/pkg/token"
	"pedegas/internal/validator"
)

// Prefixo das chaves de token de redefinição de senha no Redis.
const resetKeyPrefix = "pwd-reset:"

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID, stationID, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// UserService orquestra cadastro, login e redefinição de senha.
// O cadastro cria o posto e o usuário dono em sequência.
type UserService struct {
	UserRepo    domain.UserRepository
	StationRepo domain.GasStationRepository
	TokenSvc    TokenService
	Cache       cache.Client
	ResetTTL    time.Duration
	logger      logger.Logger
	now         func() time.Time
}

// NewService cria uma nova instância do UserService, injetando as dependências.
func NewService(userRepo domain.UserRepository, stationRepo domain.GasStationRepository, tokenSvc TokenService, cacheClient cache.Client, resetTTL time.Duration, log logger.Logger) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		StationRepo: stationRepo,
		TokenSvc:    tokenSvc,
		Cache:       cacheClient,
		ResetTTL:    resetTTL,
		logger:      log,
		now:         time.Now,
	}
}

// WithClock troca o relógio do serviço; usado em teste para determinismo.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Register cadastra um novo posto com seu usuário dono.
// Fluxo: validação local → pré-checagem de unicidade (e-mail e CNPJ) →
// persistência. Nenhuma escrita acontece antes das checagens.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação local, sem curto-circuito: todas as violações juntas.
	var violations []string
	appendIf := func(msg string) {
		if msg != "" {
			violations = append(violations, msg)
		}
	}
	appendIf(validator.ValidateEmail(registration.Email))
	appendIf(validator.ValidatePassword(registration.Password))
	appendIf(validator.ValidateConfirmPassword(registration.ConfirmPassword, registration.Password))
	appendIf(validator.ValidateName(registration.FirstName, "Nome"))
	appendIf(validator.ValidateName(registration.LastName, "Sobrenome"))
	appendIf(validator.ValidatePhone(registration.Phone))
	appendIf(validator.ValidateName(registration.StationName, "O nome do posto"))
	appendIf(validator.ValidateCNPJ(registration.CNPJ))

	if len(violations) > 0 {
		return domain.User{}, apperror.NewValidationErrors(violations)
	}

	// 2. Pré-checagens de unicidade contra o backend.
	if _, err := s.UserRepo.FindByEmail(ctx, registration.Email); err == nil {
		return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O e-mail '%s' já está em uso.", registration.Email))
	} else if !isNotFound(err) {
		return domain.User{}, err
	}

	cnpjDigits := validator.OnlyDigits(registration.CNPJ)
	if _, err := s.StationRepo.FindByCNPJ(ctx, cnpjDigits); err == nil {
		return domain.User{}, apperror.NewConflictError(
			fmt.Sprintf("O CNPJ %s já está cadastrado.", validator.FormatCNPJ(cnpjDigits)))
	} else if !isNotFound(err) {
		return domain.User{}, err
	}

	// 3. Hashing da senha.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 4. Criação do posto e do usuário dono.
	station, err := s.StationRepo.Save(ctx, domain.GasStation{
		Name:    registration.StationName,
		CNPJ:    cnpjDigits,
		Phone:   registration.Phone,
		Address: registration.StationAddress,
		Plan:    domain.PlanFree,
	})
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.UserRepo.Save(ctx, domain.User{
		GasStationID: station.ID,
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    registration.FirstName,
		LastName:     registration.LastName,
		Phone:        registration.Phone,
		Role:         domain.RoleOwner,
	})
	if err != nil {
		// Desfaz o posto recém-criado; um posto sem usuário dono deixaria
		// o CNPJ preso e nenhum novo cadastro passaria na pré-checagem.
		if delErr := s.StationRepo.Delete(ctx, station.ID); delErr != nil {
			s.logger.Error("Falha ao desfazer posto após erro no cadastro do dono.", delErr)
		}
		return domain.User{}, err
	}

	s.logger.Info("Novo posto cadastrado.", map[string]interface{}{"station_id": station.ID, "user_id": user.ID})
	return user, nil
}

// Login autentica um usuário, verifica a senha e o plano do posto, e gera um JWT.
func (s *UserService) Login(ctx context.Context, email string, password string) (string, domain.User, error) {
	if email == "" || password == "" {
		return "", domain.User{}, apperror.NewUnauthorizedError("E-mail e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira 401 genérico para não dar dicas a invasores.
		if isNotFound(err) {
			return "", domain.User{}, apperror.NewUnauthorizedError("E-mail ou senha incorretos.")
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, apperror.NewUnauthorizedError("E-mail ou senha incorretos.")
	}

	// Plano vencido bloqueia a sessão; o relógio é injetado.
	station, err := s.StationRepo.FindByID(ctx, user.GasStationID)
	if err != nil {
		return "", domain.User{}, err
	}
	if domain.PlanExpired(station, s.now()) {
		return "", domain.User{}, apperror.NewUnauthorizedError("O plano do posto está vencido. Renove a assinatura para continuar.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.GasStationID, string(user.Role))
	if err != nil {
		return "", domain.User{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, user, nil
}

// RequestPasswordReset gera um token opaco de redefinição com TTL no Redis.
// Para não revelar quais e-mails existem, e-mail desconhecido não é erro.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if msg := validator.ValidateEmail(email); msg != "" {
		return "", apperror.NewValidationError(msg)
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("Pedido de redefinição para e-mail não cadastrado.", map[string]interface{}{"email": email})
			return "", nil
		}
		return "", err
	}

	resetToken := uuid.NewString()
	if err := s.Cache.Set(ctx, resetKeyPrefix+resetToken, user.ID, s.ResetTTL); err != nil {
		return "", apperror.NewInternalError("Falha ao registrar token de redefinição.", err)
	}

	s.logger.Info("Token de redefinição emitido.", map[string]interface{}{"user_id": user.ID})
	return resetToken, nil
}

// ResetPassword valida o token de redefinição e grava a nova senha.
func (s *UserService) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	var violations []string
	if msg := validator.ValidatePassword(newPassword); msg != "" {
		violations = append(violations, msg)
	}
	if msg := validator.ValidateConfirmPassword(confirmPassword, newPassword); msg != "" {
		violations = append(violations, msg)
	}
	if len(violations) > 0 {
		return apperror.NewValidationErrors(violations)
	}

	userID, err := s.Cache.Get(ctx, resetKeyPrefix+resetToken)
	if err != nil {
		if err == cache.ErrCacheMiss {
			return apperror.NewUnauthorizedError("Token de redefinição inválido ou expirado.")
		}
		return apperror.NewInternalError("Falha ao consultar token de redefinição.", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	if err := s.UserRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		return err
	}

	// Token de uso único.
	s.Cache.Delete(ctx, resetKeyPrefix+resetToken)

	s.logger.Info("Senha redefinida com sucesso.", map[string]interface{}{"user_id": userID})
	return nil
}

// isNotFound reporta se o erro da cadeia é um NotFoundError do repositório.
func isNotFound(err error) bool {
	var notFound *apperror.NotFoundError
	return errors.As(err, &notFound)
}
