package userservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/cache"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/pkg/token"
	"pedegas/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface domain.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// MockStationRepository é uma implementação mock da interface domain.GasStationRepository.
type MockStationRepository struct {
	mock.Mock
}

func (m *MockStationRepository) Save(ctx context.Context, station domain.GasStation) (domain.GasStation, error) {
	args := m.Called(ctx, station)
	return args.Get(0).(domain.GasStation), args.Error(1)
}

func (m *MockStationRepository) FindByID(ctx context.Context, id string) (domain.GasStation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.GasStation), args.Error(1)
}

func (m *MockStationRepository) FindByCNPJ(ctx context.Context, cnpj string) (domain.GasStation, error) {
	args := m.Called(ctx, cnpj)
	return args.Get(0).(domain.GasStation), args.Error(1)
}

func (m *MockStationRepository) Update(ctx context.Context, station domain.GasStation) error {
	args := m.Called(ctx, station)
	return args.Error(0)
}

func (m *MockStationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenService é uma implementação mock do contrato de tokens.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID, stationID, userRole string) (string, error) {
	args := m.Called(userID, stationID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	return args.Get(0).(*token.CustomClaims), args.Error(1)
}

// MockCache é uma implementação mock da interface cache.Client.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Incr(ctx context.Context, key string, expiration time.Duration) (int, error) {
	args := m.Called(ctx, key, expiration)
	return args.Int(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newService(userRepo *MockUserRepository, stationRepo *MockStationRepository, tokenSvc *MockTokenService, cacheClient *MockCache) *userservice.UserService {
	return userservice.NewService(userRepo, stationRepo, tokenSvc, cacheClient, 30*time.Minute, logger.NewLogger("error"))
}

func validRegistration() domain.UserRegistration {
	return domain.UserRegistration{
		Email:           "dono@posto.com",
		Password:        "segredo123",
		ConfirmPassword: "segredo123",
		FirstName:       "Carlos",
		LastName:        "Souza",
		Phone:           "11987654321",
		StationName:     "Posto Central",
		CNPJ:            "11.222.333/0001-81",
		StationAddress:  "Av. Brasil, 1000",
	}
}

// TestRegister_CollectsAllViolations garante que a validação local reporta
// todas as violações de uma vez, sem tocar no backend.
func TestRegister_CollectsAllViolations(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	svc := newService(userRepo, stationRepo, new(MockTokenService), new(MockCache))

	reg := validRegistration()
	reg.Email = "sem-arroba"
	reg.Password = "123"
	reg.ConfirmPassword = "456"
	reg.CNPJ = "11111111111111"

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Messages(), "Formato de e-mail inválido.")
	assert.Contains(t, vErr.Messages(), "A senha deve ter no mínimo 6 caracteres.")
	assert.Contains(t, vErr.Messages(), "As senhas não coincidem.")
	assert.Contains(t, vErr.Messages(), "CNPJ inválido.")
	userRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	stationRepo.AssertNotCalled(t, "FindByCNPJ", mock.Anything, mock.Anything)
}

func TestRegister_EmailConflict(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	svc := newService(userRepo, stationRepo, new(MockTokenService), new(MockCache))

	reg := validRegistration()
	userRepo.On("FindByEmail", mock.Anything, reg.Email).Return(domain.User{ID: "u-1", Email: reg.Email}, nil)

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	var cErr *apperror.ConflictError
	assert.ErrorAs(t, err, &cErr)
	assert.Contains(t, err.Error(), "já está em uso")
	stationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_CNPJConflict(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	svc := newService(userRepo, stationRepo, new(MockTokenService), new(MockCache))

	reg := validRegistration()
	userRepo.On("FindByEmail", mock.Anything, reg.Email).
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))
	stationRepo.On("FindByCNPJ", mock.Anything, "11222333000181").
		Return(domain.GasStation{ID: "gs-1"}, nil)

	_, err := svc.Register(context.Background(), reg)

	var cErr *apperror.ConflictError
	assert.ErrorAs(t, err, &cErr)
	assert.Contains(t, err.Error(), "11.222.333/0001-81")
	stationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	svc := newService(userRepo, stationRepo, new(MockTokenService), new(MockCache))

	reg := validRegistration()
	userRepo.On("FindByEmail", mock.Anything, reg.Email).
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))
	stationRepo.On("FindByCNPJ", mock.Anything, "11222333000181").
		Return(domain.GasStation{}, apperror.NewNotFoundError("não encontrado"))

	stationRepo.On("Save", mock.Anything, mock.MatchedBy(func(st domain.GasStation) bool {
		// O CNPJ é persistido normalizado (apenas dígitos) e o plano inicia gratuito.
		return st.CNPJ == "11222333000181" && st.Plan == domain.PlanFree
	})).Return(domain.GasStation{ID: "gs-1", CNPJ: "11222333000181"}, nil)

	userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.GasStationID == "gs-1" && u.Role == domain.RoleOwner && u.PasswordHash != reg.Password
	})).Return(domain.User{ID: "u-1", GasStationID: "gs-1", Role: domain.RoleOwner}, nil)

	user, err := svc.Register(context.Background(), reg)

	assert.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	userRepo.AssertExpectations(t)
	stationRepo.AssertExpectations(t)
}

// Se o usuário dono falha depois do posto ter sido criado (ex.: outro
// cadastro levou o e-mail entre a pré-checagem e o insert), o posto é
// removido para o CNPJ não ficar preso sem ninguém conseguir logar.
func TestRegister_RemovesStationWhenOwnerSaveFails(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	svc := newService(userRepo, stationRepo, new(MockTokenService), new(MockCache))

	reg := validRegistration()
	userRepo.On("FindByEmail", mock.Anything, reg.Email).
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))
	stationRepo.On("FindByCNPJ", mock.Anything, "11222333000181").
		Return(domain.GasStation{}, apperror.NewNotFoundError("não encontrado"))
	stationRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.GasStation{ID: "gs-1", CNPJ: "11222333000181"}, nil)

	userRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("O e-mail 'dono@posto.com' já está em uso."))
	stationRepo.On("Delete", mock.Anything, "gs-1").Return(nil).Once()

	_, err := svc.Register(context.Background(), reg)

	var cErr *apperror.ConflictError
	assert.ErrorAs(t, err, &cErr)
	userRepo.AssertExpectations(t)
	stationRepo.AssertExpectations(t)
}

// A falha na compensação não esconde o erro original do cadastro.
func TestRegister_OwnerSaveFailureSurvivesCompensationFailure(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	svc := newService(userRepo, stationRepo, new(MockTokenService), new(MockCache))

	reg := validRegistration()
	userRepo.On("FindByEmail", mock.Anything, reg.Email).
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))
	stationRepo.On("FindByCNPJ", mock.Anything, "11222333000181").
		Return(domain.GasStation{}, apperror.NewNotFoundError("não encontrado"))
	stationRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.GasStation{ID: "gs-1", CNPJ: "11222333000181"}, nil)

	userRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("O e-mail 'dono@posto.com' já está em uso."))
	stationRepo.On("Delete", mock.Anything, "gs-1").
		Return(apperror.NewDBError("failed to delete gas station", assert.AnError))

	_, err := svc.Register(context.Background(), reg)

	var cErr *apperror.ConflictError
	assert.ErrorAs(t, err, &cErr)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	svc := newService(userRepo, stationRepo, new(MockTokenService), new(MockCache))

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-certa"), bcrypt.MinCost)
	userRepo.On("FindByEmail", mock.Anything, "dono@posto.com").
		Return(domain.User{ID: "u-1", PasswordHash: string(hash)}, nil)

	_, _, err := svc.Login(context.Background(), "dono@posto.com", "senha-errada")

	var uErr *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &uErr)
	assert.Contains(t, err.Error(), "E-mail ou senha incorretos.")
}

// E-mail inexistente responde com a mesma mensagem de senha errada,
// sem revelar quais contas existem.
func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newService(userRepo, new(MockStationRepository), new(MockTokenService), new(MockCache))

	userRepo.On("FindByEmail", mock.Anything, "x@y.com").
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))

	_, _, err := svc.Login(context.Background(), "x@y.com", "123456")

	var uErr *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &uErr)
	assert.Contains(t, err.Error(), "E-mail ou senha incorretos.")
}

func TestLogin_ExpiredPlanBlocksSession(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	tokenSvc := new(MockTokenService)
	svc := newService(userRepo, stationRepo, tokenSvc, new(MockCache))

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	hash, _ := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	userRepo.On("FindByEmail", mock.Anything, "dono@posto.com").
		Return(domain.User{ID: "u-1", GasStationID: "gs-1", PasswordHash: string(hash)}, nil)
	stationRepo.On("FindByID", mock.Anything, "gs-1").Return(domain.GasStation{
		ID:        "gs-1",
		Plan:      domain.PlanPremium,
		PlanUntil: now.Add(-time.Hour),
	}, nil)

	_, _, err := svc.Login(context.Background(), "dono@posto.com", "segredo123")

	var uErr *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &uErr)
	assert.Contains(t, err.Error(), "plano do posto está vencido")
	tokenSvc.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	stationRepo := new(MockStationRepository)
	tokenSvc := new(MockTokenService)
	svc := newService(userRepo, stationRepo, tokenSvc, new(MockCache))

	hash, _ := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	userRepo.On("FindByEmail", mock.Anything, "dono@posto.com").
		Return(domain.User{ID: "u-1", GasStationID: "gs-1", Role: domain.RoleOwner, PasswordHash: string(hash)}, nil)
	stationRepo.On("FindByID", mock.Anything, "gs-1").
		Return(domain.GasStation{ID: "gs-1", Plan: domain.PlanFree}, nil)
	tokenSvc.On("GenerateToken", "u-1", "gs-1", "owner").Return("jwt-token", nil)

	tokenString, user, err := svc.Login(context.Background(), "dono@posto.com", "segredo123")

	assert.NoError(t, err)
	assert.Equal(t, "jwt-token", tokenString)
	assert.Equal(t, "u-1", user.ID)
	tokenSvc.AssertExpectations(t)
}

// Pedido de redefinição para e-mail desconhecido não vira erro, para a API
// não revelar quais e-mails estão cadastrados.
func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	userRepo := new(MockUserRepository)
	cacheClient := new(MockCache)
	svc := newService(userRepo, new(MockStationRepository), new(MockTokenService), cacheClient)

	userRepo.On("FindByEmail", mock.Anything, "x@y.com").
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))

	resetToken, err := svc.RequestPasswordReset(context.Background(), "x@y.com")

	assert.NoError(t, err)
	assert.Empty(t, resetToken)
	cacheClient.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	cacheClient := new(MockCache)
	svc := newService(userRepo, new(MockStationRepository), new(MockTokenService), cacheClient)

	userRepo.On("FindByEmail", mock.Anything, "dono@posto.com").
		Return(domain.User{ID: "u-1"}, nil)
	cacheClient.On("Set", mock.Anything, mock.Anything, "u-1", 30*time.Minute).Return(nil)

	resetToken, err := svc.RequestPasswordReset(context.Background(), "dono@posto.com")

	assert.NoError(t, err)
	assert.NotEmpty(t, resetToken)
	cacheClient.AssertExpectations(t)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	cacheClient := new(MockCache)
	svc := newService(new(MockUserRepository), new(MockStationRepository), new(MockTokenService), cacheClient)

	cacheClient.On("Get", mock.Anything, "pwd-reset:token-falso").Return("", cache.ErrCacheMiss)

	err := svc.ResetPassword(context.Background(), "token-falso", "novasenha", "novasenha")

	var uErr *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &uErr)
	assert.Contains(t, err.Error(), "Token de redefinição inválido ou expirado.")
}

func TestResetPassword_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	cacheClient := new(MockCache)
	svc := newService(userRepo, new(MockStationRepository), new(MockTokenService), cacheClient)

	cacheClient.On("Get", mock.Anything, "pwd-reset:token-bom").Return("u-1", nil)
	userRepo.On("UpdatePasswordHash", mock.Anything, "u-1", mock.Anything).Return(nil)
	cacheClient.On("Delete", mock.Anything, "pwd-reset:token-bom").Return(nil)

	err := svc.ResetPassword(context.Background(), "token-bom", "novasenha", "novasenha")

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
	cacheClient.AssertExpectations(t)
}
