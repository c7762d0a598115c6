package stationservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/service/stationservice"
)

// MockGasStationRepository é uma implementação mock da interface domain.GasStationRepository.
type MockGasStationRepository struct {
	mock.Mock
}

func (m *MockGasStationRepository) Save(ctx context.Context, station domain.GasStation) (domain.GasStation, error) {
	args := m.Called(ctx, station)
	return args.Get(0).(domain.GasStation), args.Error(1)
}

func (m *MockGasStationRepository) FindByID(ctx context.Context, id string) (domain.GasStation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.GasStation), args.Error(1)
}

func (m *MockGasStationRepository) FindByCNPJ(ctx context.Context, cnpj string) (domain.GasStation, error) {
	args := m.Called(ctx, cnpj)
	return args.Get(0).(domain.GasStation), args.Error(1)
}

func (m *MockGasStationRepository) Update(ctx context.Context, station domain.GasStation) error {
	args := m.Called(ctx, station)
	return args.Error(0)
}

func (m *MockGasStationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func fixedClock() func() time.Time {
	instant := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return instant }
}

func premiumStation(until time.Time) domain.GasStation {
	return domain.GasStation{
		ID:        "gs-1",
		Name:      "Posto Central",
		CNPJ:      "11222333000181",
		Phone:     "11987654321",
		Plan:      domain.PlanPremium,
		PlanUntil: until,
	}
}

func TestGetProfile_FormatsCNPJAndDerivesPlan(t *testing.T) {
	repo := new(MockGasStationRepository)
	svc := stationservice.NewService(repo, logger.NewLogger("error")).WithClock(fixedClock())

	expired := premiumStation(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	repo.On("FindByID", mock.Anything, "gs-1").Return(expired, nil)

	profile, err := svc.GetProfile(context.Background(), "gs-1")

	assert.NoError(t, err)
	assert.Equal(t, "11.222.333/0001-81", profile.CNPJFormatted)
	assert.True(t, profile.PlanExpired)
}

func TestUpdateProfile_CNPJIsImmutable(t *testing.T) {
	repo := new(MockGasStationRepository)
	svc := stationservice.NewService(repo, logger.NewLogger("error")).WithClock(fixedClock())

	current := premiumStation(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	repo.On("FindByID", mock.Anything, "gs-1").Return(current, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(s domain.GasStation) bool {
		// O CNPJ gravado continua sendo o original, não importa o payload.
		return s.CNPJ == "11222333000181" && s.Name == "Posto Novo Nome"
	})).Return(nil)

	profile, err := svc.UpdateProfile(context.Background(), "gs-1", domain.GasStationUpdate{
		Name:    "Posto Novo Nome",
		Phone:   "11912345678",
		Address: "Av. Paulista, 1000",
	})

	assert.NoError(t, err)
	assert.False(t, profile.PlanExpired)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_CollectsViolations(t *testing.T) {
	repo := new(MockGasStationRepository)
	svc := stationservice.NewService(repo, logger.NewLogger("error"))

	_, err := svc.UpdateProfile(context.Background(), "gs-1", domain.GasStationUpdate{
		Name:  "P",
		Phone: "119",
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Messages(), 2)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
