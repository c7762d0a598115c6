package stationservice

import (
	"context"
	"time"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/validator"
)

// StationProfile é a visão do perfil do posto devolvida pela API,
// com o CNPJ formatado para exibição e a situação do plano derivada.
type StationProfile struct {
	domain.GasStation
	CNPJFormatted string `json:"cnpj_formatted"`
	PlanExpired   bool   `json:"plan_expired"`
}

// Service orquestra a consulta e a atualização do perfil do posto.
type Service struct {
	repo   domain.GasStationRepository
	logger logger.Logger
	now    func() time.Time
}

// NewService cria uma nova instância do serviço de posto.
func NewService(repo domain.GasStationRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log, now: time.Now}
}

// WithClock troca o relógio do serviço; usado em teste para determinismo.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetProfile retorna o perfil do posto com o CNPJ formatado e a situação do plano.
func (s *Service) GetProfile(ctx context.Context, stationID string) (StationProfile, error) {
	station, err := s.repo.FindByID(ctx, stationID)
	if err != nil {
		return StationProfile{}, err
	}

	return StationProfile{
		GasStation:    station,
		CNPJFormatted: validator.FormatCNPJ(station.CNPJ),
		PlanExpired:   domain.PlanExpired(station, s.now()),
	}, nil
}

// UpdateProfile grava os campos editáveis do perfil. O CNPJ é imutável.
func (s *Service) UpdateProfile(ctx context.Context, stationID string, update domain.GasStationUpdate) (StationProfile, error) {
	var violations []string
	if msg := validator.ValidateName(update.Name, "O nome do posto"); msg != "" {
		violations = append(violations, msg)
	}
	if msg := validator.ValidatePhone(update.Phone); msg != "" {
		violations = append(violations, msg)
	}
	if len(violations) > 0 {
		return StationProfile{}, apperror.NewValidationErrors(violations)
	}

	station, err := s.repo.FindByID(ctx, stationID)
	if err != nil {
		return StationProfile{}, err
	}

	station.Name = update.Name
	station.Phone = update.Phone
	station.Address = update.Address

	if err := s.repo.Update(ctx, station); err != nil {
		return StationProfile{}, err
	}

	s.logger.Info("Perfil do posto atualizado.", map[string]interface{}{"station_id": stationID})
	return StationProfile{
		GasStation:    station,
		CNPJFormatted: validator.FormatCNPJ(station.CNPJ),
		PlanExpired:   domain.PlanExpired(station, s.now()),
	}, nil
}
