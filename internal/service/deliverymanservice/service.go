package deliverymanservice

import (
	"context"
	"errors"
	"fmt"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/validator"
)

// Service orquestra o cadastro e o ciclo de vida dos entregadores.
type Service struct {
	repo   domain.DeliverymanRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do serviço de entregadores.
func NewService(repo domain.DeliverymanRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create valida e cadastra um novo entregador para o posto.
// Fluxo: validação local (campos + checksum do CPF) → pré-checagem de
// unicidade de e-mail e CPF → persistência.
func (s *Service) Create(ctx context.Context, gasStationID string, deliveryman domain.Deliveryman) (domain.Deliveryman, error) {
	deliveryman.GasStationID = gasStationID
	deliveryman.CPF = validator.OnlyDigits(deliveryman.CPF)

	violations := deliveryman.Validate()
	// O Validate da entidade checa apenas a contagem de dígitos; o checksum
	// do CPF é garantido aqui, antes de persistir.
	if len(validator.OnlyDigits(deliveryman.CPF)) == 11 {
		if msg := validator.ValidateCPF(deliveryman.CPF); msg != "" {
			violations = append(violations, msg)
		}
	}
	if len(violations) > 0 {
		return domain.Deliveryman{}, apperror.NewValidationErrors(violations)
	}

	if err := s.checkUniqueness(ctx, deliveryman, ""); err != nil {
		return domain.Deliveryman{}, err
	}

	deliveryman.Active = true
	if deliveryman.Permissions == nil {
		deliveryman.Permissions = []string{domain.PermAcceptDeliveries}
	}

	created, err := s.repo.Save(ctx, deliveryman)
	if err != nil {
		return domain.Deliveryman{}, err
	}

	s.logger.Info("Entregador cadastrado.", map[string]interface{}{"deliveryman_id": created.ID, "station_id": gasStationID})
	return created, nil
}

// Update valida e grava os campos editáveis de um entregador do posto,
// mantendo a unicidade de e-mail e CPF contra os demais registros.
func (s *Service) Update(ctx context.Context, gasStationID string, deliveryman domain.Deliveryman) (domain.Deliveryman, error) {
	existing, err := s.repo.FindByID(ctx, deliveryman.ID)
	if err != nil {
		return domain.Deliveryman{}, err
	}
	if existing.GasStationID != gasStationID {
		return domain.Deliveryman{}, apperror.NewNotFoundError("Entregador não encontrado.")
	}

	deliveryman.GasStationID = gasStationID
	deliveryman.CPF = validator.OnlyDigits(deliveryman.CPF)

	violations := deliveryman.Validate()
	if len(validator.OnlyDigits(deliveryman.CPF)) == 11 {
		if msg := validator.ValidateCPF(deliveryman.CPF); msg != "" {
			violations = append(violations, msg)
		}
	}
	if len(violations) > 0 {
		return domain.Deliveryman{}, apperror.NewValidationErrors(violations)
	}

	if err := s.checkUniqueness(ctx, deliveryman, deliveryman.ID); err != nil {
		return domain.Deliveryman{}, err
	}

	deliveryman.Active = existing.Active
	if err := s.repo.Update(ctx, deliveryman); err != nil {
		return domain.Deliveryman{}, err
	}

	deliveryman.CreatedAt = existing.CreatedAt
	return deliveryman, nil
}

// List retorna os entregadores do posto.
func (s *Service) List(ctx context.Context, gasStationID string) ([]domain.Deliveryman, error) {
	return s.repo.FindByStation(ctx, gasStationID)
}

// Activate reativa um entregador do posto.
func (s *Service) Activate(ctx context.Context, gasStationID, deliverymanID string) error {
	return s.setActive(ctx, gasStationID, deliverymanID, true)
}

// Deactivate desativa um entregador do posto sem removê-lo.
func (s *Service) Deactivate(ctx context.Context, gasStationID, deliverymanID string) error {
	return s.setActive(ctx, gasStationID, deliverymanID, false)
}

func (s *Service) setActive(ctx context.Context, gasStationID, deliverymanID string, active bool) error {
	existing, err := s.repo.FindByID(ctx, deliverymanID)
	if err != nil {
		return err
	}
	if existing.GasStationID != gasStationID {
		return apperror.NewNotFoundError("Entregador não encontrado.")
	}

	if err := s.repo.SetActive(ctx, deliverymanID, active); err != nil {
		return err
	}

	s.logger.Info("Situação do entregador alterada.", map[string]interface{}{
		"deliveryman_id": deliverymanID,
		"active":         active,
	})
	return nil
}

// checkUniqueness rejeita e-mail ou CPF já usados por OUTRO registro.
// selfID vazio indica criação (qualquer registro existente conflita).
func (s *Service) checkUniqueness(ctx context.Context, deliveryman domain.Deliveryman, selfID string) error {
	if found, err := s.repo.FindByEmail(ctx, deliveryman.Email); err == nil {
		if found.ID != selfID {
			return apperror.NewConflictError(fmt.Sprintf("O e-mail '%s' já está em uso por outro entregador.", deliveryman.Email))
		}
	} else if !isNotFound(err) {
		return err
	}

	if found, err := s.repo.FindByCPF(ctx, deliveryman.CPF); err == nil {
		if found.ID != selfID {
			return apperror.NewConflictError(
				fmt.Sprintf("O CPF %s já está em uso por outro entregador.", validator.FormatCPF(deliveryman.CPF)))
		}
	} else if !isNotFound(err) {
		return err
	}

	return nil
}

func isNotFound(err error) bool {
	var notFound *apperror.NotFoundError
	return errors.As(err, &notFound)
}
