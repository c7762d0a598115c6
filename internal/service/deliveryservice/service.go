package deliveryservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
)

// Service orquestra o ciclo de vida dos pedidos de entrega.
// O banco não valida transições de status: os predicados do domínio são
// sempre consultados antes de qualquer atualização.
type Service struct {
	repo   domain.DeliveryRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do serviço de entregas.
func NewService(repo domain.DeliveryRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create valida e registra um novo pedido com status pendente.
func (s *Service) Create(ctx context.Context, gasStationID string, delivery domain.Delivery) (domain.Delivery, error) {
	delivery.GasStationID = gasStationID
	delivery.Status = domain.DeliveryPending
	if delivery.Priority == "" {
		delivery.Priority = domain.PriorityMedium
	}

	if violations := delivery.Validate(); len(violations) > 0 {
		return domain.Delivery{}, apperror.NewValidationErrors(violations)
	}

	created, err := s.repo.Save(ctx, delivery)
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("Pedido de entrega criado.", map[string]interface{}{
		"delivery_id": created.ID,
		"station_id":  gasStationID,
		"priority":    string(created.Priority),
	})
	return created, nil
}

// List retorna os pedidos do posto com os filtros opcionais aplicados.
func (s *Service) List(ctx context.Context, gasStationID string, filter domain.DeliveryFilter) ([]domain.Delivery, error) {
	return s.repo.FindByStation(ctx, gasStationID, filter)
}

// Get retorna um pedido do posto pelo ID.
func (s *Service) Get(ctx context.Context, gasStationID, deliveryID string) (domain.Delivery, error) {
	return s.findScoped(ctx, gasStationID, deliveryID)
}

// Accept aceita um pedido pendente e o atribui a um entregador.
func (s *Service) Accept(ctx context.Context, gasStationID, deliveryID, deliverymanID string) error {
	delivery, err := s.findScoped(ctx, gasStationID, deliveryID)
	if err != nil {
		return err
	}

	if !delivery.CanBeAccepted() {
		return apperror.NewConflictError(
			fmt.Sprintf("Apenas pedidos pendentes podem ser aceitos (status atual: %s).", delivery.Status.Label()))
	}

	if err := s.repo.UpdateStatus(ctx, deliveryID, domain.DeliveryAccepted, deliverymanID); err != nil {
		return err
	}

	s.logger.Info("Pedido aceito.", map[string]interface{}{"delivery_id": deliveryID, "deliveryman_id": deliverymanID})
	return nil
}

// Reject recusa um pedido pendente.
func (s *Service) Reject(ctx context.Context, gasStationID, deliveryID string) error {
	delivery, err := s.findScoped(ctx, gasStationID, deliveryID)
	if err != nil {
		return err
	}

	if !delivery.CanBeRejected() {
		return apperror.NewConflictError(
			fmt.Sprintf("Apenas pedidos pendentes podem ser recusados (status atual: %s).", delivery.Status.Label()))
	}

	if err := s.repo.UpdateStatus(ctx, deliveryID, domain.DeliveryRejected, ""); err != nil {
		return err
	}

	s.logger.Info("Pedido recusado.", map[string]interface{}{"delivery_id": deliveryID})
	return nil
}

// Start coloca um pedido aceito em rota.
func (s *Service) Start(ctx context.Context, gasStationID, deliveryID string) error {
	delivery, err := s.findScoped(ctx, gasStationID, deliveryID)
	if err != nil {
		return err
	}

	if !delivery.CanStart() {
		return apperror.NewConflictError(
			fmt.Sprintf("Apenas pedidos aceitos podem entrar em rota (status atual: %s).", delivery.Status.Label()))
	}

	return s.repo.UpdateStatus(ctx, deliveryID, domain.DeliveryInProgress, "")
}

// Complete conclui um pedido em rota.
func (s *Service) Complete(ctx context.Context, gasStationID, deliveryID string) error {
	delivery, err := s.findScoped(ctx, gasStationID, deliveryID)
	if err != nil {
		return err
	}

	if !delivery.CanComplete() {
		return apperror.NewConflictError(
			fmt.Sprintf("Apenas pedidos em rota podem ser concluídos (status atual: %s).", delivery.Status.Label()))
	}

	if err := s.repo.UpdateStatus(ctx, deliveryID, domain.DeliveryDelivered, ""); err != nil {
		return err
	}

	s.logger.Info("Pedido entregue.", map[string]interface{}{"delivery_id": deliveryID})
	return nil
}

// GenerateInvoice emite a nota de um pedido aceito que ainda não tem nota.
// A emissão acontece no máximo uma vez por pedido.
func (s *Service) GenerateInvoice(ctx context.Context, gasStationID, deliveryID string) (string, error) {
	delivery, err := s.findScoped(ctx, gasStationID, deliveryID)
	if err != nil {
		return "", err
	}

	if !delivery.CanGenerateInvoice() {
		if delivery.InvoiceNumber != "" {
			return "", apperror.NewConflictError("A nota deste pedido já foi emitida.")
		}
		return "", apperror.NewConflictError(
			fmt.Sprintf("A nota só pode ser emitida para pedidos aceitos (status atual: %s).", delivery.Status.Label()))
	}

	invoiceNumber := "NF-" + strings.ToUpper(uuid.NewString()[:8])
	if err := s.repo.SetInvoiceNumber(ctx, deliveryID, invoiceNumber); err != nil {
		return "", err
	}

	s.logger.Info("Nota emitida.", map[string]interface{}{"delivery_id": deliveryID, "invoice_number": invoiceNumber})
	return invoiceNumber, nil
}

// findScoped busca um pedido e garante que ele pertence ao posto do chamador.
func (s *Service) findScoped(ctx context.Context, gasStationID, deliveryID string) (domain.Delivery, error) {
	delivery, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if delivery.GasStationID != gasStationID {
		return domain.Delivery{}, apperror.NewNotFoundError("Pedido não encontrado.")
	}
	return delivery, nil
}
