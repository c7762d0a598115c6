package inventoryservice

import (
	"context"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
)

// ItemView é a visão de um item de estoque com o status derivado e os
// dados de exibição da tabela de status.
type ItemView struct {
	domain.InventoryItem
	Status     domain.StockStatus     `json:"status"`
	StatusInfo domain.StockStatusInfo `json:"status_info"`
}

// Service orquestra o estoque de um posto: listagem com status derivado,
// cadastro, atualização e ajuste de quantidade.
type Service struct {
	repo   domain.InventoryRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do serviço de estoque.
func NewService(repo domain.InventoryRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// List retorna os itens do posto com o status derivado de cada um.
func (s *Service) List(ctx context.Context, gasStationID string) ([]ItemView, error) {
	items, err := s.repo.FindByStation(ctx, gasStationID)
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toView(item))
	}
	return views, nil
}

// Create valida e cadastra um novo item de estoque para o posto.
func (s *Service) Create(ctx context.Context, gasStationID string, item domain.InventoryItem) (ItemView, error) {
	item.GasStationID = gasStationID

	if violations := item.Validate(); len(violations) > 0 {
		return ItemView{}, apperror.NewValidationErrors(violations)
	}

	created, err := s.repo.Save(ctx, item)
	if err != nil {
		return ItemView{}, err
	}

	s.logger.Info("Item de estoque criado.", map[string]interface{}{"item_id": created.ID, "station_id": gasStationID})
	return toView(created), nil
}

// Update valida e grava os campos editáveis de um item do posto.
func (s *Service) Update(ctx context.Context, gasStationID string, item domain.InventoryItem) (ItemView, error) {
	existing, err := s.repo.FindByID(ctx, item.ID)
	if err != nil {
		return ItemView{}, err
	}
	// Item de outro posto é invisível para o chamador.
	if existing.GasStationID != gasStationID {
		return ItemView{}, apperror.NewNotFoundError("Item de estoque não encontrado.")
	}

	item.GasStationID = gasStationID
	if violations := item.Validate(); len(violations) > 0 {
		return ItemView{}, apperror.NewValidationErrors(violations)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return ItemView{}, err
	}

	item.CreatedAt = existing.CreatedAt
	return toView(item), nil
}

// Adjust aplica um delta à quantidade de um item do posto e devolve o item
// com o status recalculado.
func (s *Service) Adjust(ctx context.Context, gasStationID string, adjustment domain.StockAdjustmentRequest) (ItemView, error) {
	if adjustment.Delta == 0 {
		return ItemView{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}

	existing, err := s.repo.FindByID(ctx, adjustment.ItemID)
	if err != nil {
		return ItemView{}, err
	}
	if existing.GasStationID != gasStationID {
		return ItemView{}, apperror.NewNotFoundError("Item de estoque não encontrado.")
	}

	adjusted, err := s.repo.AdjustQuantity(ctx, adjustment)
	if err != nil {
		return ItemView{}, err
	}

	s.logger.Info("Estoque ajustado.", map[string]interface{}{
		"item_id":      adjusted.ID,
		"new_quantity": adjusted.Quantity,
		"status":       string(adjusted.Status()),
	})
	return toView(adjusted), nil
}

// Delete remove um item de estoque do posto.
func (s *Service) Delete(ctx context.Context, gasStationID, itemID string) error {
	existing, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if existing.GasStationID != gasStationID {
		return apperror.NewNotFoundError("Item de estoque não encontrado.")
	}

	return s.repo.Delete(ctx, itemID)
}

func toView(item domain.InventoryItem) ItemView {
	status := item.Status()
	return ItemView{
		InventoryItem: item,
		Status:        status,
		StatusInfo:    status.Info(),
	}
}
