package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ProductType é o código do tamanho de botijão usado como categoria de estoque.
type ProductType string

const (
	ProductP13 ProductType = "p13" // Botijão 13kg
	ProductP20 ProductType = "p20" // Botijão 20kg
	ProductP45 ProductType = "p45" // Botijão 45kg
	ProductP90 ProductType = "p90" // Cilindro 90kg
)

// productTypeLabels é a tabela de exibição dos tipos de botijão.
var productTypeLabels = map[ProductType]string{
	ProductP13: "Botijão 13kg",
	ProductP20: "Botijão 20kg",
	ProductP45: "Botijão 45kg",
	ProductP90: "Cilindro 90kg",
}

// ValidProductType reporta se o código de tipo é conhecido.
func ValidProductType(pt ProductType) bool {
	_, ok := productTypeLabels[pt]
	return ok
}

// Label retorna o rótulo de exibição do tipo, ou o próprio código se desconhecido.
func (pt ProductType) Label() string {
	if label, ok := productTypeLabels[pt]; ok {
		return label
	}
	return string(pt)
}

// InventoryItem representa um item de estoque de um posto.
type InventoryItem struct {
	ID           string      `json:"id"`
	GasStationID string      `json:"gas_station_id"`
	ProductName  string      `json:"product_name"`
	ProductType  ProductType `json:"product_type"`
	Quantity     int         `json:"quantity"`
	MinQuantity  int         `json:"min_quantity"`
	MaxQuantity  int         `json:"max_quantity"`
	UnitPrice    float64     `json:"unit_price"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Validate retorna todas as violações do item, na ordem dos campos.
// Lista vazia significa item válido. Nenhuma regra interrompe as demais,
// para o formulário exibir todos os problemas de uma vez.
func (i InventoryItem) Validate() []string {
	var violations []string

	if strings.TrimSpace(i.ProductName) == "" {
		violations = append(violations, "O nome do produto é obrigatório.")
	}
	if !ValidProductType(i.ProductType) {
		violations = append(violations, fmt.Sprintf("Tipo de produto desconhecido: %q.", string(i.ProductType)))
	}
	if i.Quantity < 0 {
		violations = append(violations, "A quantidade não pode ser negativa.")
	}
	if i.MinQuantity < 0 {
		violations = append(violations, "A quantidade mínima não pode ser negativa.")
	}
	if i.MaxQuantity < 0 {
		violations = append(violations, "A quantidade máxima não pode ser negativa.")
	}
	if i.MinQuantity >= 0 && i.MaxQuantity >= 0 && i.MinQuantity > i.MaxQuantity {
		violations = append(violations, "A quantidade mínima não pode ser maior que a máxima.")
	}
	if i.UnitPrice < 0 {
		violations = append(violations, "O preço unitário não pode ser negativo.")
	}

	return violations
}

// StockStatus é o status derivado de um item de estoque.
type StockStatus string

const (
	StockOut         StockStatus = "out_of_stock"
	StockLow         StockStatus = "low_stock"
	StockOK          StockStatus = "in_stock"
	StockOverstocked StockStatus = "overstocked"
)

// StockStatusInfo agrupa o rótulo e a classe de cor de exibição de um status.
type StockStatusInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// stockStatusTable é a tabela de exibição dos status de estoque.
// Novos status entram aqui sem alteração nos pontos de uso.
var stockStatusTable = map[StockStatus]StockStatusInfo{
	StockOut:         {Label: "Sem estoque", Color: "red"},
	StockLow:         {Label: "Estoque baixo", Color: "orange"},
	StockOK:          {Label: "Em estoque", Color: "green"},
	StockOverstocked: {Label: "Estoque excedente", Color: "blue"},
}

// Info retorna o rótulo e a cor de exibição do status.
func (s StockStatus) Info() StockStatusInfo {
	return stockStatusTable[s]
}

// ComputeStockStatus deriva o status de estoque a partir da quantidade e dos
// limites configurados. Função pura: quantidade zero é sempre StockOut,
// independente dos limites.
func ComputeStockStatus(quantity, minQuantity, maxQuantity int) StockStatus {
	switch {
	case quantity == 0:
		return StockOut
	case quantity <= minQuantity:
		return StockLow
	case quantity <= maxQuantity:
		return StockOK
	default:
		return StockOverstocked
	}
}

// Status deriva o status do próprio item.
func (i InventoryItem) Status() StockStatus {
	return ComputeStockStatus(i.Quantity, i.MinQuantity, i.MaxQuantity)
}

// StockAdjustmentRequest é o payload de ajuste de estoque.
type StockAdjustmentRequest struct {
	ItemID string `json:"item_id"`
	Delta  int    `json:"delta"` // Quantidade a adicionar (positivo) ou remover (negativo)
}

// InventoryRepository define o contrato de persistência para itens de estoque.
type InventoryRepository interface {
	Save(ctx context.Context, item InventoryItem) (InventoryItem, error)
	FindByID(ctx context.Context, id string) (InventoryItem, error)
	FindByStation(ctx context.Context, gasStationID string) ([]InventoryItem, error)
	Update(ctx context.Context, item InventoryItem) error
	AdjustQuantity(ctx context.Context, adjustment StockAdjustmentRequest) (InventoryItem, error)
	Delete(ctx context.Context, id string) error
}
