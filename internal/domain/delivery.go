package domain

import (
	"context"
	"strings"
	"time"
)

// DeliveryStatus é o status do ciclo de vida de um pedido de entrega.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryAccepted   DeliveryStatus = "accepted"
	DeliveryInProgress DeliveryStatus = "in_progress"
	DeliveryDelivered  DeliveryStatus = "delivered"
	DeliveryRejected   DeliveryStatus = "rejected"
)

// deliveryStatusLabels é a tabela de exibição dos status de entrega.
var deliveryStatusLabels = map[DeliveryStatus]string{
	DeliveryPending:    "Pendente",
	DeliveryAccepted:   "Aceita",
	DeliveryInProgress: "Em rota",
	DeliveryDelivered:  "Entregue",
	DeliveryRejected:   "Recusada",
}

// Label retorna o rótulo de exibição do status.
func (s DeliveryStatus) Label() string {
	if label, ok := deliveryStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// DeliveryPriority é a prioridade de atendimento de um pedido.
type DeliveryPriority string

const (
	PriorityLow    DeliveryPriority = "low"
	PriorityMedium DeliveryPriority = "medium"
	PriorityHigh   DeliveryPriority = "high"
)

var deliveryPriorityLabels = map[DeliveryPriority]string{
	PriorityLow:    "Baixa",
	PriorityMedium: "Média",
	PriorityHigh:   "Alta",
}

// Label retorna o rótulo de exibição da prioridade.
func (p DeliveryPriority) Label() string {
	if label, ok := deliveryPriorityLabels[p]; ok {
		return label
	}
	return string(p)
}

// DeliveryItem é uma linha do pedido: tipo de botijão, quantidade e preço.
type DeliveryItem struct {
	ProductType ProductType `json:"product_type"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unit_price"`
}

// Delivery representa um pedido de entrega de botijões.
type Delivery struct {
	ID              string           `json:"id"`
	GasStationID    string           `json:"gas_station_id"`
	DeliverymanID   string           `json:"deliveryman_id,omitempty"`
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	DeliveryAddress string           `json:"delivery_address"`
	Items           []DeliveryItem   `json:"items"`
	TotalAmount     float64          `json:"total_amount"`
	Status          DeliveryStatus   `json:"status"`
	Priority        DeliveryPriority `json:"priority"`
	InvoiceNumber   string           `json:"invoice_number,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Validate retorna todas as violações do pedido, na ordem dos campos.
// Lista vazia significa pedido válido.
func (d Delivery) Validate() []string {
	var violations []string

	if d.GasStationID == "" {
		violations = append(violations, "O posto do pedido é obrigatório.")
	}
	if strings.TrimSpace(d.CustomerName) == "" {
		violations = append(violations, "O nome do cliente é obrigatório.")
	}
	if strings.TrimSpace(d.CustomerPhone) == "" {
		violations = append(violations, "O telefone do cliente é obrigatório.")
	}
	if strings.TrimSpace(d.DeliveryAddress) == "" {
		violations = append(violations, "O endereço de entrega é obrigatório.")
	}
	if len(d.Items) == 0 {
		violations = append(violations, "O pedido deve ter ao menos um item.")
	}
	if d.TotalAmount <= 0 {
		violations = append(violations, "O valor total do pedido deve ser maior que zero.")
	}

	return violations
}

// O backend de dados não valida transições; os predicados abaixo são a única
// guarda de correção do ciclo de vida e devem ser consultados antes de
// qualquer atualização de status.

// CanBeAccepted reporta se o pedido pode ser aceito (apenas pendente).
func (d Delivery) CanBeAccepted() bool {
	return d.Status == DeliveryPending
}

// CanBeRejected reporta se o pedido pode ser recusado (apenas pendente).
func (d Delivery) CanBeRejected() bool {
	return d.Status == DeliveryPending
}

// CanStart reporta se a entrega pode entrar em rota (apenas aceita).
func (d Delivery) CanStart() bool {
	return d.Status == DeliveryAccepted
}

// CanComplete reporta se a entrega pode ser concluída (apenas em rota).
func (d Delivery) CanComplete() bool {
	return d.Status == DeliveryInProgress
}

// CanGenerateInvoice reporta se a nota pode ser emitida: pedido aceito e
// ainda sem número de nota. A emissão acontece no máximo uma vez.
func (d Delivery) CanGenerateInvoice() bool {
	return d.Status == DeliveryAccepted && d.InvoiceNumber == ""
}

// DeliveryFilter define os filtros de listagem de pedidos de um posto.
type DeliveryFilter struct {
	Status   DeliveryStatus
	Priority DeliveryPriority
	From     time.Time
	To       time.Time
}

// DeliveryRepository define o contrato de persistência para pedidos de entrega.
type DeliveryRepository interface {
	Save(ctx context.Context, delivery Delivery) (Delivery, error)
	FindByID(ctx context.Context, id string) (Delivery, error)
	FindByStation(ctx context.Context, gasStationID string, filter DeliveryFilter) ([]Delivery, error)
	UpdateStatus(ctx context.Context, id string, status DeliveryStatus, deliverymanID string) error
	SetInvoiceNumber(ctx context.Context, id string, invoiceNumber string) error
}
