package domain

import (
	"context"
	"strings"
	"time"

	"pedegas/internal/validator"
)

// Deliveryman representa um entregador vinculado a um posto.
type Deliveryman struct {
	ID           string    `json:"id"`
	GasStationID string    `json:"gas_station_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	CPF          string    `json:"cpf"` // 11 dígitos, sem formatação
	Active       bool      `json:"active"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Capacidades atribuíveis a um entregador. Persistidas como coluna de texto;
// a (de)serialização é responsabilidade do repositório, não do domínio.
const (
	PermAcceptDeliveries = "accept_deliveries"
	PermViewInventory    = "view_inventory"
	PermManageInventory  = "manage_inventory"
)

// Validate retorna todas as violações do cadastro do entregador, na ordem
// dos campos. As regras de formato não se interrompem: um cadastro com nome
// curto, telefone curto e CPF de 10 dígitos retorna três mensagens.
func (d Deliveryman) Validate() []string {
	var violations []string

	if msg := validator.ValidateName(d.Name, "O nome do entregador"); msg != "" {
		violations = append(violations, msg)
	}
	if len(validator.OnlyDigits(d.Phone)) < 10 {
		violations = append(violations, "O telefone do entregador deve ter ao menos 10 dígitos.")
	}
	if !strings.Contains(d.Email, "@") {
		violations = append(violations, "O e-mail do entregador é inválido.")
	}
	if len(validator.OnlyDigits(d.CPF)) != 11 {
		violations = append(violations, "O CPF deve ter 11 dígitos.")
	}
	if d.GasStationID == "" {
		violations = append(violations, "O posto do entregador é obrigatório.")
	}

	return violations
}

// HasPermission reporta se o entregador possui a capacidade informada.
func (d Deliveryman) HasPermission(permission string) bool {
	for _, p := range d.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// DeliverymanRepository define o contrato de persistência para entregadores.
type DeliverymanRepository interface {
	Save(ctx context.Context, deliveryman Deliveryman) (Deliveryman, error)
	FindByID(ctx context.Context, id string) (Deliveryman, error)
	FindByStation(ctx context.Context, gasStationID string) ([]Deliveryman, error)
	FindByEmail(ctx context.Context, email string) (Deliveryman, error)
	FindByCPF(ctx context.Context, cpf string) (Deliveryman, error)
	Update(ctx context.Context, deliveryman Deliveryman) error
	SetActive(ctx context.Context, id string, active bool) error
}
