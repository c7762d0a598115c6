package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pedegas/internal/domain"
)

func TestDeliverymanValidate(t *testing.T) {
	valid := domain.Deliveryman{
		GasStationID: "gs-1",
		Name:         "João Pereira",
		Phone:        "(11) 98765-4321",
		Email:        "joao@posto.com",
		CPF:          "52998224725",
	}
	assert.Empty(t, valid.Validate())
}

// Nome de 1 caractere, telefone de 9 dígitos e CPF de 10 dígitos devem
// reportar três violações distintas de uma vez, não apenas a primeira.
func TestDeliverymanValidate_CollectsAllViolations(t *testing.T) {
	d := domain.Deliveryman{
		GasStationID: "gs-1",
		Name:         "J",
		Phone:        "119876543",
		Email:        "joao@posto.com",
		CPF:          "5299822472",
	}

	violations := d.Validate()
	assert.Len(t, violations, 3)
	assert.Contains(t, violations, "O nome do entregador deve ter no mínimo 2 caracteres.")
	assert.Contains(t, violations, "O telefone do entregador deve ter ao menos 10 dígitos.")
	assert.Contains(t, violations, "O CPF deve ter 11 dígitos.")
}

func TestDeliverymanValidate_EmailAndStation(t *testing.T) {
	d := domain.Deliveryman{
		Name:  "João Pereira",
		Phone: "11987654321",
		Email: "sem-arroba",
		CPF:   "52998224725",
	}

	violations := d.Validate()
	assert.Contains(t, violations, "O e-mail do entregador é inválido.")
	assert.Contains(t, violations, "O posto do entregador é obrigatório.")
}

func TestDeliverymanHasPermission(t *testing.T) {
	d := domain.Deliveryman{Permissions: []string{domain.PermAcceptDeliveries, domain.PermViewInventory}}

	assert.True(t, d.HasPermission(domain.PermAcceptDeliveries))
	assert.False(t, d.HasPermission(domain.PermManageInventory))
}
