package domain

import (
	"context"
	"time"
)

// User representa a entidade do usuário no sistema.
// Cada usuário pertence a um posto (GasStation).
type User struct {
	ID           string    `json:"id"`
	GasStationID string    `json:"gas_station_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleOwner       UserRole = "owner"
	RoleManager     UserRole = "manager"
	RoleDeliveryman UserRole = "deliveryman"
)

// UserRegistration representa o payload de entrada para o cadastro.
// O cadastro cria o posto e o usuário dono em uma única operação.
type UserRegistration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	StationName     string `json:"station_name"`
	CNPJ            string `json:"cnpj"`
	StationAddress  string `json:"station_address"`
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}
