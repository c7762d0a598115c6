// Package validator contém as regras de formato dos campos de formulário.
// Cada validador é uma função pura: recebe o valor bruto e retorna uma
// mensagem de erro em pt-BR, ou string vazia quando o valor é válido.
// Nenhum validador altera o valor de entrada.
package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// emailRegex exige um "@" e pelo menos um "." depois dele.
// Não exige caractere após o último ponto ("a@b." passa); comportamento
// herdado do formulário original e coberto em teste como caso de borda.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]*$`)

const (
	// MinPasswordLen é o tamanho mínimo de senha aceito pelo sistema.
	MinPasswordLen = 6
	// MinNameLen é o tamanho mínimo de nomes após trim.
	MinNameLen = 2
)

// ValidateEmail verifica o formato básico de um endereço de e-mail.
func ValidateEmail(email string) string {
	if email == "" {
		return "O e-mail é obrigatório."
	}
	if !emailRegex.MatchString(email) {
		return "Formato de e-mail inválido."
	}
	return ""
}

// ValidatePassword verifica presença e tamanho mínimo da senha.
func ValidatePassword(password string) string {
	if password == "" {
		return "A senha é obrigatória."
	}
	if len(password) < MinPasswordLen {
		return fmt.Sprintf("A senha deve ter no mínimo %d caracteres.", MinPasswordLen)
	}
	return ""
}

// ValidateConfirmPassword verifica presença e igualdade com a senha.
func ValidateConfirmPassword(confirm, password string) string {
	if confirm == "" {
		return "A confirmação de senha é obrigatória."
	}
	if confirm != password {
		return "As senhas não coincidem."
	}
	return ""
}

// ValidateName verifica presença e tamanho mínimo de um nome.
// fieldName parametriza a mensagem ("Nome", "Sobrenome", "Nome fantasia"...).
func ValidateName(name, fieldName string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Sprintf("%s é obrigatório.", fieldName)
	}
	if len([]rune(trimmed)) < MinNameLen {
		return fmt.Sprintf("%s deve ter no mínimo %d caracteres.", fieldName, MinNameLen)
	}
	return ""
}

// ValidatePhone verifica um telefone opcional: ausente é válido; presente,
// a forma normalizada (apenas dígitos) deve ter 10 ou 11 dígitos.
func ValidatePhone(phone string) string {
	if phone == "" {
		return ""
	}
	digits := OnlyDigits(phone)
	if len(digits) != 10 && len(digits) != 11 {
		return "O telefone deve ter 10 ou 11 dígitos."
	}
	return ""
}

// OnlyDigits retorna apenas os dígitos decimais da string de entrada.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
