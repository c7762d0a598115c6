package validator

import "fmt"

// Pesos dos dois dígitos verificadores do CPF.
var (
	cpfFirstWeights  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfSecondWeights = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
)

const cpfLen = 11

// ValidateCPF valida um CPF em qualquer formatação de entrada.
// Mesmo esquema do CNPJ: 11 dígitos, rejeição de sequências repetidas e
// dois dígitos verificadores por soma ponderada módulo 11.
func ValidateCPF(cpf string) string {
	if cpf == "" {
		return "O CPF é obrigatório."
	}

	digits := OnlyDigits(cpf)
	if len(digits) != cpfLen {
		return fmt.Sprintf("O CPF deve ter %d dígitos.", cpfLen)
	}

	if allSameDigit(digits) {
		return "CPF inválido."
	}

	if int(digits[9]-'0') != checkDigit(digits[:9], cpfFirstWeights) {
		return "CPF inválido."
	}
	if int(digits[10]-'0') != checkDigit(digits[:10], cpfSecondWeights) {
		return "CPF inválido."
	}

	return ""
}

// FormatCPF formata 11 dígitos no padrão de exibição XXX.XXX.XXX-XX.
// Entrada com formatação ou tamanho diferente é devolvida sem alteração.
func FormatCPF(cpf string) string {
	digits := OnlyDigits(cpf)
	if len(digits) != cpfLen {
		return cpf
	}
	return fmt.Sprintf("%s.%s.%s-%s",
		digits[0:3], digits[3:6], digits[6:9], digits[9:11])
}
