package validator

import "fmt"

// Pesos dos dois dígitos verificadores do CNPJ. A sequência decresce a
// partir do valor inicial e volta para 9 depois do 2.
var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

const cnpjLen = 14

// ValidateCNPJ valida um CNPJ em qualquer formatação de entrada.
// Retorna uma mensagem de erro em pt-BR, ou string vazia se o CNPJ é válido.
func ValidateCNPJ(cnpj string) string {
	if cnpj == "" {
		return "O CNPJ é obrigatório."
	}

	digits := OnlyDigits(cnpj)
	if len(digits) != cnpjLen {
		return fmt.Sprintf("O CNPJ deve ter %d dígitos.", cnpjLen)
	}

	// Sequências de um único dígito repetido (00000000000000, 11111111111111...)
	// passam no checksum mas são semanticamente inválidas.
	if allSameDigit(digits) {
		return "CNPJ inválido."
	}

	if int(digits[12]-'0') != checkDigit(digits[:12], cnpjFirstWeights) {
		return "CNPJ inválido."
	}
	if int(digits[13]-'0') != checkDigit(digits[:13], cnpjSecondWeights) {
		return "CNPJ inválido."
	}

	return ""
}

// FormatCNPJ formata 14 dígitos no padrão de exibição XX.XXX.XXX/XXXX-XX.
// Entrada com formatação ou tamanho diferente é devolvida sem alteração.
func FormatCNPJ(cnpj string) string {
	digits := OnlyDigits(cnpj)
	if len(digits) != cnpjLen {
		return cnpj
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s",
		digits[0:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
}

// checkDigit calcula um dígito verificador: soma ponderada dos dígitos,
// resto da divisão por 11; resto < 2 resulta em 0, senão 11 - resto.
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// allSameDigit reporta se todos os caracteres da string são iguais.
func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
