package normalizar

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestLimparCNPJ(t *testing.T) {
	assert.Equal(t, "12345678000190", LimparCNPJ("12.345.678/0001-90"))
	assert.Equal(t, "12345678000190", LimparCNPJ("12345678000190"))
	assert.Equal(t, "", LimparCNPJ("abc"))
}

func TestFormatarCNPJ(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-90", FormatarCNPJ("12345678000190"))
	assert.Equal(t, "12.345.678/0001-90", FormatarCNPJ("12.345.678/0001-90"))
	// tamanho errado volta como está
	assert.Equal(t, "123", FormatarCNPJ("123"))
}

func TestConverterValor(t *testing.T) {
	testes := []struct {
		entrada  string
		esperado string
	}{
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"R$ 1.234,56", "1234.56"},
		{"234,56", "234.56"},
		{"234.56", "234.56"},
		{"1234", "1234"},
		{"-234,56", "-234.56"},
		{"(234,56)", "-234.56"},
		{"R$ 500,00", "500"},
		{"", "0"},
		{"abc", "0"},
		{"12,345", "12.35"}, // vírgula decimal, arredondado a 2 casas
	}
	for _, tc := range testes {
		t.Run(tc.entrada, func(t *testing.T) {
			assert.True(t, ConverterValor(tc.entrada).Equal(mustDecimal(t, tc.esperado)),
				"entrada %q: esperado %s, obtido %s", tc.entrada, tc.esperado, ConverterValor(tc.entrada))
		})
	}
}

func TestConverterData(t *testing.T) {
	dt, ok := ConverterData("2025-03-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), dt)

	dt, ok = ConverterData("15/03/2025")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), dt)

	dt, ok = ConverterData("2025-03-15 14:30:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), dt, "horário deve ser truncado")

	_, ok = ConverterData("15-03-2025")
	assert.False(t, ok)
	_, ok = ConverterData("")
	assert.False(t, ok)
}

func TestExtrairNumerosNFe(t *testing.T) {
	t.Run("individual", func(t *testing.T) {
		numeros, cancelamento, estorno := ExtrairNumerosNFe("NFe16184")
		assert.Equal(t, []string{"16184"}, numeros)
		assert.False(t, cancelamento)
		assert.False(t, estorno)
	})

	t.Run("agrupada", func(t *testing.T) {
		numeros, _, _ := ExtrairNumerosNFe("NFe103576, NFe103577")
		assert.Equal(t, []string{"103576", "103577"}, numeros)
	})

	t.Run("duplicados e ordenação", func(t *testing.T) {
		numeros, _, _ := ExtrairNumerosNFe("NFe200, NFe100, NFe200")
		assert.Equal(t, []string{"100", "200"}, numeros)
	})

	t.Run("cancelamento", func(t *testing.T) {
		numeros, cancelamento, estorno := ExtrairNumerosNFe("CANCELADO")
		assert.Nil(t, numeros)
		assert.True(t, cancelamento)
		assert.False(t, estorno)

		_, cancelamento, _ = ExtrairNumerosNFe("Cancelamento NFe123")
		assert.True(t, cancelamento, "cancelamento curto-circuita a extração")
	})

	t.Run("estorno", func(t *testing.T) {
		numeros, cancelamento, estorno := ExtrairNumerosNFe("Estorno")
		assert.Nil(t, numeros)
		assert.False(t, cancelamento)
		assert.True(t, estorno)
	})

	t.Run("vazio", func(t *testing.T) {
		numeros, cancelamento, estorno := ExtrairNumerosNFe("   ")
		assert.Nil(t, numeros)
		assert.False(t, cancelamento)
		assert.False(t, estorno)
	})
}
