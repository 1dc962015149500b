package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPadroes(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8084", cfg.Port)
	assert.Equal(t, 60, cfg.PeriodoMaximoDias)
	assert.True(t, cfg.ToleranciaValor.Equal(decimal.RequireFromString("1.01")))
	assert.True(t, cfg.LimiteValidacao.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "AS", cfg.Colunas.NumeroNFe)
	assert.Equal(t, "AO", cfg.Colunas.ValorBoleto)
	assert.False(t, cfg.Colunas.Detectar)
}

func TestLoadVariaveisDeAmbiente(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PERIODO_MAXIMO_DIAS", "90")
	t.Setenv("TOLERANCIA_VALOR", "2.50")
	t.Setenv("CNPJ_EMPRESA", "99888777000166")
	t.Setenv("DETECTAR_COLUNAS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90, cfg.PeriodoMaximoDias)
	assert.True(t, cfg.ToleranciaValor.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, "99888777000166", cfg.CNPJEmpresaPadrao)
	assert.True(t, cfg.Colunas.Detectar)
}
