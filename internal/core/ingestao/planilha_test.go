package ingestao

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"validation-service/internal/domain"
)

func colunasTeste() domain.ColunasPlanilha {
	return domain.ColunasPlanilha{
		NumeroNFe:         "A",
		DataAbastecimento: "B",
		CNPJPosto:         "C",
		CNPJEmpresa:       "D",
		ValorBoleto:       "E",
		Postergado:        "F",
	}
}

func planilhaTeste(t *testing.T, linhas [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, linha := range linhas {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &linha))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestCarregarTransacoes(t *testing.T) {
	svc := NewService(zap.NewNop()).(*service)

	reader := planilhaTeste(t, [][]interface{}{
		{"NFe", "Data", "CNPJ Posto", "CNPJ Empresa", "Valor", "Postergado"},
		{"NFe16184", "2025-03-10", "11.222.333/0001-44", "99.888.777/0001-66", "R$ 1.234,56", "Não"},
		{"NFe103576, NFe103577", "2025-03-11", "11222333000144", "99888777000166", "300,00", "Sim"},
		{"Cancelado", "2025-03-12", "11222333000144", "99888777000166", "80,00", ""},
	})

	transacoes, err := svc.CarregarTransacoes(reader, "abastecimentos.xlsx", domain.Configuracao{}, colunasTeste())
	require.NoError(t, err)
	require.Len(t, transacoes, 3)

	primeira := transacoes[0]
	assert.Equal(t, []string{"16184"}, primeira.NumerosNFe)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), primeira.DataAbastecimento)
	assert.Equal(t, "11222333000144", primeira.CNPJPosto)
	assert.True(t, primeira.ValorBoleto.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, 2, primeira.Linha)
	assert.Equal(t, "Não", primeira.Postergado)

	assert.True(t, transacoes[1].EhAgrupamento())
	assert.Equal(t, "Sim", transacoes[1].Postergado)

	assert.True(t, transacoes[2].EhCancelamento)
	assert.Empty(t, transacoes[2].NumerosNFe)
	assert.Equal(t, "Cancelado", transacoes[2].TextoOriginal)
}

func TestCarregarTransacoesPulaLinhasVazias(t *testing.T) {
	svc := NewService(zap.NewNop()).(*service)

	reader := planilhaTeste(t, [][]interface{}{
		{"NFe", "Data", "CNPJ Posto", "CNPJ Empresa", "Valor", "Postergado"},
		{"", "", "", "", "", ""},
		{"NFe100", "", "11222333000144", "99888777000166", "10,00", ""}, // sem data
		{"NFe200", "2025-03-10", "11222333000144", "99888777000166", "10,00", ""},
	})

	transacoes, err := svc.CarregarTransacoes(reader, "a.xlsx", domain.Configuracao{}, colunasTeste())
	require.NoError(t, err)
	require.Len(t, transacoes, 1)
	assert.Equal(t, []string{"200"}, transacoes[0].NumerosNFe)
}

func TestCarregarTransacoesDataIlegivelConta(t *testing.T) {
	svc := NewService(zap.NewNop()).(*service)

	reader := planilhaTeste(t, [][]interface{}{
		{"NFe", "Data", "CNPJ Posto", "CNPJ Empresa", "Valor", "Postergado"},
		{"NFe100", "10-03-2025", "11222333000144", "99888777000166", "10,00", ""},
		{"NFe200", "2025-03-10", "11222333000144", "99888777000166", "10,00", ""},
	})

	transacoes, err := svc.CarregarTransacoes(reader, "a.xlsx", domain.Configuracao{}, colunasTeste())
	require.NoError(t, err)
	require.Len(t, transacoes, 1, "linha com data ilegível é rejeitada sem abortar")
}

func TestCarregarTransacoesCNPJEmpresaPadrao(t *testing.T) {
	svc := NewService(zap.NewNop()).(*service)

	reader := planilhaTeste(t, [][]interface{}{
		{"NFe", "Data", "CNPJ Posto", "CNPJ Empresa", "Valor", "Postergado"},
		{"NFe100", "2025-03-10", "11222333000144", "", "10,00", ""},
	})

	cfg := domain.Configuracao{CNPJEmpresaPadrao: "99888777000166"}
	transacoes, err := svc.CarregarTransacoes(reader, "a.xlsx", cfg, colunasTeste())
	require.NoError(t, err)
	require.Len(t, transacoes, 1)
	assert.Equal(t, "99888777000166", transacoes[0].CNPJEmpresa)
}

func TestCarregarTransacoesDeteccaoDeColunas(t *testing.T) {
	svc := NewService(zap.NewNop()).(*service)

	// colunas fora da ordem padrão, com acentuação no cabeçalho
	reader := planilhaTeste(t, [][]interface{}{
		{"Planilha de Abastecimentos"},
		{},
		{"Valor Boleto", "Número NFe", "Data Abastecimento", "CNPJ Posto", "CNPJ Empresa", "Postergado"},
		{"50,00", "NFe300", "2025-03-10", "11222333000144", "99888777000166", "Não"},
	})

	transacoes, err := svc.CarregarTransacoes(reader, "a.xlsx", domain.Configuracao{},
		domain.ColunasPlanilha{Detectar: true})
	require.NoError(t, err)
	require.Len(t, transacoes, 1)
	assert.Equal(t, []string{"300"}, transacoes[0].NumerosNFe)
	assert.True(t, transacoes[0].ValorBoleto.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, 4, transacoes[0].Linha)
}

func TestCarregarTransacoesFormatoInvalido(t *testing.T) {
	svc := NewService(zap.NewNop()).(*service)

	_, err := svc.CarregarTransacoes(bytes.NewReader([]byte("isto não é uma planilha")), "a.txt",
		domain.Configuracao{}, colunasTeste())
	assert.Error(t, err)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "NUMERO NFE", normalizeText("Número NFe"))
	assert.Equal(t, "DATA ABASTECIMENTO", normalizeText(" data/abastecimento "))
	assert.Equal(t, "", normalizeText("  "))
}
