package relatorio

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

func confrontamentoTeste() *domain.Confrontamento {
	nfe := domain.NFe{
		Numero:           "1001",
		DataEmissao:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CNPJEmitente:     "11222333000144",
		CNPJDestinatario: "99888777000166",
		Valor:            decimal.RequireFromString("500.00"),
	}
	identica := domain.Resultado{
		Tipo: domain.ResultadoIdentica,
		Grupo: domain.GrupoNFe{
			NumeroNFe:         "1001",
			DataAbastecimento: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			CNPJPosto:         "11222333000144",
			CNPJEmpresa:       "99888777000166",
			ValorPlanilha:     decimal.RequireFromString("500.00"),
			Linhas:            []int{2, 3},
		},
		NFe:    &nfe,
		Motivo: "Match exato",
	}
	agrupada := domain.Resultado{
		Tipo: domain.ResultadoDivergenteAgrupada,
		Grupo: domain.GrupoNFe{
			NumeroNFe:     "2001",
			ValorPlanilha: decimal.RequireFromString("300.00"),
			Linhas:        []int{4},
		},
		Diferenca:          decimal.RequireFromString("200.00"),
		Motivo:             "Divergência (só agrupado): R$ 200.00",
		GrupoDivergenciaID: 1,
	}
	cancelada := domain.TransacaoOriginal{
		DataAbastecimento: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		CNPJPosto:         "11222333000144",
		ValorBoleto:       decimal.RequireFromString("80.00"),
		Linha:             5,
		TextoOriginal:     "Cancelado",
		EhCancelamento:    true,
	}

	return &domain.Confrontamento{
		Resultados: map[domain.TipoResultado][]domain.Resultado{
			domain.ResultadoIdentica:           {identica},
			domain.ResultadoDivergenteAgrupada: {agrupada},
			domain.ResultadoDivergente:         nil,
			domain.ResultadoNaoEncontrada:      nil,
			domain.ResultadoDesconsiderada:     nil,
		},
		GruposDivergencia: map[int][]domain.Resultado{1: {agrupada}},
		Resumo: domain.Resumo{
			ValorDoBoleto:      decimal.RequireFromString("880.00"),
			Identicas:          decimal.RequireFromString("500.00"),
			Agrupadas:          decimal.RequireFromString("300.00"),
			Cancelamento:       decimal.RequireFromString("80.00"),
			Total:              decimal.RequireFromString("800.00"),
			ValorAPagar:        decimal.RequireFromString("800.00"),
			DiferencaValidacao: decimal.RequireFromString("80.00"),
			ValidacaoOK:        true,
		},
		CancelamentosEstornos: []domain.TransacaoOriginal{cancelada},
	}
}

func TestGerarExcel(t *testing.T) {
	svc := NewService(zap.NewNop())

	data, err := svc.GerarExcel(confrontamentoTeste())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		abaResumo,
		abaIdenticas,
		abaDivergentesAgrupadas,
		abaDivergentes,
		abaNaoEncontradas,
		abaDesconsideradas,
		abaCancelamentosEstornos,
	}, f.GetSheetList())

	numero, err := f.GetCellValue(abaIdenticas, "A2")
	require.NoError(t, err)
	assert.Equal(t, "1001", numero)

	cnpj, err := f.GetCellValue(abaIdenticas, "C2")
	require.NoError(t, err)
	assert.Equal(t, "11.222.333/0001-44", cnpj)

	linhas, err := f.GetCellValue(abaIdenticas, "I2")
	require.NoError(t, err)
	assert.Equal(t, "2, 3", linhas)

	grupo, err := f.GetCellValue(abaDivergentesAgrupadas, "K2")
	require.NoError(t, err)
	assert.Equal(t, "1", grupo)

	situacao, err := f.GetCellValue(abaResumo, "B13")
	require.NoError(t, err)
	assert.Equal(t, "OK", situacao)

	texto, err := f.GetCellValue(abaCancelamentosEstornos, "F2")
	require.NoError(t, err)
	assert.Equal(t, "Cancelado", texto)
}

func TestGerarExcelConfrontamentoVazio(t *testing.T) {
	svc := NewService(zap.NewNop())
	_, err := svc.GerarExcel(nil)
	assert.Error(t, err)
}
