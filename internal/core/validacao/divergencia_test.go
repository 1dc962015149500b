package validacao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"validation-service/internal/domain"
)

func resultadoAgrupado(t *testing.T, numero string, linha int) domain.Resultado {
	t.Helper()
	return domain.Resultado{
		Tipo: domain.ResultadoDivergenteAgrupada,
		Grupo: domain.GrupoNFe{
			NumeroNFe: numero,
			TransacoesAgrupadas: []domain.TransacaoOriginal{
				transacao(t, linha, "100.00", numero, numero+"x"),
			},
		},
	}
}

func TestAgruparDivergencias(t *testing.T) {
	entrada := []domain.Resultado{
		resultadoAgrupado(t, "100", 5),
		resultadoAgrupado(t, "101", 5), // mesma linha da planilha -> mesmo grupo
		resultadoAgrupado(t, "200", 9),
		resultadoAgrupado(t, "300", 12),
	}

	anotadas, grupos := agruparDivergencias(entrada)
	require.Len(t, anotadas, 4)
	require.Len(t, grupos, 3)

	assert.Equal(t, 1, anotadas[0].GrupoDivergenciaID)
	assert.Equal(t, 1, anotadas[1].GrupoDivergenciaID, "resultados da mesma linha compartilham o id")
	assert.Equal(t, 2, anotadas[2].GrupoDivergenciaID)
	assert.Equal(t, 3, anotadas[3].GrupoDivergenciaID, "ids são densos a partir de 1")

	assert.Len(t, grupos[1], 2)
	assert.Len(t, grupos[2], 1, "resultado de chave única também recebe grupo")
	assert.Len(t, grupos[3], 1)
}

func TestAgruparDivergenciasNaoModificaEntrada(t *testing.T) {
	entrada := []domain.Resultado{resultadoAgrupado(t, "100", 5)}
	_, _ = agruparDivergencias(entrada)
	assert.Zero(t, entrada[0].GrupoDivergenciaID)
}

func TestAgruparDivergenciasVazio(t *testing.T) {
	anotadas, grupos := agruparDivergencias(nil)
	assert.Empty(t, anotadas)
	assert.Empty(t, grupos)
}
