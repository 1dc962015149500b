package validacao

import (
	"fmt"

	"validation-service/internal/domain"
)

// criarIndiceNFes indexa as NFe's por número. Em caso de número duplicado a
// última lida prevalece.
func criarIndiceNFes(nfes []domain.NFe) map[string]domain.NFe {
	indice := make(map[string]domain.NFe, len(nfes))
	for _, nfe := range nfes {
		indice[nfe.Numero] = nfe
	}
	return indice
}

// confrontarGrupo classifica um grupo contra o índice de NFe's.
//
// Classificação:
//   - NAO_ENCONTRADA: o XML não existe no índice;
//   - DESCONSIDERADA: dias postergados acima do período máximo, mesmo que o
//     valor bata;
//   - IDENTICA: diferença menor ou igual à tolerância;
//   - DIVERGENTE_AGRUPADA: diferença acima da tolerância e origem só agrupada;
//   - DIVERGENTE: diferença acima da tolerância com origem individual ou ambas.
//
// Um grupo sem contribuintes é violação de contrato do agrupamento e falha
// imediatamente.
func confrontarGrupo(grupo domain.GrupoNFe, indice map[string]domain.NFe, cfg domain.Configuracao) (domain.Resultado, error) {
	if grupo.TipoOrigem() == domain.OrigemNenhum {
		return domain.Resultado{}, fmt.Errorf("grupo da NFe %s sem transações contribuintes", grupo.NumeroNFe)
	}

	dias := cfg.CalcularDiasPostergados(grupo.DataAbastecimento)

	nfe, encontrada := indice[grupo.NumeroNFe]
	if !encontrada {
		return domain.Resultado{
			Tipo:            domain.ResultadoNaoEncontrada,
			Grupo:           grupo,
			Diferenca:       grupo.ValorPlanilha,
			DiasPostergados: dias,
			Motivo:          "XML não encontrado",
		}, nil
	}

	diferenca := grupo.ValorPlanilha.Sub(nfe.Valor).Abs()

	if dias > cfg.PeriodoMaximoDias {
		return domain.Resultado{
			Tipo:            domain.ResultadoDesconsiderada,
			Grupo:           grupo,
			NFe:             &nfe,
			Diferenca:       diferenca,
			DiasPostergados: dias,
			Motivo:          fmt.Sprintf("Postergada: %d dias > %d dias", dias, cfg.PeriodoMaximoDias),
		}, nil
	}

	var tipo domain.TipoResultado
	var motivo string
	switch {
	case diferenca.LessThanOrEqual(cfg.ToleranciaValor):
		tipo = domain.ResultadoIdentica
		motivo = "Match exato"
	case grupo.TipoOrigem() == domain.OrigemAgrupado:
		tipo = domain.ResultadoDivergenteAgrupada
		motivo = fmt.Sprintf("Divergência (só agrupado): R$ %s", diferenca.StringFixed(2))
	default:
		// INDIVIDUAL ou AMBOS
		tipo = domain.ResultadoDivergente
		motivo = fmt.Sprintf("Divergência: R$ %s", diferenca.StringFixed(2))
	}

	return domain.Resultado{
		Tipo:            tipo,
		Grupo:           grupo,
		NFe:             &nfe,
		Diferenca:       diferenca,
		DiasPostergados: dias,
		Motivo:          motivo,
	}, nil
}
