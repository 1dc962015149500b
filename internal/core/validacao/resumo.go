package validacao

import (
	"github.com/shopspring/decimal"

	"validation-service/internal/domain"
)

// calcularCancelamentosEstornos soma os valores das transações de cancelamento
// e de estorno. Estornos são apresentados como negativos por convenção; o
// sinal de entrada é verificado antes da inversão, para não inverter duas
// vezes uma planilha que já registra estornos negativos.
func calcularCancelamentosEstornos(transacoes []domain.TransacaoOriginal) (cancelamento, estorno decimal.Decimal) {
	cancelamento = decimal.Zero
	estorno = decimal.Zero
	for _, t := range transacoes {
		switch {
		case t.EhCancelamento:
			cancelamento = cancelamento.Add(t.ValorBoleto)
		case t.EhEstorno:
			estorno = estorno.Add(t.ValorBoleto)
		}
	}
	if estorno.IsPositive() {
		estorno = estorno.Neg()
	}
	return cancelamento, estorno
}

// somarValorBoleto soma o valor de boleto de todas as transações ingeridas,
// inclusive cancelamentos e estornos, reproduzindo o total declarado da
// planilha.
func somarValorBoleto(transacoes []domain.TransacaoOriginal) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transacoes {
		total = total.Add(t.ValorBoleto)
	}
	return total
}

// gerarResumo consolida os totais por categoria e calcula a validação final.
//
// IDENTICA, DIVERGENTE_AGRUPADA, DIVERGENTE e NAO_ENCONTRADA somam o valor
// alocado da planilha; DESCONSIDERADA soma o valor da NFe correspondente.
//
//	total         = identicas + agrupadas + divergentes + desconsideradas - nao_encontradas
//	valor a pagar = total - desconsideradas
//	diferença     = |valor a pagar - valor do boleto|
//
// A diferença abaixo do limite configurado marca a validação como consistente;
// acima, fica sinalizada para revisão manual. Nunca é erro.
func gerarResumo(resultados map[domain.TipoResultado][]domain.Resultado, valorTotalBoleto, cancelamento, estorno decimal.Decimal, cfg domain.Configuracao) domain.Resumo {
	somaPlanilha := func(tipo domain.TipoResultado) decimal.Decimal {
		soma := decimal.Zero
		for _, r := range resultados[tipo] {
			soma = soma.Add(r.Grupo.ValorPlanilha)
		}
		return soma
	}

	identicas := somaPlanilha(domain.ResultadoIdentica)
	agrupadas := somaPlanilha(domain.ResultadoDivergenteAgrupada)
	divergentes := somaPlanilha(domain.ResultadoDivergente)
	naoEncontradas := somaPlanilha(domain.ResultadoNaoEncontrada)

	desconsideradas := decimal.Zero
	for _, r := range resultados[domain.ResultadoDesconsiderada] {
		if r.NFe != nil {
			desconsideradas = desconsideradas.Add(r.NFe.Valor)
		}
	}

	total := identicas.Add(agrupadas).Add(divergentes).Add(desconsideradas).Sub(naoEncontradas)
	valorAPagar := total.Sub(desconsideradas)
	diferencaValidacao := valorAPagar.Sub(valorTotalBoleto).Abs()

	return domain.Resumo{
		ValorDoBoleto:      valorTotalBoleto,
		Identicas:          identicas,
		Agrupadas:          agrupadas,
		Divergentes:        divergentes,
		Desconsideradas:    desconsideradas,
		NaoEncontradas:     naoEncontradas,
		Cancelamento:       cancelamento,
		Estornos:           estorno,
		Total:              total,
		ValorAPagar:        valorAPagar,
		DiferencaValidacao: diferencaValidacao,
		ValidacaoOK:        diferencaValidacao.LessThan(cfg.LimiteValidacao),
	}
}
