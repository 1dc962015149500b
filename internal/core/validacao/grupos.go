package validacao

import (
	"sort"

	"github.com/shopspring/decimal"

	"validation-service/internal/domain"
)

// contribuintes acumula as transações que referenciam um mesmo número de NFe,
// separando referências individuais (linha com uma única NFe) de agrupadas
// (linha com duas ou mais NFe's).
type contribuintes struct {
	individuais []domain.TransacaoOriginal
	agrupadas   []domain.TransacaoOriginal
}

// criarGrupos monta um GrupoNFe por número de NFe referenciado.
//
// Regra de alocação de valor:
//   - grupo com referência individual: soma apenas os boletos individuais;
//     transações agrupadas ficam registradas mas não entram na soma;
//   - grupo só com agrupadas: o valor total dos agrupamentos é alocado ao
//     menor número (ordem lexicográfica) do conjunto referenciado pela
//     primeira transação agrupada; os demais números recebem zero, para que
//     o valor de cada linha agrupada seja contado exatamente uma vez.
//
// Cancelamentos e estornos não participam do agrupamento.
func criarGrupos(transacoes []domain.TransacaoOriginal) map[string]domain.GrupoNFe {
	indice := make(map[string]*contribuintes)

	for _, trans := range transacoes {
		if trans.EhCancelamento || trans.EhEstorno {
			continue
		}
		for _, numero := range trans.NumerosNFe {
			c, ok := indice[numero]
			if !ok {
				c = &contribuintes{}
				indice[numero] = c
			}
			if trans.EhAgrupamento() {
				c.agrupadas = append(c.agrupadas, trans)
			} else {
				c.individuais = append(c.individuais, trans)
			}
		}
	}

	grupos := make(map[string]domain.GrupoNFe, len(indice))

	for numero, c := range indice {
		valorPlanilha := decimal.Zero
		var linhas []int

		switch {
		case len(c.individuais) > 0:
			for _, t := range c.individuais {
				valorPlanilha = valorPlanilha.Add(t.ValorBoleto)
				linhas = append(linhas, t.Linha)
			}

		case len(c.agrupadas) > 0:
			primeira := c.agrupadas[0]
			numerosOrdenados := append([]string(nil), primeira.NumerosNFe...)
			sort.Strings(numerosOrdenados)

			if numero == numerosOrdenados[0] {
				for _, t := range c.agrupadas {
					valorPlanilha = valorPlanilha.Add(t.ValorBoleto)
				}
			}
			for _, t := range c.agrupadas {
				linhas = append(linhas, t.Linha)
			}

		default:
			// número sem contribuintes não gera grupo
			continue
		}

		primeira := primeiraTransacao(c)

		grupos[numero] = domain.GrupoNFe{
			NumeroNFe:             numero,
			DataAbastecimento:     primeira.DataAbastecimento,
			CNPJPosto:             primeira.CNPJPosto,
			CNPJEmpresa:           primeira.CNPJEmpresa,
			ValorPlanilha:         valorPlanilha,
			Postergado:            primeira.Postergado,
			TransacoesIndividuais: c.individuais,
			TransacoesAgrupadas:   c.agrupadas,
			Linhas:                linhas,
		}
	}

	return grupos
}

// primeiraTransacao devolve o contribuinte representativo do grupo: a primeira
// transação individual, ou a primeira agrupada quando não há individuais.
func primeiraTransacao(c *contribuintes) domain.TransacaoOriginal {
	if len(c.individuais) > 0 {
		return c.individuais[0]
	}
	return c.agrupadas[0]
}
