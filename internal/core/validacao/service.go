// Package validacao implementa o motor de confrontamento entre as transações
// da planilha de abastecimento e as NFe's extraídas dos XMLs: agrupamento por
// número de NFe, classificação em cinco categorias, correlação de divergências
// agrupadas e resumo validado.
package validacao

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"validation-service/internal/domain"
)

// Service define a interface do motor de validação de NFe's.
type Service interface {
	Validar(transacoes []domain.TransacaoOriginal, nfes []domain.NFe, cfg domain.Configuracao) (*domain.Confrontamento, error)
}

type service struct {
	log *zap.Logger
}

// NewService cria uma nova instância do serviço de validação.
func NewService(log *zap.Logger) Service {
	return &service{log: log}
}

// Validar executa o pipeline completo em memória, de forma síncrona e
// determinística: mesmas entradas produzem a mesma partição e o mesmo resumo.
// Os grupos são confrontados em ordem de número de NFe; a partição não depende
// da ordem, mas os ids de divergência dependem da ordem do primeiro encontro.
func (s *service) Validar(transacoes []domain.TransacaoOriginal, nfes []domain.NFe, cfg domain.Configuracao) (*domain.Confrontamento, error) {
	cfg = cfg.AplicarPadroes()
	if err := cfg.Validar(); err != nil {
		return nil, fmt.Errorf("configuração inválida: %w", err)
	}
	if len(transacoes) == 0 {
		return nil, fmt.Errorf("nenhuma transação para validar")
	}

	grupos := criarGrupos(transacoes)
	if len(grupos) == 0 {
		return nil, fmt.Errorf("nenhum grupo de NFe criado a partir das transações")
	}
	s.logEstatisticasGrupos(grupos)

	indice := criarIndiceNFes(nfes)

	resultados := make(map[domain.TipoResultado][]domain.Resultado, len(domain.TiposResultado))
	for _, tipo := range domain.TiposResultado {
		resultados[tipo] = nil
	}

	numeros := make([]string, 0, len(grupos))
	for numero := range grupos {
		numeros = append(numeros, numero)
	}
	sort.Strings(numeros)

	for _, numero := range numeros {
		resultado, err := confrontarGrupo(grupos[numero], indice, cfg)
		if err != nil {
			return nil, fmt.Errorf("falha no confrontamento: %w", err)
		}
		resultados[resultado.Tipo] = append(resultados[resultado.Tipo], resultado)
	}

	anotadas, gruposDivergencia := agruparDivergencias(resultados[domain.ResultadoDivergenteAgrupada])
	resultados[domain.ResultadoDivergenteAgrupada] = anotadas

	cancelamento, estorno := calcularCancelamentosEstornos(transacoes)
	valorTotalBoleto := somarValorBoleto(transacoes)
	resumo := gerarResumo(resultados, valorTotalBoleto, cancelamento, estorno, cfg)

	var cancelamentosEstornos []domain.TransacaoOriginal
	for _, t := range transacoes {
		if t.EhCancelamento || t.EhEstorno {
			cancelamentosEstornos = append(cancelamentosEstornos, t)
		}
	}

	s.log.Info("confrontamento concluído",
		zap.Int("grupos", len(grupos)),
		zap.Int("identicas", len(resultados[domain.ResultadoIdentica])),
		zap.Int("divergentes", len(resultados[domain.ResultadoDivergente])),
		zap.Int("divergentes_agrupadas", len(resultados[domain.ResultadoDivergenteAgrupada])),
		zap.Int("grupos_divergencia", len(gruposDivergencia)),
		zap.Int("nao_encontradas", len(resultados[domain.ResultadoNaoEncontrada])),
		zap.Int("desconsideradas", len(resultados[domain.ResultadoDesconsiderada])),
		zap.String("valor_a_pagar", resumo.ValorAPagar.StringFixed(2)),
		zap.String("diferenca_validacao", resumo.DiferencaValidacao.StringFixed(2)),
		zap.Bool("validacao_ok", resumo.ValidacaoOK),
	)

	return &domain.Confrontamento{
		Resultados:            resultados,
		GruposDivergencia:     gruposDivergencia,
		Resumo:                resumo,
		CancelamentosEstornos: cancelamentosEstornos,
	}, nil
}

func (s *service) logEstatisticasGrupos(grupos map[string]domain.GrupoNFe) {
	var individuais, agrupados, ambos int
	for _, g := range grupos {
		switch g.TipoOrigem() {
		case domain.OrigemIndividual:
			individuais++
		case domain.OrigemAgrupado:
			agrupados++
		case domain.OrigemAmbos:
			ambos++
		}
	}
	s.log.Info("grupos criados",
		zap.Int("total", len(grupos)),
		zap.Int("individuais", individuais),
		zap.Int("agrupados", agrupados),
		zap.Int("ambos", ambos),
	)
}
