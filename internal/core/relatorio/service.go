// Package relatorio gera o relatório Excel do confrontamento: uma aba de
// resumo e uma aba por categoria de resultado, mais a lista de cancelamentos
// e estornos retidos.
package relatorio

import (
	"fmt"

	"go.uber.org/zap"

	"validation-service/internal/domain"
)

// Service define a interface de geração de relatórios.
type Service interface {
	GerarExcel(confrontamento *domain.Confrontamento) ([]byte, error)
}

type service struct {
	log *zap.Logger
}

// NewService cria uma nova instância do serviço de relatórios.
func NewService(log *zap.Logger) Service {
	return &service{log: log}
}

// GerarExcel monta a pasta de trabalho completa e devolve os bytes do .xlsx.
func (s *service) GerarExcel(confrontamento *domain.Confrontamento) ([]byte, error) {
	if confrontamento == nil {
		return nil, fmt.Errorf("confrontamento vazio")
	}

	buf, err := escreverPastaDeTrabalho(confrontamento)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar relatório Excel: %w", err)
	}

	s.log.Info("relatório gerado",
		zap.Int("grupos", confrontamento.TotalProcessado()),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}
