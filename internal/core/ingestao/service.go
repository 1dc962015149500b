// Package ingestao carrega as entradas do confrontamento: transações da
// planilha de abastecimento (.xls/.xlsx) e NFe's dos XMLs contidos em
// arquivos ZIP. Registros defeituosos são rejeitados individualmente e
// contados, sem abortar a carga.
package ingestao

import (
	"io"

	"go.uber.org/zap"

	"validation-service/internal/domain"
)

// Service define a interface de ingestão de planilhas e XMLs.
type Service interface {
	CarregarTransacoes(planilha io.Reader, filename string, cfg domain.Configuracao, colunas domain.ColunasPlanilha) ([]domain.TransacaoOriginal, error)
	CarregarNFes(zips []io.Reader) ([]domain.NFe, error)
}

type service struct {
	log *zap.Logger
}

// NewService cria uma nova instância do serviço de ingestão.
func NewService(log *zap.Logger) Service {
	return &service{log: log}
}
