package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"validation-service/internal/api/responses"
	"validation-service/internal/config"
	"validation-service/internal/core/ingestao"
	"validation-service/internal/core/relatorio"
	"validation-service/internal/core/validacao"
	"validation-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ValidationHandler lida com as requisições da API relacionadas à validação
// de NFe's contra a planilha de abastecimento.
type ValidationHandler struct {
	ingestao  ingestao.Service
	validacao validacao.Service
	relatorio relatorio.Service
	cfg       *config.Config
	log       *zap.Logger
}

// NewValidationHandler cria um novo handler de validação.
func NewValidationHandler(ing ingestao.Service, val validacao.Service, rel relatorio.Service, cfg *config.Config, log *zap.Logger) *ValidationHandler {
	return &ValidationHandler{
		ingestao:  ing,
		validacao: val,
		relatorio: rel,
		cfg:       cfg,
		log:       log,
	}
}

// resumoDTO é a projeção JSON do resumo, com valores monetários fixados em
// duas casas.
type resumoDTO struct {
	ValorDoBoleto      string `json:"valor_do_boleto"`
	Identicas          string `json:"identicas"`
	Agrupadas          string `json:"divergentes_agrupadas"`
	Divergentes        string `json:"divergentes"`
	NaoEncontradas     string `json:"nao_encontradas"`
	Desconsideradas    string `json:"desconsideradas"`
	Cancelamento       string `json:"cancelamento"`
	Estornos           string `json:"estornos"`
	Total              string `json:"total"`
	ValorAPagar        string `json:"valor_a_pagar"`
	DiferencaValidacao string `json:"diferenca_validacao"`
	ValidacaoOK        bool   `json:"validacao_ok"`
	TotalProcessado    int    `json:"total_processado"`
}

func novoResumoDTO(c *domain.Confrontamento) resumoDTO {
	r := c.Resumo
	return resumoDTO{
		ValorDoBoleto:      r.ValorDoBoleto.StringFixed(2),
		Identicas:          r.Identicas.StringFixed(2),
		Agrupadas:          r.Agrupadas.StringFixed(2),
		Divergentes:        r.Divergentes.StringFixed(2),
		NaoEncontradas:     r.NaoEncontradas.StringFixed(2),
		Desconsideradas:    r.Desconsideradas.StringFixed(2),
		Cancelamento:       r.Cancelamento.StringFixed(2),
		Estornos:           r.Estornos.StringFixed(2),
		Total:              r.Total.StringFixed(2),
		ValorAPagar:        r.ValorAPagar.StringFixed(2),
		DiferencaValidacao: r.DiferencaValidacao.StringFixed(2),
		ValidacaoOK:        r.ValidacaoOK,
		TotalProcessado:    c.TotalProcessado(),
	}
}

// configuracaoDoForm monta a configuração do confrontamento a partir dos
// campos do formulário, caindo nos padrões do serviço quando ausentes.
func (h *ValidationHandler) configuracaoDoForm(c *gin.Context) (domain.Configuracao, error) {
	dataFechamentoStr := c.PostForm("dataFechamento")
	if dataFechamentoStr == "" {
		return domain.Configuracao{}, fmt.Errorf("o campo dataFechamento é obrigatório (formato 2006-01-02)")
	}
	dataFechamento, err := time.Parse("2006-01-02", dataFechamentoStr)
	if err != nil {
		return domain.Configuracao{}, fmt.Errorf("dataFechamento inválida %q: use o formato 2006-01-02", dataFechamentoStr)
	}

	cfg := domain.Configuracao{
		DataFechamento:    dataFechamento,
		PeriodoMaximoDias: h.cfg.PeriodoMaximoDias,
		ToleranciaValor:   h.cfg.ToleranciaValor,
		LimiteValidacao:   h.cfg.LimiteValidacao,
		CNPJEmpresaPadrao: h.cfg.CNPJEmpresaPadrao,
	}

	if s := c.PostForm("periodoMaximoDias"); s != "" {
		dias, err := strconv.Atoi(s)
		if err != nil || dias <= 0 {
			return domain.Configuracao{}, fmt.Errorf("periodoMaximoDias inválido: %q", s)
		}
		cfg.PeriodoMaximoDias = dias
	}
	if s := c.PostForm("toleranciaValor"); s != "" {
		tolerancia, err := decimal.NewFromString(s)
		if err != nil || tolerancia.IsNegative() {
			return domain.Configuracao{}, fmt.Errorf("toleranciaValor inválida: %q", s)
		}
		cfg.ToleranciaValor = tolerancia
	}
	if s := c.PostForm("cnpjEmpresa"); s != "" {
		cfg.CNPJEmpresaPadrao = s
	}

	return cfg, nil
}

// processar executa o pipeline completo: carga da planilha, carga dos XMLs e
// confrontamento.
func (h *ValidationHandler) processar(c *gin.Context) (*domain.Confrontamento, error) {
	cfg, err := h.configuracaoDoForm(c)
	if err != nil {
		return nil, err
	}

	planilhaHeader, err := c.FormFile("planilhaFile")
	if err != nil {
		return nil, fmt.Errorf("arquivo de planilha (.xls, .xlsx) não encontrado ou inválido")
	}
	ext := strings.ToLower(filepath.Ext(planilhaHeader.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		return nil, fmt.Errorf("extensão de planilha não suportada: %s", ext)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("formulário multipart inválido")
	}
	zipHeaders := form.File["zipFiles"]
	if len(zipHeaders) == 0 {
		return nil, fmt.Errorf("nenhum arquivo ZIP de XMLs enviado (campo zipFiles)")
	}

	planilhaFile, err := planilhaHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("não foi possível abrir a planilha")
	}
	defer planilhaFile.Close()

	var zips []io.Reader
	for _, zh := range zipHeaders {
		zf, err := zh.Open()
		if err != nil {
			return nil, fmt.Errorf("não foi possível abrir o ZIP %s", zh.Filename)
		}
		defer zf.Close()
		zips = append(zips, zf)
	}

	colunas := h.cfg.Colunas
	if c.PostForm("detectarColunas") == "true" {
		colunas.Detectar = true
	}

	transacoes, err := h.ingestao.CarregarTransacoes(planilhaFile, planilhaHeader.Filename, cfg, colunas)
	if err != nil {
		return nil, err
	}
	nfes, err := h.ingestao.CarregarNFes(zips)
	if err != nil {
		return nil, err
	}

	return h.validacao.Validar(transacoes, nfes, cfg)
}

// HandleValidacao executa o confrontamento e devolve o relatório .xlsx.
func (h *ValidationHandler) HandleValidacao(c *gin.Context) {
	runID := uuid.NewString()[:8]
	inicio := time.Now()

	confrontamento, err := h.processar(c)
	if err != nil {
		h.log.Warn("validação rejeitada", zap.String("run_id", runID), zap.Error(err))
		responses.Error(c, http.StatusBadRequest, "Erro ao processar a validação", err.Error())
		return
	}

	relatorioBytes, err := h.relatorio.GerarExcel(confrontamento)
	if err != nil {
		h.log.Error("falha ao gerar relatório", zap.String("run_id", runID), zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o relatório", err.Error())
		return
	}

	h.log.Info("validação concluída",
		zap.String("run_id", runID),
		zap.Duration("duracao", time.Since(inicio)),
		zap.Bool("validacao_ok", confrontamento.Resumo.ValidacaoOK),
	)

	fileName := fmt.Sprintf("Relatorio_Validacao_%s.xlsx", time.Now().Format("20060102_150405"))
	responses.Arquivo(c, fileName, contentTypeXLSX, relatorioBytes)
}

// HandleValidacaoResumo executa o confrontamento e devolve apenas o resumo em
// JSON, sem gerar o relatório.
func (h *ValidationHandler) HandleValidacaoResumo(c *gin.Context) {
	runID := uuid.NewString()[:8]
	inicio := time.Now()

	confrontamento, err := h.processar(c)
	if err != nil {
		h.log.Warn("validação rejeitada", zap.String("run_id", runID), zap.Error(err))
		responses.Error(c, http.StatusBadRequest, "Erro ao processar a validação", err.Error())
		return
	}

	h.log.Info("validação concluída",
		zap.String("run_id", runID),
		zap.Duration("duracao", time.Since(inicio)),
		zap.Bool("validacao_ok", confrontamento.Resumo.ValidacaoOK),
	)

	responses.Success(c, novoResumoDTO(confrontamento), "Validação processada")
}
