package ingestao

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"validation-service/internal/core/normalizar"
	"validation-service/internal/domain"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeText remove acentos e pontuação para comparação de cabeçalhos.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// indicesColunas guarda as posições (base zero) de cada campo na planilha.
// -1 indica coluna ausente.
type indicesColunas struct {
	numeroNFe         int
	dataAbastecimento int
	cnpjPosto         int
	cnpjEmpresa       int
	valorBoleto       int
	postergado        int
	linhaCabecalho    int // índice da linha de cabeçalho; dados começam na seguinte
}

// CarregarTransacoes lê a planilha de abastecimento e produz as transações
// canônicas. Linhas sem referência de NFe ou sem data são ignoradas; linhas
// com data ilegível ou entidade inválida são rejeitadas individualmente e
// contadas como erro.
func (s *service) CarregarTransacoes(planilha io.Reader, filename string, cfg domain.Configuracao, colunas domain.ColunasPlanilha) ([]domain.TransacaoOriginal, error) {
	rows, err := s.carregarPlanilhaGenerica(planilha, filename)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar planilha: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("planilha sem linhas de dados")
	}

	indices, err := s.resolverColunas(rows, colunas)
	if err != nil {
		return nil, fmt.Errorf("erro ao localizar colunas da planilha: %w", err)
	}

	getValue := func(row []string, idx int) string {
		if idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var transacoes []domain.TransacaoOriginal
	erros := 0

	for i := indices.linhaCabecalho + 1; i < len(rows); i++ {
		row := rows[i]
		linha := i + 1 // numeração da planilha, base 1

		textoNFe := getValue(row, indices.numeroNFe)
		dataRaw := getValue(row, indices.dataAbastecimento)
		if textoNFe == "" || dataRaw == "" {
			continue
		}

		data, ok := normalizar.ConverterData(dataRaw)
		if !ok {
			erros++
			continue
		}

		valor := normalizar.ConverterValor(getValue(row, indices.valorBoleto))
		numeros, ehCancelamento, ehEstorno := normalizar.ExtrairNumerosNFe(textoNFe)

		cnpjEmpresa := normalizar.LimparCNPJ(getValue(row, indices.cnpjEmpresa))
		if cnpjEmpresa == "" {
			cnpjEmpresa = cfg.CNPJEmpresaPadrao
		}
		postergado := getValue(row, indices.postergado)
		if postergado == "" {
			postergado = "Não"
		}

		trans, err := domain.NovaTransacao(domain.TransacaoOriginal{
			NumerosNFe:        numeros,
			DataAbastecimento: data,
			CNPJPosto:         normalizar.LimparCNPJ(getValue(row, indices.cnpjPosto)),
			CNPJEmpresa:       cnpjEmpresa,
			ValorBoleto:       valor,
			Postergado:        postergado,
			Linha:             linha,
			TextoOriginal:     textoNFe,
			EhCancelamento:    ehCancelamento,
			EhEstorno:         ehEstorno,
		})
		if err != nil {
			erros++
			s.log.Debug("transação rejeitada", zap.Int("linha", linha), zap.Error(err))
			continue
		}

		transacoes = append(transacoes, trans)
	}

	s.log.Info("planilha carregada",
		zap.String("arquivo", filename),
		zap.Int("linhas", len(rows)),
		zap.Int("transacoes", len(transacoes)),
		zap.Int("erros", erros),
	)

	if len(transacoes) == 0 {
		return nil, fmt.Errorf("nenhuma transação válida encontrada na planilha")
	}
	return transacoes, nil
}

// carregarPlanilhaGenerica lê .xlsx via excelize e .xls via xlsReader,
// devolvendo todas as células da primeira aba como texto.
func (s *service) carregarPlanilhaGenerica(file io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	reader := bytes.NewReader(data)

	// tenta xlsx
	f, err := excelize.OpenReader(reader)
	if err == nil {
		defer f.Close()
		sheetName := f.GetSheetList()[0]
		return f.GetRows(sheetName)
	}

	// tenta xls
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	workbook, err := xls.OpenReader(reader)
	if err == nil {
		if len(workbook.GetSheets()) == 0 {
			return nil, fmt.Errorf("o arquivo .xls não contém planilhas")
		}
		sheet, err := workbook.GetSheet(0)
		if err != nil {
			return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
		}
		var allRows [][]string
		for _, row := range sheet.GetRows() {
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			allRows = append(allRows, cells)
		}
		return allRows, nil
	}

	return nil, fmt.Errorf("formato de planilha não suportado: %s", filename)
}

// resolverColunas converte as letras configuradas em índices ou, quando a
// detecção está habilitada, localiza as colunas pelo cabeçalho.
func (s *service) resolverColunas(rows [][]string, colunas domain.ColunasPlanilha) (indicesColunas, error) {
	if colunas.Detectar {
		return s.detectarColunas(rows)
	}

	porLetra := func(letra string) (int, error) {
		if letra == "" {
			return -1, nil
		}
		n, err := excelize.ColumnNameToNumber(letra)
		if err != nil {
			return -1, fmt.Errorf("letra de coluna inválida %q: %w", letra, err)
		}
		return n - 1, nil
	}

	var indices indicesColunas
	var err error
	if indices.numeroNFe, err = porLetra(colunas.NumeroNFe); err != nil {
		return indices, err
	}
	if indices.dataAbastecimento, err = porLetra(colunas.DataAbastecimento); err != nil {
		return indices, err
	}
	if indices.cnpjPosto, err = porLetra(colunas.CNPJPosto); err != nil {
		return indices, err
	}
	if indices.cnpjEmpresa, err = porLetra(colunas.CNPJEmpresa); err != nil {
		return indices, err
	}
	if indices.valorBoleto, err = porLetra(colunas.ValorBoleto); err != nil {
		return indices, err
	}
	if indices.postergado, err = porLetra(colunas.Postergado); err != nil {
		return indices, err
	}
	indices.linhaCabecalho = 0

	if indices.numeroNFe < 0 || indices.dataAbastecimento < 0 || indices.valorBoleto < 0 {
		return indices, fmt.Errorf("colunas obrigatórias não configuradas (NFe, data, valor)")
	}
	return indices, nil
}

// detectarColunas procura a linha de cabeçalho nas primeiras linhas e casa
// cada campo por palavra-chave; quando não há correspondência exata recorre a
// correspondência aproximada.
func (s *service) detectarColunas(rows [][]string) (indicesColunas, error) {
	maxRowsSearch := 40
	if len(rows) < maxRowsSearch {
		maxRowsSearch = len(rows)
	}

	headerRow := -1
	for i := 0; i < maxRowsSearch; i++ {
		for _, cell := range rows[i] {
			nc := normalizeText(cell)
			if strings.Contains(nc, "NFE") || strings.Contains(nc, "NOTA") {
				headerRow = i
				break
			}
		}
		if headerRow >= 0 {
			break
		}
	}
	if headerRow < 0 {
		return indicesColunas{}, fmt.Errorf("linha de cabeçalho não encontrada")
	}

	header := rows[headerRow]
	normCols := make([]string, len(header))
	for i, h := range header {
		normCols[i] = normalizeText(h)
	}

	indices := indicesColunas{
		numeroNFe:         pickBestColumn(normCols, []string{"NUMERO NFE", "NFE", "NOTA"}),
		dataAbastecimento: pickBestColumn(normCols, []string{"DATA ABASTECIMENTO", "ABASTECIMENTO", "DATA"}),
		cnpjPosto:         pickBestColumn(normCols, []string{"CNPJ POSTO", "POSTO"}),
		cnpjEmpresa:       pickBestColumn(normCols, []string{"CNPJ EMPRESA", "EMPRESA"}),
		valorBoleto:       pickBestColumn(normCols, []string{"VALOR BOLETO", "BOLETO", "VALOR"}),
		postergado:        pickBestColumn(normCols, []string{"POSTERGADO", "POSTERG"}),
		linhaCabecalho:    headerRow,
	}

	if indices.numeroNFe < 0 || indices.dataAbastecimento < 0 || indices.valorBoleto < 0 {
		return indices, fmt.Errorf("colunas obrigatórias não encontradas no cabeçalho (NFe, data, valor)")
	}
	return indices, nil
}

// pickBestColumn devolve o índice da primeira coluna cujo cabeçalho contém a
// palavra-chave; sem correspondência exata, usa correspondência aproximada
// sobre os cabeçalhos normalizados.
func pickBestColumn(normCols []string, keywords []string) int {
	for _, kw := range keywords {
		for idx, nc := range normCols {
			if nc != "" && strings.Contains(nc, kw) {
				return idx
			}
		}
	}

	var candidatos []string
	for _, nc := range normCols {
		if nc != "" {
			candidatos = append(candidatos, nc)
		}
	}
	if len(candidatos) == 0 {
		return -1
	}
	cm := closestmatch.New(candidatos, []int{3, 4})
	match := cm.Closest(keywords[0])
	if match == "" {
		return -1
	}
	for idx, nc := range normCols {
		if nc == match {
			return idx
		}
	}
	return -1
}
