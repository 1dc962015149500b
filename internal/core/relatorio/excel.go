package relatorio

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"validation-service/internal/core/normalizar"
	"validation-service/internal/domain"
)

// Nomes das abas do relatório, na ordem em que aparecem na pasta de trabalho.
const (
	abaResumo                = "Resumo"
	abaIdenticas             = "NFe Idênticas"
	abaDivergentesAgrupadas  = "NFe Divergentes Agrupadas"
	abaDivergentes           = "NFe Divergentes"
	abaNaoEncontradas        = "NFe Não Encontradas"
	abaDesconsideradas       = "NFe Desconsideradas"
	abaCancelamentosEstornos = "Cancelamentos e Estornos"
)

type estilos struct {
	cabecalho int
	moeda     int
	ok        int
	verificar int
}

func criarEstilos(f *excelize.File) (estilos, error) {
	var e estilos
	var err error

	bordas := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	e.cabecalho, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    bordas,
	})
	if err != nil {
		return e, err
	}

	formatoMoeda := `R$ #,##0.00`
	e.moeda, err = f.NewStyle(&excelize.Style{CustomNumFmt: &formatoMoeda})
	if err != nil {
		return e, err
	}

	e.ok, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "006100"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return e, err
	}

	e.verificar, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	return e, err
}

func escreverPastaDeTrabalho(c *domain.Confrontamento) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	est, err := criarEstilos(f)
	if err != nil {
		return nil, err
	}

	// a aba padrão vira o resumo
	if err := f.SetSheetName(f.GetSheetName(0), abaResumo); err != nil {
		return nil, err
	}
	if err := escreverResumo(f, est, c.Resumo); err != nil {
		return nil, err
	}

	abas := []struct {
		nome string
		tipo domain.TipoResultado
	}{
		{abaIdenticas, domain.ResultadoIdentica},
		{abaDivergentesAgrupadas, domain.ResultadoDivergenteAgrupada},
		{abaDivergentes, domain.ResultadoDivergente},
		{abaNaoEncontradas, domain.ResultadoNaoEncontrada},
		{abaDesconsideradas, domain.ResultadoDesconsiderada},
	}
	for _, aba := range abas {
		if err := escreverResultados(f, est, aba.nome, aba.tipo, c.Resultados[aba.tipo]); err != nil {
			return nil, err
		}
	}

	if err := escreverCancelamentosEstornos(f, est, c.CancelamentosEstornos); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

// escreverResumo monta a aba de totais, uma linha por rubrica, com a situação
// final na última linha.
func escreverResumo(f *excelize.File, est estilos, r domain.Resumo) error {
	if err := f.SetSheetRow(abaResumo, "A1", &[]interface{}{"Rubrica", "Valor"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(abaResumo, "A1", "B1", est.cabecalho); err != nil {
		return err
	}

	linhas := []struct {
		rotulo string
		valor  decimal.Decimal
	}{
		{"Valor do Boleto", r.ValorDoBoleto},
		{"NFe Idênticas", r.Identicas},
		{"NFe Divergentes Agrupadas", r.Agrupadas},
		{"NFe Divergentes", r.Divergentes},
		{"NFe Não Encontradas", r.NaoEncontradas},
		{"NFe Desconsideradas", r.Desconsideradas},
		{"Cancelamentos", r.Cancelamento},
		{"Estornos", r.Estornos},
		{"Total", r.Total},
		{"Valor a Pagar", r.ValorAPagar},
		{"Diferença da Validação", r.DiferencaValidacao},
	}
	for i, l := range linhas {
		row := i + 2
		cell := "A" + strconv.Itoa(row)
		if err := f.SetSheetRow(abaResumo, cell, &[]interface{}{l.rotulo, l.valor.InexactFloat64()}); err != nil {
			return err
		}
		valorCell := "B" + strconv.Itoa(row)
		if err := f.SetCellStyle(abaResumo, valorCell, valorCell, est.moeda); err != nil {
			return err
		}
	}

	situacaoRow := len(linhas) + 2
	situacao := "VERIFICAR"
	estiloSituacao := est.verificar
	if r.ValidacaoOK {
		situacao = "OK"
		estiloSituacao = est.ok
	}
	cell := "A" + strconv.Itoa(situacaoRow)
	if err := f.SetSheetRow(abaResumo, cell, &[]interface{}{"Situação", situacao}); err != nil {
		return err
	}
	situacaoCell := "B" + strconv.Itoa(situacaoRow)
	if err := f.SetCellStyle(abaResumo, situacaoCell, situacaoCell, estiloSituacao); err != nil {
		return err
	}

	if err := f.SetColWidth(abaResumo, "A", "A", 30); err != nil {
		return err
	}
	return f.SetColWidth(abaResumo, "B", "B", 20)
}

// escreverResultados monta uma aba de categoria. A aba de divergências
// agrupadas ganha a coluna do grupo e sai ordenada pelo id do grupo.
func escreverResultados(f *excelize.File, est estilos, nome string, tipo domain.TipoResultado, resultados []domain.Resultado) error {
	if _, err := f.NewSheet(nome); err != nil {
		return err
	}

	comGrupo := tipo == domain.ResultadoDivergenteAgrupada

	cabecalho := []interface{}{
		"Número NFe", "Data Abastecimento", "CNPJ Posto", "CNPJ Empresa",
		"Valor Planilha", "Valor NFe", "Diferença", "Dias Postergados",
		"Linhas", "Motivo",
	}
	if comGrupo {
		cabecalho = append(cabecalho, "Grupo de Divergência")
	}
	if err := f.SetSheetRow(nome, "A1", &cabecalho); err != nil {
		return err
	}
	ultimaColuna, err := excelize.ColumnNumberToName(len(cabecalho))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(nome, "A1", ultimaColuna+"1", est.cabecalho); err != nil {
		return err
	}

	if comGrupo {
		ordenados := make([]domain.Resultado, len(resultados))
		copy(ordenados, resultados)
		sort.SliceStable(ordenados, func(i, j int) bool {
			return ordenados[i].GrupoDivergenciaID < ordenados[j].GrupoDivergenciaID
		})
		resultados = ordenados
	}

	for i, r := range resultados {
		row := i + 2

		valorNFe := interface{}(nil)
		if r.NFe != nil {
			valorNFe = r.NFe.Valor.InexactFloat64()
		}

		linha := []interface{}{
			r.Grupo.NumeroNFe,
			r.Grupo.DataAbastecimento.Format("02/01/2006"),
			normalizar.FormatarCNPJ(r.Grupo.CNPJPosto),
			normalizar.FormatarCNPJ(r.Grupo.CNPJEmpresa),
			r.Grupo.ValorPlanilha.InexactFloat64(),
			valorNFe,
			r.Diferenca.InexactFloat64(),
			r.DiasPostergados,
			juntarLinhas(r.Grupo.Linhas),
			r.Motivo,
		}
		if comGrupo {
			linha = append(linha, r.GrupoDivergenciaID)
		}
		if err := f.SetSheetRow(nome, "A"+strconv.Itoa(row), &linha); err != nil {
			return err
		}

		rowStr := strconv.Itoa(row)
		if err := f.SetCellStyle(nome, "E"+rowStr, "G"+rowStr, est.moeda); err != nil {
			return err
		}
	}

	return ajustarLarguras(f, nome, cabecalho, resultados)
}

// escreverCancelamentosEstornos lista as transações retiradas do
// confrontamento, preservando o texto original da planilha.
func escreverCancelamentosEstornos(f *excelize.File, est estilos, transacoes []domain.TransacaoOriginal) error {
	if _, err := f.NewSheet(abaCancelamentosEstornos); err != nil {
		return err
	}

	cabecalho := []interface{}{"Linha", "Tipo", "Data", "CNPJ Posto", "Valor", "Texto Original"}
	if err := f.SetSheetRow(abaCancelamentosEstornos, "A1", &cabecalho); err != nil {
		return err
	}
	if err := f.SetCellStyle(abaCancelamentosEstornos, "A1", "F1", est.cabecalho); err != nil {
		return err
	}

	for i, t := range transacoes {
		row := strconv.Itoa(i + 2)
		tipo := "Cancelamento"
		if t.EhEstorno {
			tipo = "Estorno"
		}
		linha := []interface{}{
			t.Linha,
			tipo,
			t.DataAbastecimento.Format("02/01/2006"),
			normalizar.FormatarCNPJ(t.CNPJPosto),
			t.ValorBoleto.InexactFloat64(),
			t.TextoOriginal,
		}
		if err := f.SetSheetRow(abaCancelamentosEstornos, "A"+row, &linha); err != nil {
			return err
		}
		if err := f.SetCellStyle(abaCancelamentosEstornos, "E"+row, "E"+row, est.moeda); err != nil {
			return err
		}
	}

	return f.SetColWidth(abaCancelamentosEstornos, "F", "F", 50)
}

// ajustarLarguras dimensiona cada coluna pelo cabeçalho, limitado a 50;
// a coluna de motivo acompanha o texto mais longo.
func ajustarLarguras(f *excelize.File, nome string, cabecalho []interface{}, resultados []domain.Resultado) error {
	const colunaMotivo = 9 // índice base zero da coluna "Motivo"
	for i := range cabecalho {
		rotulo, _ := cabecalho[i].(string)
		largura := float64(len(rotulo)) + 4
		if i == colunaMotivo {
			for _, r := range resultados {
				if l := float64(len(r.Motivo)) + 2; l > largura {
					largura = l
				}
			}
		}
		if largura > 50 {
			largura = 50
		}
		if largura < 12 {
			largura = 12
		}
		coluna, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(nome, coluna, coluna, largura); err != nil {
			return err
		}
	}
	return nil
}

func juntarLinhas(linhas []int) string {
	partes := make([]string, len(linhas))
	for i, l := range linhas {
		partes[i] = strconv.Itoa(l)
	}
	return strings.Join(partes, ", ")
}
