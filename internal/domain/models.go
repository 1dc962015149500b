// internal/domain/models.go
package domain

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TipoResultado define o tipo de resultado do confrontamento.
type TipoResultado string

// Constantes para os tipos de resultado.
const (
	ResultadoIdentica           TipoResultado = "IDENTICA"
	ResultadoDivergente         TipoResultado = "DIVERGENTE"
	ResultadoDivergenteAgrupada TipoResultado = "DIVERGENTE_AGRUPADA"
	ResultadoNaoEncontrada      TipoResultado = "NAO_ENCONTRADA"
	ResultadoDesconsiderada     TipoResultado = "DESCONSIDERADA"
)

// TiposResultado lista todos os tipos na ordem usada pelos relatórios.
var TiposResultado = []TipoResultado{
	ResultadoIdentica,
	ResultadoDivergenteAgrupada,
	ResultadoDivergente,
	ResultadoNaoEncontrada,
	ResultadoDesconsiderada,
}

// TipoOrigem define a origem das transações de um grupo.
type TipoOrigem string

// Constantes para a origem do grupo.
const (
	OrigemIndividual TipoOrigem = "INDIVIDUAL"
	OrigemAgrupado   TipoOrigem = "AGRUPADO"
	OrigemAmbos      TipoOrigem = "AMBOS"
	OrigemNenhum     TipoOrigem = "NENHUM"
)

// NFe representa uma Nota Fiscal Eletrônica extraída de XML.
// Imutável após a construção.
type NFe struct {
	Numero           string
	DataEmissao      time.Time
	CNPJEmitente     string
	CNPJDestinatario string
	Valor            decimal.Decimal
	Origem           string // nome do arquivo XML dentro do ZIP
}

// NovaNFe valida e constrói uma NFe já com CNPJs normalizados.
func NovaNFe(numero string, dataEmissao time.Time, cnpjEmitente, cnpjDestinatario string, valor decimal.Decimal, origem string) (NFe, error) {
	if numero == "" {
		return NFe{}, fmt.Errorf("NFe sem número (%s)", origem)
	}
	if dataEmissao.IsZero() {
		return NFe{}, fmt.Errorf("NFe %s sem data de emissão", numero)
	}
	if !valor.IsPositive() {
		return NFe{}, fmt.Errorf("valor da NFe %s deve ser positivo: %s", numero, valor)
	}
	if len(cnpjEmitente) != 14 {
		return NFe{}, fmt.Errorf("CNPJ emitente inválido na NFe %s: %q", numero, cnpjEmitente)
	}
	if len(cnpjDestinatario) != 14 {
		return NFe{}, fmt.Errorf("CNPJ destinatário inválido na NFe %s: %q", numero, cnpjDestinatario)
	}
	return NFe{
		Numero:           numero,
		DataEmissao:      dataEmissao,
		CNPJEmitente:     cnpjEmitente,
		CNPJDestinatario: cnpjDestinatario,
		Valor:            valor,
		Origem:           origem,
	}, nil
}

// TransacaoOriginal representa uma linha da planilha de abastecimento.
type TransacaoOriginal struct {
	NumerosNFe        []string // deduplicados e ordenados; vazio para cancelamento/estorno
	DataAbastecimento time.Time
	CNPJPosto         string
	CNPJEmpresa       string
	ValorBoleto       decimal.Decimal
	Postergado        string
	Linha             int
	TextoOriginal     string
	EhCancelamento    bool
	EhEstorno         bool
}

// NovaTransacao valida e constrói uma transação da planilha.
// CNPJs devem chegar já normalizados (apenas dígitos).
func NovaTransacao(t TransacaoOriginal) (TransacaoOriginal, error) {
	if !t.EhCancelamento && !t.EhEstorno {
		if len(t.NumerosNFe) == 0 {
			return TransacaoOriginal{}, fmt.Errorf("linha %d sem números de NFe: %q", t.Linha, t.TextoOriginal)
		}
		if !t.ValorBoleto.IsPositive() {
			return TransacaoOriginal{}, fmt.Errorf("valor do boleto deve ser positivo na linha %d: %s", t.Linha, t.ValorBoleto)
		}
	}
	if t.DataAbastecimento.IsZero() {
		return TransacaoOriginal{}, fmt.Errorf("data de abastecimento inválida na linha %d", t.Linha)
	}
	if len(t.CNPJPosto) != 14 {
		return TransacaoOriginal{}, fmt.Errorf("CNPJ do posto inválido na linha %d: %q", t.Linha, t.CNPJPosto)
	}
	if len(t.CNPJEmpresa) != 14 {
		return TransacaoOriginal{}, fmt.Errorf("CNPJ da empresa inválido na linha %d: %q", t.Linha, t.CNPJEmpresa)
	}
	return t, nil
}

// EhAgrupamento indica se a transação referencia múltiplas NFe's.
func (t TransacaoOriginal) EhAgrupamento() bool {
	return len(t.NumerosNFe) > 1
}

// GrupoNFe agrupa as transações que referenciam um mesmo número de NFe.
// Reconstruído a cada execução; nunca modificado após a construção.
type GrupoNFe struct {
	NumeroNFe             string
	DataAbastecimento     time.Time
	CNPJPosto             string
	CNPJEmpresa           string
	ValorPlanilha         decimal.Decimal
	Postergado            string
	TransacoesIndividuais []TransacaoOriginal
	TransacoesAgrupadas   []TransacaoOriginal
	Linhas                []int
}

// TemIndividual indica se o grupo possui transações individuais.
func (g GrupoNFe) TemIndividual() bool {
	return len(g.TransacoesIndividuais) > 0
}

// TemAgrupado indica se o grupo possui transações agrupadas.
func (g GrupoNFe) TemAgrupado() bool {
	return len(g.TransacoesAgrupadas) > 0
}

// TipoOrigem retorna a origem das transações do grupo.
func (g GrupoNFe) TipoOrigem() TipoOrigem {
	switch {
	case g.TemIndividual() && g.TemAgrupado():
		return OrigemAmbos
	case g.TemIndividual():
		return OrigemIndividual
	case g.TemAgrupado():
		return OrigemAgrupado
	}
	return OrigemNenhum
}

// Resultado é o resultado do confrontamento de um grupo.
// GrupoDivergenciaID é atribuído uma única vez, após a construção, pelo
// agrupador de divergências (zero = sem grupo atribuído).
type Resultado struct {
	Tipo               TipoResultado
	Grupo              GrupoNFe
	NFe                *NFe
	Diferenca          decimal.Decimal
	DiasPostergados    int
	Motivo             string
	GrupoDivergenciaID int
}

// Resumo consolida os totais finais do confrontamento.
type Resumo struct {
	ValorDoBoleto      decimal.Decimal
	Identicas          decimal.Decimal
	Agrupadas          decimal.Decimal
	Divergentes        decimal.Decimal
	Desconsideradas    decimal.Decimal
	NaoEncontradas     decimal.Decimal
	Cancelamento       decimal.Decimal
	Estornos           decimal.Decimal
	Total              decimal.Decimal
	ValorAPagar        decimal.Decimal
	DiferencaValidacao decimal.Decimal
	ValidacaoOK        bool
}

// Confrontamento é a saída completa do motor de validação: a partição em
// cinco categorias, os grupos de divergências agrupadas, o resumo e as
// transações de cancelamento/estorno retidas.
type Confrontamento struct {
	Resultados            map[TipoResultado][]Resultado
	GruposDivergencia     map[int][]Resultado
	Resumo                Resumo
	CancelamentosEstornos []TransacaoOriginal
}

// TotalProcessado retorna a quantidade total de grupos confrontados.
func (c *Confrontamento) TotalProcessado() int {
	total := 0
	for _, lista := range c.Resultados {
		total += len(lista)
	}
	return total
}

// Configuracao reúne os parâmetros do confrontamento. É passada explicitamente
// a cada chamada; não existe estado global.
type Configuracao struct {
	DataFechamento    time.Time
	PeriodoMaximoDias int
	ToleranciaValor   decimal.Decimal
	CNPJEmpresaPadrao string
	LimiteValidacao   decimal.Decimal
}

// Valores padrão da configuração.
var (
	PeriodoMaximoDiasPadrao = 60
	ToleranciaValorPadrao   = decimal.RequireFromString("1.01")
	LimiteValidacaoPadrao   = decimal.NewFromInt(1000)
)

// AplicarPadroes preenche os campos zerados com os valores padrão.
func (c Configuracao) AplicarPadroes() Configuracao {
	if c.PeriodoMaximoDias == 0 {
		c.PeriodoMaximoDias = PeriodoMaximoDiasPadrao
	}
	if c.ToleranciaValor.IsZero() {
		c.ToleranciaValor = ToleranciaValorPadrao
	}
	if c.LimiteValidacao.IsZero() {
		c.LimiteValidacao = LimiteValidacaoPadrao
	}
	return c
}

// Validar verifica a consistência da configuração.
func (c Configuracao) Validar() error {
	if c.DataFechamento.IsZero() {
		return fmt.Errorf("data de fechamento é obrigatória")
	}
	if c.PeriodoMaximoDias <= 0 {
		return fmt.Errorf("período máximo deve ser positivo: %d", c.PeriodoMaximoDias)
	}
	if c.ToleranciaValor.IsNegative() {
		return fmt.Errorf("tolerância de valor deve ser não-negativa: %s", c.ToleranciaValor)
	}
	return nil
}

// CalcularDiasPostergados retorna os dias entre o abastecimento e o
// fechamento, nunca negativo.
func (c Configuracao) CalcularDiasPostergados(dataAbastecimento time.Time) int {
	dias := int(c.DataFechamento.Sub(dataAbastecimento).Hours() / 24)
	if dias < 0 {
		return 0
	}
	return dias
}

// ColunasPlanilha indica em quais colunas da planilha cada campo está.
// Quando Detectar é true as letras são ignoradas e as colunas são localizadas
// pelo cabeçalho.
type ColunasPlanilha struct {
	NumeroNFe         string
	DataAbastecimento string
	CNPJPosto         string
	CNPJEmpresa       string
	ValorBoleto       string
	Postergado        string
	Detectar          bool
}

// ColunasPadrao retorna o leiaute padrão da planilha de abastecimento.
func ColunasPadrao() ColunasPlanilha {
	return ColunasPlanilha{
		NumeroNFe:         "AS",
		DataAbastecimento: "D",
		CNPJPosto:         "H",
		CNPJEmpresa:       "J",
		ValorBoleto:       "AO",
		Postergado:        "AR",
	}
}

// --- Estruturas do XML da NFe ---

// NFeProcXML representa a raiz <nfeProc> de uma NFe processada.
type NFeProcXML struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     NFeXML   `xml:"NFe"`
}

// NFeXML representa o nó <NFe>.
type NFeXML struct {
	XMLName xml.Name  `xml:"NFe"`
	InfNFe  InfNFeXML `xml:"infNFe"`
}

// InfNFeXML representa o nó <infNFe> com os campos usados pela validação.
type InfNFeXML struct {
	Ide   IdeXML   `xml:"ide"`
	Emit  ParteXML `xml:"emit"`
	Dest  ParteXML `xml:"dest"`
	Total TotalXML `xml:"total"`
}

// IdeXML representa o nó <ide> (identificação da NFe).
type IdeXML struct {
	NNF   string `xml:"nNF"`
	DhEmi string `xml:"dhEmi"`
	DEmi  string `xml:"dEmi"`
}

// ParteXML representa emitente ou destinatário.
type ParteXML struct {
	CNPJ string `xml:"CNPJ"`
}

// TotalXML representa o nó <total>.
type TotalXML struct {
	ICMSTot ICMSTotXML `xml:"ICMSTot"`
}

// ICMSTotXML representa o nó <ICMSTot> com o valor total da nota.
type ICMSTotXML struct {
	VNF string `xml:"vNF"`
}
