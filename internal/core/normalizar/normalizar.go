// Package normalizar converte texto bruto da planilha (moeda, datas, CNPJs e
// referências de NFe) para as formas canônicas usadas pelo confrontamento.
package normalizar

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	naoDigitosRegex        = regexp.MustCompile(`\D`)
	naoDigitosVirgulaRegex = regexp.MustCompile(`[^\d,]`)
)

// formatosData é a lista ordenada de formatos aceitos; o primeiro que casar vence.
var formatosData = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
}

// LimparCNPJ remove a formatação do CNPJ, mantendo apenas dígitos.
func LimparCNPJ(cnpj string) string {
	return naoDigitosRegex.ReplaceAllString(cnpj, "")
}

// FormatarCNPJ formata um CNPJ: 12345678000190 -> 12.345.678/0001-90.
// CNPJs fora do tamanho esperado são devolvidos como estão.
func FormatarCNPJ(cnpj string) string {
	cnpj = LimparCNPJ(cnpj)
	if len(cnpj) != 14 {
		return cnpj
	}
	return cnpj[:2] + "." + cnpj[2:5] + "." + cnpj[5:8] + "/" + cnpj[8:12] + "-" + cnpj[12:14]
}

// ConverterValor interpreta um valor monetário em texto, aceitando as
// convenções brasileira (1.234,56) e internacional (1,234.56). A convenção é
// decidida pela posição da última vírgula e do último ponto. Texto que não
// puder ser interpretado vira zero (não-fatal). O resultado é arredondado
// para 2 casas (half-up).
func ConverterValor(valor string) decimal.Decimal {
	s := strings.TrimSpace(valor)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	negativo := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negativo = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasPrefix(s, "-") {
		negativo = true
		s = strings.TrimPrefix(s, "-")
	}

	ultimaVirgula := strings.LastIndex(s, ",")
	ultimoPonto := strings.LastIndex(s, ".")

	switch {
	case ultimaVirgula >= 0 && ultimoPonto >= 0:
		if ultimaVirgula > ultimoPonto {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case ultimaVirgula >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negativo {
		d = d.Neg()
	}
	return d.Round(2)
}

// ConverterData interpreta uma data em texto usando a lista ordenada de
// formatos. Retorna a data truncada (meia-noite UTC) e false quando nenhum
// formato casa.
func ConverterData(valor string) (time.Time, bool) {
	s := strings.TrimSpace(valor)
	if s == "" {
		return time.Time{}, false
	}
	for _, formato := range formatosData {
		if dt, err := time.Parse(formato, s); err == nil {
			return time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ExtrairNumerosNFe extrai os números de NFe de uma célula e detecta
// cancelamento/estorno.
//
// Exemplos:
//
//	"NFe16184"              -> (["16184"], false, false)
//	"NFe103576, NFe103577"  -> (["103576", "103577"], false, false)
//	"Cancelado"             -> (nil, true, false)
//	"Estorno"               -> (nil, false, true)
//
// A detecção de cancelamento/estorno é case-insensitive e curto-circuita a
// extração. Os números retornados são deduplicados e ordenados.
func ExtrairNumerosNFe(texto string) (numeros []string, ehCancelamento, ehEstorno bool) {
	s := strings.TrimSpace(texto)
	if s == "" {
		return nil, false, false
	}

	minusculo := strings.ToLower(s)
	ehCancelamento = strings.Contains(minusculo, "cancelado") || strings.Contains(minusculo, "cancelamento")
	ehEstorno = strings.Contains(minusculo, "estorno")
	if ehCancelamento || ehEstorno {
		return nil, ehCancelamento, ehEstorno
	}

	limpo := naoDigitosVirgulaRegex.ReplaceAllString(s, "")
	vistos := make(map[string]bool)
	for _, parte := range strings.Split(limpo, ",") {
		n := strings.TrimSpace(parte)
		if n == "" || vistos[n] {
			continue
		}
		vistos[n] = true
		numeros = append(numeros, n)
	}
	sort.Strings(numeros)
	return numeros, false, false
}
