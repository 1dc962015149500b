// Package config carrega a configuração do serviço a partir de variáveis de
// ambiente e de um arquivo .env opcional.
package config

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"validation-service/internal/domain"
)

// Config reúne os parâmetros de execução do serviço.
type Config struct {
	Port              string
	CNPJEmpresaPadrao string
	PeriodoMaximoDias int
	ToleranciaValor   decimal.Decimal
	LimiteValidacao   decimal.Decimal
	Colunas           domain.ColunasPlanilha
}

// Load lê o .env (quando presente) e as variáveis de ambiente, aplicando os
// padrões do domínio para os campos não informados.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8084")
	v.SetDefault("CNPJ_EMPRESA", "")
	v.SetDefault("PERIODO_MAXIMO_DIAS", domain.PeriodoMaximoDiasPadrao)
	v.SetDefault("TOLERANCIA_VALOR", domain.ToleranciaValorPadrao.String())
	v.SetDefault("LIMITE_VALIDACAO", domain.LimiteValidacaoPadrao.String())

	padrao := domain.ColunasPadrao()
	v.SetDefault("COLUNA_NFE", padrao.NumeroNFe)
	v.SetDefault("COLUNA_DATA", padrao.DataAbastecimento)
	v.SetDefault("COLUNA_CNPJ_POSTO", padrao.CNPJPosto)
	v.SetDefault("COLUNA_CNPJ_EMPRESA", padrao.CNPJEmpresa)
	v.SetDefault("COLUNA_VALOR", padrao.ValorBoleto)
	v.SetDefault("COLUNA_POSTERGADO", padrao.Postergado)
	v.SetDefault("DETECTAR_COLUNAS", false)

	// .env é opcional; só variáveis de ambiente também funcionam
	_ = v.ReadInConfig()

	tolerancia, err := decimal.NewFromString(v.GetString("TOLERANCIA_VALOR"))
	if err != nil {
		tolerancia = domain.ToleranciaValorPadrao
	}
	limite, err := decimal.NewFromString(v.GetString("LIMITE_VALIDACAO"))
	if err != nil {
		limite = domain.LimiteValidacaoPadrao
	}

	return &Config{
		Port:              v.GetString("PORT"),
		CNPJEmpresaPadrao: v.GetString("CNPJ_EMPRESA"),
		PeriodoMaximoDias: v.GetInt("PERIODO_MAXIMO_DIAS"),
		ToleranciaValor:   tolerancia,
		LimiteValidacao:   limite,
		Colunas: domain.ColunasPlanilha{
			NumeroNFe:         v.GetString("COLUNA_NFE"),
			DataAbastecimento: v.GetString("COLUNA_DATA"),
			CNPJPosto:         v.GetString("COLUNA_CNPJ_POSTO"),
			CNPJEmpresa:       v.GetString("COLUNA_CNPJ_EMPRESA"),
			ValorBoleto:       v.GetString("COLUNA_VALOR"),
			Postergado:        v.GetString("COLUNA_POSTERGADO"),
			Detectar:          v.GetBool("DETECTAR_COLUNAS"),
		},
	}, nil
}
