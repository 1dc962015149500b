package ingestao

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"validation-service/internal/core/normalizar"
	"validation-service/internal/domain"
)

// CarregarNFes extrai as NFe's de todos os XMLs contidos nos arquivos ZIP.
// XMLs ilegíveis ou incompletos são ignorados individualmente e contados;
// a carga só falha quando nenhuma NFe válida é encontrada.
func (s *service) CarregarNFes(zips []io.Reader) ([]domain.NFe, error) {
	if len(zips) == 0 {
		return nil, fmt.Errorf("nenhum arquivo ZIP informado")
	}

	var nfes []domain.NFe
	xmls := 0
	erros := 0

	for i, z := range zips {
		data, err := io.ReadAll(z)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler arquivo ZIP %d: %w", i+1, err)
		}
		reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("arquivo ZIP %d inválido: %w", i+1, err)
		}

		for _, file := range reader.File {
			if file.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(file.Name), ".xml") {
				continue
			}
			xmls++

			rc, err := file.Open()
			if err != nil {
				erros++
				s.log.Debug("erro ao abrir XML no ZIP", zap.String("arquivo", file.Name), zap.Error(err))
				continue
			}
			conteudo, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				erros++
				continue
			}

			nfe, err := s.extrairNFe(conteudo, filepath.Base(file.Name))
			if err != nil {
				erros++
				s.log.Debug("XML de NFe rejeitado", zap.String("arquivo", file.Name), zap.Error(err))
				continue
			}
			nfes = append(nfes, nfe)
		}
	}

	s.log.Info("XMLs carregados",
		zap.Int("arquivos_zip", len(zips)),
		zap.Int("xmls", xmls),
		zap.Int("nfes", len(nfes)),
		zap.Int("erros", erros),
	)

	if len(nfes) == 0 {
		return nil, fmt.Errorf("nenhum XML de NFe válido encontrado nos arquivos ZIP")
	}
	return nfes, nil
}

// extrairNFe decodifica um XML de NFe, aceitando tanto a raiz <nfeProc>
// (nota processada) quanto <NFe> direta.
func (s *service) extrairNFe(conteudo []byte, origem string) (domain.NFe, error) {
	var inf domain.InfNFeXML

	var proc domain.NFeProcXML
	if err := xml.Unmarshal(conteudo, &proc); err == nil && proc.NFe.InfNFe.Ide.NNF != "" {
		inf = proc.NFe.InfNFe
	} else {
		var nota domain.NFeXML
		if err := xml.Unmarshal(conteudo, &nota); err != nil {
			return domain.NFe{}, fmt.Errorf("erro ao decodificar XML %s: %w", origem, err)
		}
		inf = nota.InfNFe
	}

	dataEmissao, err := parseDataEmissao(inf.Ide)
	if err != nil {
		return domain.NFe{}, fmt.Errorf("data de emissão inválida em %s: %w", origem, err)
	}

	valor, err := decimal.NewFromString(strings.TrimSpace(inf.Total.ICMSTot.VNF))
	if err != nil {
		return domain.NFe{}, fmt.Errorf("valor total inválido em %s: %w", origem, err)
	}

	return domain.NovaNFe(
		strings.TrimSpace(inf.Ide.NNF),
		dataEmissao,
		normalizar.LimparCNPJ(inf.Emit.CNPJ),
		normalizar.LimparCNPJ(inf.Dest.CNPJ),
		valor,
		origem,
	)
}

// parseDataEmissao lê dhEmi (layout 4.0, com horário e fuso) ou dEmi
// (layouts antigos, só a data). O horário é descartado.
func parseDataEmissao(ide domain.IdeXML) (time.Time, error) {
	raw := strings.TrimSpace(ide.DhEmi)
	if raw != "" {
		if idx := strings.IndexByte(raw, 'T'); idx > 0 {
			raw = raw[:idx]
		}
	} else {
		raw = strings.TrimSpace(ide.DEmi)
	}
	if raw == "" {
		return time.Time{}, fmt.Errorf("campos dhEmi e dEmi ausentes")
	}
	return time.Parse("2006-01-02", raw)
}
