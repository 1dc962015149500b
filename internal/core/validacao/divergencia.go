package validacao

import "validation-service/internal/domain"

// agruparDivergencias correlaciona resultados DIVERGENTE_AGRUPADA que nasceram
// da mesma linha da planilha: a chave é a linha da primeira transação agrupada
// do grupo. Os ids são inteiros sequenciais a partir de 1, atribuídos na ordem
// do primeiro encontro; todo resultado recebe um id, inclusive os de chave
// única.
//
// A fatia de entrada não é modificada; uma cópia anotada é devolvida junto com
// o mapa id -> resultados.
func agruparDivergencias(divergentesAgrupadas []domain.Resultado) ([]domain.Resultado, map[int][]domain.Resultado) {
	anotadas := make([]domain.Resultado, len(divergentesAgrupadas))
	grupos := make(map[int][]domain.Resultado)
	idPorLinha := make(map[int]int)
	proximoID := 1

	for i, resultado := range divergentesAgrupadas {
		anotadas[i] = resultado
		if len(resultado.Grupo.TransacoesAgrupadas) == 0 {
			continue
		}

		linha := resultado.Grupo.TransacoesAgrupadas[0].Linha
		id, ok := idPorLinha[linha]
		if !ok {
			id = proximoID
			proximoID++
			idPorLinha[linha] = id
		}

		anotadas[i].GrupoDivergenciaID = id
		grupos[id] = append(grupos[id], anotadas[i])
	}

	return anotadas, grupos
}
