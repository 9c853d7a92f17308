package enrichment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFullPayload(t *testing.T) {
	var office Office
	require.NoError(t, json.Unmarshal([]byte(sampleOfficeJSON), &office))

	f := Extract(&office)

	assert.Equal(t, "EMPRESA TESTE LTDA", f["razao_social"])
	assert.Equal(t, "Teste", f["nome_fantasia"])
	assert.Equal(t, "2010-01-20", f["data_abertura"])
	assert.Equal(t, "206-2 Sociedade Empresária Limitada", f["natureza_juridica"])
	assert.Equal(t, "2", f["porte_id"])
	assert.Equal(t, "ME", f["porte_sigla"])
	assert.Equal(t, "Microempresa", f["porte_descricao"])
	assert.Equal(t, "6201501", f["cnae_principal_codigo"])
	assert.Equal(t, "Av. Paulista", f["endereco_logradouro"])
	assert.Equal(t, "1000", f["endereco_numero"])
	assert.Equal(t, "Sala 1", f["endereco_complemento"])
	assert.Equal(t, "Bela Vista", f["endereco_bairro"])
	assert.Equal(t, "São Paulo", f["endereco_cidade"])
	assert.Equal(t, "SP", f["endereco_uf"])
	assert.Equal(t, "01310100", f["endereco_cep"])
	assert.Equal(t, "Ativa", f["situacao_cadastral"])
	assert.Equal(t, "2010-01-20", f["data_situacao_cadastral"])
	assert.Equal(t, "Matriz", f["matriz_ou_filial"])
}

func TestExtractPartialPayload(t *testing.T) {
	// Missing nested objects must not abort extraction of the rest.
	var office Office
	require.NoError(t, json.Unmarshal([]byte(`{"company":{"name":"SÓ NOME SA"},"status":"Ativa"}`), &office))

	f := Extract(&office)

	assert.Equal(t, "SÓ NOME SA", f["razao_social"])
	assert.Equal(t, "Ativa", f["situacao_cadastral"])
	assert.Equal(t, "", f["nome_fantasia"])
	assert.Equal(t, "", f["porte_id"])
	assert.Equal(t, "", f["cnae_principal_codigo"])
	assert.Equal(t, "", f["endereco_cidade"])
	assert.Len(t, f, len(EnrichmentColumns))
}

func TestExtractNilPayload(t *testing.T) {
	f := Extract(nil)
	assert.Len(t, f, len(EnrichmentColumns))
	for col, v := range f {
		assert.Empty(t, v, "column %s", col)
	}
}

func TestEmptyFieldsCoversEveryColumn(t *testing.T) {
	f := EmptyFields()
	for _, col := range EnrichmentColumns {
		_, ok := f[col]
		assert.True(t, ok, "missing column %s", col)
	}
}
