package enrichment

// Fields is the flattened column → value mapping merged into the output
// table for one record.
type Fields map[string]string

// EnrichmentColumns lists every payload-derived output column in export
// order. The set is fixed: a row that failed still carries all of them,
// empty.
var EnrichmentColumns = []string{
	"razao_social",
	"nome_fantasia",
	"data_abertura",
	"natureza_juridica",
	"porte_id",
	"porte_sigla",
	"porte_descricao",
	"cnae_principal_codigo",
	"cnae_principal_descricao",
	"endereco_logradouro",
	"endereco_numero",
	"endereco_complemento",
	"endereco_bairro",
	"endereco_cidade",
	"endereco_uf",
	"endereco_cep",
	"situacao_cadastral",
	"data_situacao_cadastral",
	"matriz_ou_filial",
}

// EmptyFields returns the all-empty mapping, one entry per enrichment
// column.
func EmptyFields() Fields {
	f := make(Fields, len(EnrichmentColumns))
	for _, c := range EnrichmentColumns {
		f[c] = ""
	}
	return f
}

// Extract flattens an office payload into the enrichment columns. It is a
// pure function and never fails: a nil payload or any missing nested
// object simply leaves the corresponding columns empty, column by column.
func Extract(payload *Office) Fields {
	f := EmptyFields()
	if payload == nil {
		return f
	}

	company := payload.Company
	f["razao_social"] = company.Name
	f["nome_fantasia"] = company.Alias
	f["data_abertura"] = company.OpeningDate
	f["natureza_juridica"] = company.LegalNature

	f["porte_id"] = company.Size.ID.String()
	f["porte_sigla"] = company.Size.Acronym
	f["porte_descricao"] = company.Size.Text

	f["cnae_principal_codigo"] = payload.MainActivity.ID.String()
	f["cnae_principal_descricao"] = payload.MainActivity.Text

	addr := payload.Address
	f["endereco_logradouro"] = addr.Street
	f["endereco_numero"] = addr.Number
	f["endereco_complemento"] = addr.Complement
	f["endereco_bairro"] = addr.District
	f["endereco_cidade"] = addr.City
	f["endereco_uf"] = addr.State
	f["endereco_cep"] = addr.Zip

	f["situacao_cadastral"] = payload.Status
	f["data_situacao_cadastral"] = payload.StatusDate
	f["matriz_ou_filial"] = payload.HeadquarterOrBranch

	return f
}
