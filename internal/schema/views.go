package schema

// ColumnKind tells the aggregator how a view column may be used.
type ColumnKind int

const (
	KindDimension ColumnKind = iota
	KindMeasure
)

// ValueType is the storage type a view column is coerced to.
type ValueType int

const (
	TypeInt ValueType = iota // nullable integer code
	TypeString
	TypeFloat // monetary, null means zero
)

// ColumnSpec declares one column of a denormalized view: its internal name,
// the label shown to users, whether it groups or sums, and its value type.
type ColumnSpec struct {
	Name  string
	Label string
	Kind  ColumnKind
	Type  ValueType
}

// ViewSpec is the declarative column registry of one pivot view. It is the
// single source of truth for the aggregator, the formatter and the HTTP layer.
type ViewSpec struct {
	Name    string
	Columns []ColumnSpec
}

// ExecutionView describes the budget-execution wide table.
var ExecutionView = ViewSpec{
	Name: "execucao",
	Columns: []ColumnSpec{
		{Name: "ano", Label: "Ano", Kind: KindDimension, Type: TypeInt},
		{Name: "mes_cod", Label: "Mês (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "uo_cod", Label: "UO (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "uo_sigla", Label: "UO (sigla)", Kind: KindDimension, Type: TypeString},
		{Name: "acao_cod", Label: "Ação (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "acao_desc", Label: "Ação (descrição)", Kind: KindDimension, Type: TypeString},
		{Name: "grupo_cod", Label: "Grupo Despesa (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "fonte_cod", Label: "Fonte (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "ipu_cod", Label: "IPU (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "elemento_item_cod", Label: "Elemento item (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "elemento_item_desc", Label: "Elemento item (descr.)", Kind: KindDimension, Type: TypeString},
		{Name: "cnpj_cpf_formatado", Label: "CNPJ/CPF (formatado)", Kind: KindDimension, Type: TypeString},
		{Name: "num_contrato_saida", Label: "Nº contrato saída", Kind: KindDimension, Type: TypeString},
		{Name: "num_obra", Label: "Nº obra", Kind: KindDimension, Type: TypeString},
		{Name: "num_empenho", Label: "Nº empenho", Kind: KindDimension, Type: TypeString},
		{Name: "vlr_empenhado", Label: "Empenhado", Kind: KindMeasure, Type: TypeFloat},
		{Name: "vlr_liquidado", Label: "Liquidado", Kind: KindMeasure, Type: TypeFloat},
		{Name: "vlr_pago_orcamentario", Label: "Pago Orçamentário", Kind: KindMeasure, Type: TypeFloat},
	},
}

// ArrearsView describes the restos-a-pagar wide table with its derived
// RPP/RPNP metrics.
var ArrearsView = ViewSpec{
	Name: "restos_pagar",
	Columns: []ColumnSpec{
		{Name: "ano", Label: "Ano Exercício", Kind: KindDimension, Type: TypeInt},
		{Name: "ano_rp", Label: "Ano RP (Origem)", Kind: KindDimension, Type: TypeInt},
		{Name: "uo_cod", Label: "UO (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "uo_sigla", Label: "UO (sigla)", Kind: KindDimension, Type: TypeString},
		{Name: "acao_cod", Label: "Ação (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "acao_desc", Label: "Ação (descrição)", Kind: KindDimension, Type: TypeString},
		{Name: "elemento_item_cod", Label: "Elemento (cód.)", Kind: KindDimension, Type: TypeInt},
		{Name: "elemento_item_desc", Label: "Elemento (descr.)", Kind: KindDimension, Type: TypeString},
		{Name: "grupo_cod", Label: "Grupo Despesa", Kind: KindDimension, Type: TypeInt},
		{Name: "fonte_cod", Label: "Fonte", Kind: KindDimension, Type: TypeInt},
		{Name: "ipu_cod", Label: "IPU", Kind: KindDimension, Type: TypeInt},
		{Name: "num_empenho", Label: "Nº Empenho", Kind: KindDimension, Type: TypeString},
		{Name: "num_contrato_saida", Label: "Nº Contrato", Kind: KindDimension, Type: TypeString},
		{Name: "num_obra", Label: "Nº Obra", Kind: KindDimension, Type: TypeString},
		{Name: "cnpj_cpf_formatado", Label: "Credor (CPF/CNPJ)", Kind: KindDimension, Type: TypeString},
		{Name: "razao_social_credor", Label: "Razão Social Credor", Kind: KindDimension, Type: TypeString},
		{Name: "calc_inscrito_rpp", Label: "Inscrito (RPP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_cancelado_rpp", Label: "Cancelado (RPP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_pago_rpp", Label: "Pago (RPP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_saldo_rpp", Label: "Saldo (RPP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_inscrito_rpnp", Label: "Inscrito (RPNP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_cancelado_rpnp", Label: "Cancelado (RPNP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_liquidado_rpnp", Label: "Liquidado (RPNP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_saldo_rpnp", Label: "Saldo (RPNP)", Kind: KindMeasure, Type: TypeFloat},
		{Name: "calc_pago_rpnp", Label: "Pago (RPNP)", Kind: KindMeasure, Type: TypeFloat},
	},
}

// Column returns the spec of the named column.
func (v ViewSpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range v.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Names returns the internal column names in declaration order, optionally
// restricted to one kind.
func (v ViewSpec) Names(kinds ...ColumnKind) []string {
	var out []string
	for _, c := range v.Columns {
		if len(kinds) == 0 {
			out = append(out, c.Name)
			continue
		}
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c.Name)
				break
			}
		}
	}
	return out
}

// LabelFor maps an internal name to its display label; unknown names pass
// through unchanged.
func (v ViewSpec) LabelFor(name string) string {
	if c, ok := v.Column(name); ok {
		return c.Label
	}
	return name
}
