package consolidate

import (
	"fmt"
	"slices"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	plTotal  = "PL Total"
	duplPct  = "Duplicata (PL%)"
	taxa     = "Taxa Média"
	fundoSob = "Fundo Soberano"
)

// Ratio is a derived snapshot column. It is only emitted when every input column is
// present, and Skip (when set) names a column whose presence suppresses it.
type Ratio struct {
	Name   string
	Inputs []string
	Skip   string
	Calc   func(get func(string) float64) float64
}

func div(a, b float64) float64 {
	if domain.IsMissing(a) || domain.IsMissing(b) || b == 0 {
		return domain.Missing
	}
	return a / b
}

func pctOfPL(col string) func(get func(string) float64) float64 {
	return func(get func(string) float64) float64 {
		return div(get(col), get(plTotal)) * 100
	}
}

func coalesce(a, b float64) float64 {
	if domain.IsMissing(a) {
		return b
	}
	return a
}

// Ratios are evaluated in order; later entries may read earlier results.
var Ratios = []Ratio{
	{
		Name:   "Subordinação (%)",
		Inputs: []string{"PL Mezanino", "PL Subordinada Jr", plTotal},
		Calc: func(get func(string) float64) float64 {
			return div(get("PL Mezanino")+get("PL Subordinada Jr"), get(plTotal)) * 100
		},
	},
	{Name: "Subordinação Jr (%)", Inputs: []string{"PL Subordinada Jr", plTotal}, Calc: pctOfPL("PL Subordinada Jr")},
	{Name: "PDD Total (PL%)", Inputs: []string{"PDD Total", plTotal}, Calc: pctOfPL("PDD Total")},
	{Name: "CVNP (PL%)", Inputs: []string{"Vencidos Total", plTotal}, Calc: pctOfPL("Vencidos Total")},
	{
		Name:   "CVNP - PDD (PL%)",
		Inputs: []string{"CVNP (PL%)", "PDD Total (PL%)"},
		Calc: func(get func(string) float64) float64 {
			return get("CVNP (PL%)") - get("PDD Total (PL%)")
		},
	},
	{Name: "Concentração Maior Cedente (PL%)", Inputs: []string{"Cedente 1", plTotal}, Calc: pctOfPL("Cedente 1")},
	{Name: "Concentração Maior Sacado (PL%)", Inputs: []string{"Sacado 1", plTotal}, Calc: pctOfPL("Sacado 1")},
	{
		Name:   "Concentração 10 Maiores Cedentes (PL%)",
		Inputs: []string{"Concentração Top 10 Cedentes (R$)", plTotal},
		Calc:   pctOfPL("Concentração Top 10 Cedentes (R$)"),
	},
	{
		Name:   "Concentração 10 Maiores Sacados (PL%)",
		Inputs: []string{"Concentração Top 10 Sacados (R$)", plTotal},
		Calc:   pctOfPL("Concentração Top 10 Sacados (R$)"),
	},
	{Name: "Recompra (PL%)", Inputs: []string{"Recompra (R$)", plTotal}, Calc: pctOfPL("Recompra (R$)")},
	{Name: "Liquidados Total (PL%)", Inputs: []string{"Liquidado Total (R$)", plTotal}, Calc: pctOfPL("Liquidado Total (R$)")},
	{
		Name:   duplPct,
		Inputs: []string{"Duplicata (%)"},
		Calc: func(get func(string) float64) float64 {
			return get("Duplicata (%)")
		},
	},
	{Name: duplPct, Inputs: []string{"Duplicata", plTotal}, Skip: duplPct, Calc: pctOfPL("Duplicata")},
	{
		Name:   taxa,
		Inputs: []string{taxa, "Taxa Ponderada de Cessão"},
		Calc: func(get func(string) float64) float64 {
			return coalesce(get(taxa), get("Taxa Ponderada de Cessão")) * 100
		},
	},
	{
		Name:   "Volume Operado (PL%)",
		Inputs: []string{"Volume Operado", "Valor Pago nas Operações no Mês", plTotal},
		Calc: func(get func(string) float64) float64 {
			return div(coalesce(get("Valor Pago nas Operações no Mês"), get("Volume Operado")), get(plTotal)) * 100
		},
	},
	{
		Name:   "Caixa/Disponibilidades (%PL)",
		Inputs: []string{"Caixa/Disponibilidades", plTotal},
		Calc: func(get func(string) float64) float64 {
			fundo := get(fundoSob)
			if domain.IsMissing(fundo) {
				fundo = 0
			}
			return div(get("Caixa/Disponibilidades")+fundo, get(plTotal)) * 100
		},
	},
}

// AddRatios appends every applicable ratio to snap and returns how many were added
// or replaced. A failing row leaves that cell missing.
func AddRatios(snap *domain.Snapshot, logger zerolog.Logger) int {
	added := 0
	for _, r := range Ratios {
		if r.Skip != "" && snap.ColumnIndex(r.Skip) >= 0 {
			continue
		}
		if slices.ContainsFunc(r.Inputs, func(in string) bool { return snap.ColumnIndex(in) < 0 }) {
			continue
		}

		vals := make([]float64, len(snap.Values))
		for i := range snap.Values {
			v, err := evalRow(snap, i, r)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("ratio", r.Name).
					Str("source", snap.Sources[i]).
					Msg("ratio left missing")
			}
			vals[i] = v
		}
		setColumn(snap, r.Name, vals)
		added++
	}
	return added
}

func evalRow(snap *domain.Snapshot, row int, r Ratio) (v float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = domain.Missing, fmt.Errorf("recovered: %v", p)
		}
	}()
	get := func(col string) float64 {
		j := snap.ColumnIndex(col)
		if j < 0 {
			return domain.Missing
		}
		return snap.Values[row][j]
	}
	return r.Calc(get), nil
}

func setColumn(snap *domain.Snapshot, name string, vals []float64) {
	if j := snap.ColumnIndex(name); j >= 0 {
		for i := range snap.Values {
			snap.Values[i][j] = vals[i]
		}
		return
	}
	snap.Columns = append(snap.Columns, name)
	for i := range snap.Values {
		snap.Values[i] = append(snap.Values[i], vals[i])
	}
}
