package reshape

import "github.com/de-tools/fidc-atlas/pkg/models/domain"

const (
	ItemSentinel   = "Item"
	PeriodSentinel = "Descrição/Período"
	FundSentinel   = "FIDC"
)

func byItem() StandardizeOptions {
	return StandardizeOptions{Subset: ItemSentinel, DropBlank: true}
}

func topTen() []Step {
	return []Step{TopConcentration("Sacado"), TopConcentration("Cedente")}
}

// DefaultRecipes returns the built-in source templates.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			Name:   "TERCON",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(StandardizeOptions{Subset: ItemSentinel}), DropUndated},
		},
		{
			Name:   "M8",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(byItem()), ConvertDates},
		},
		{
			Name:   "ORRAM",
			Load:   AllSheets,
			Layout: []Step{Merge(ItemSentinel)},
			FundHooks: map[string][]Step{
				"SIFRANPP": {
					SumFamily(domain.TagMez, domain.TagRepeatMez),
					BlankColumn("PL Sênior"),
					SumFamily(domain.TagSen, domain.TagRepeatSen),
				},
			},
			Hooks: []Step{NetAssets},
		},
		{
			Name:   "ALFA",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(byItem())},
			Hooks:  topTen(),
		},
		{
			Name:   "BARCELONA",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(byItem())},
			Hooks:  []Step{NetAssets},
		},
		{
			Name:   "MULTIASSET",
			Load:   AllSheets,
			Layout: []Step{Merge(ItemSentinel)},
			Hooks:  []Step{NetAssets},
		},
		{
			Name:   "MULTIPLIKE",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(byItem()), DropUndated},
			Hooks:  topTen(),
		},
		{
			Name:   "ONE7",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(StandardizeOptions{Subset: ItemSentinel}), ConvertDates},
			Hooks:  topTen(),
		},
		{
			Name: "VALOREM",
			Load: SingleSheet,
			Layout: []Step{
				Extract(PeriodSentinel),
				Clean(StandardizeOptions{Subset: PeriodSentinel, DropBlank: true}),
			},
			Hooks: []Step{StripPresentValueSuffix, Magnitudes},
		},
		{
			Name:   "SOLAR",
			Load:   NamedSheet("Dados"),
			Layout: []Step{Extract(ItemSentinel), Clean(byItem())},
			Hooks: append([]Step{
				ScaleValues,
				ScaleAbsolute,
				RebasePercent("PL Total Classe (R$ mil)"),
			}, topTen()...),
		},
		{
			Name: "ONIXOLD",
			Load: SingleSheet,
			Layout: []Step{
				Extract(ItemSentinel),
				Clean(StandardizeOptions{Subset: ItemSentinel, DropBlank: true, FirstOnly: true}),
				DropUndated,
			},
			Hooks:      append([]Step{NetAssets}, topTen()...),
			OutputName: "ONIX",
		},
		{
			Name: "RAIZES",
			Load: SingleSheet,
			Layout: []Step{
				Extract(ItemSentinel),
				Clean(StandardizeOptions{Subset: ItemSentinel, DropBlank: true, FirstOnly: true}),
			},
			Hooks: topTen(),
		},
		{
			Name:   "FIRMA",
			Load:   AllSheets,
			Layout: []Step{Merge(ItemSentinel)},
		},
		{
			Name:   "RNX",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(byItem()), ConvertDates},
			Hooks:  append([]Step{StripParentheticals}, topTen()...),
		},
		{
			Name:   "SABIA",
			Load:   SingleSheet,
			Layout: []Step{Extract(ItemSentinel), Clean(byItem()), ConvertDates},
			Hooks:  topTen(),
		},
		{
			Name:       "OXSS",
			Load:       SingleSheet,
			Layout:     []Step{Extract(ItemSentinel), Clean(StandardizeOptions{Subset: ItemSentinel})},
			OutputName: "IOXII",
		},
		{
			Name: "IOSAN",
			Load: SingleSheet,
			Layout: []Step{
				Extract(FundSentinel),
				Clean(StandardizeOptions{Subset: FundSentinel, DropBlank: true}),
			},
			Hooks: []Step{RebasePercent("PL Total"), StripParentheticals},
		},
	}
}

// DefaultRegistry returns a registry holding DefaultRecipes.
func DefaultRegistry() Registry {
	r := NewRegistry()
	for _, recipe := range DefaultRecipes() {
		if err := r.Register(recipe); err != nil {
			panic(err)
		}
	}
	return r
}
