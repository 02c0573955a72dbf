package model

// LoadType is the enum form named authoritative in spec.md §9: the wider
// member set wins over any legacy union-of-strings variant.
type LoadType string

const (
	LoadBauxite   LoadType = "Bauxite"
	LoadWheat     LoadType = "Wheat"
	LoadCoal      LoadType = "Coal"
	LoadWine      LoadType = "Wine"
	LoadFish      LoadType = "Fish"
	LoadOil       LoadType = "Oil"
	LoadCork      LoadType = "Cork"
	LoadSteel     LoadType = "Steel"
	LoadWood      LoadType = "Wood"
	LoadBeer      LoadType = "Beer"
	LoadCars      LoadType = "Cars"
	LoadMachinery LoadType = "Machinery"
	LoadTextiles  LoadType = "Textiles"
	LoadCheese    LoadType = "Cheese"
	LoadChemicals LoadType = "Chemicals"
	LoadHops      LoadType = "Hops"
)

var allLoadTypes = map[LoadType]bool{
	LoadBauxite: true, LoadWheat: true, LoadCoal: true, LoadWine: true,
	LoadFish: true, LoadOil: true, LoadCork: true, LoadSteel: true,
	LoadWood: true, LoadBeer: true, LoadCars: true, LoadMachinery: true,
	LoadTextiles: true, LoadCheese: true, LoadChemicals: true, LoadHops: true,
}

// Valid reports whether l is a recognized load type.
func (l LoadType) Valid() bool {
	return allLoadTypes[l]
}

// LoadState tracks the global supply of one load type: how many tokens
// exist, how many are currently sitting at producing cities (available),
// and which cities produce it. Invariant (spec.md §8.3): available plus
// tokens currently on any train always equals total.
type LoadState struct {
	Type            LoadType
	Total           int
	Available       int
	ProducingCities []string
}

// DroppedLoad is a load token left at a city by a player who picked it up
// elsewhere and cannot yet use it (tracked per city, separate from the
// global available pool per spec.md §4.7).
type DroppedLoad struct {
	City string
	Type LoadType
}
