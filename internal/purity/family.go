package purity

// Family is the one-level derivation tree of a metal: a base grade and the
// grades whose rates follow it.
type Family struct {
	Metal      Metal
	Base       Purity
	Dependents []Purity
}

var families = map[Metal]Family{
	Gold: {
		Metal: Gold,
		Base:  MustParse(Gold, "24K"),
		Dependents: []Purity{
			MustParse(Gold, "22K"),
			MustParse(Gold, "18K"),
			MustParse(Gold, "14K"),
			MustParse(Gold, "10K"),
			MustParse(Gold, "8K"),
		},
	},
	Silver: {
		Metal: Silver,
		Base:  MustParse(Silver, "999"),
		Dependents: []Purity{
			MustParse(Silver, "925"),
			MustParse(Silver, "900"),
			MustParse(Silver, "800"),
		},
	},
}

// FamilyOf returns the derivation family of m, if it has one.
func FamilyOf(m Metal) (Family, bool) {
	f, ok := families[m]
	return f, ok
}

// Families lists every metal that has a derivation family.
func Families() []Family {
	return []Family{families[Gold], families[Silver]}
}

// IsBase reports whether p is the base grade of its family.
func IsBase(p Purity) bool {
	f, ok := families[p.metal]
	return ok && f.Base.token == p.token
}

// BaseOf returns the base grade for a dependent grade.
func BaseOf(p Purity) (Purity, bool) {
	f, ok := families[p.metal]
	if !ok {
		return Purity{}, false
	}
	for _, d := range f.Dependents {
		if d.token == p.token {
			return f.Base, true
		}
	}
	return Purity{}, false
}
