package fish

type WeightClass int

const (
	WeightTiny WeightClass = iota
	WeightSmall
	WeightAverage
	WeightBig
	WeightHuge
	WeightEnormous
)

func (c WeightClass) String() string {
	switch c {
	case WeightTiny:
		return "tiny"
	case WeightSmall:
		return "modest"
	case WeightAverage:
		return "average"
	case WeightBig:
		return "big"
	case WeightHuge:
		return "huge"
	default:
		return "enormous"
	}
}

// WeightPercentile places weight within the uniform range of its species table.
func WeightPercentile(sp Species, weight int) float64 {
	if sp.MaxWeight <= sp.MinWeight {
		return 0
	}

	x := float64(weight-sp.MinWeight) / float64(sp.MaxWeight-sp.MinWeight)
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	return x
}

func ClassFromPercentile(p float64) WeightClass {
	switch {
	case p < 0.08:
		return WeightTiny
	case p < 0.25:
		return WeightSmall
	case p < 0.70:
		return WeightAverage
	case p < 0.90:
		return WeightBig
	case p < 0.97:
		return WeightHuge
	default:
		return WeightEnormous
	}
}

func (r *Registry) ClassOf(f Fish) WeightClass {
	return ClassFromPercentile(WeightPercentile(r.Get(f.Rarity), f.Weight))
}
