package value

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrUnits reports a units configuration or conversion that cannot be made.
var ErrUnits = errors.New("value: unsupported units")

// Relationship states that one From unit equals Factor To units. Factor is
// decimal text so that conversions stay exact.
type Relationship struct {
	From   string
	To     string
	Factor string
}

// UnitSystem is a set of unit labels with the conversions between them.
// The first label is the default.
type UnitSystem struct {
	name      string
	labels    []string
	factors   map[string]map[string]*big.Rat
	supported *Type
}

// BuildUnits returns the unit system named name. Each relationship adds a
// multiplying conversion from From to To and the dividing conversion back.
// Labels are supported in order of appearance, except that def, when not
// empty, comes first.
func BuildUnits(name string, rels []Relationship, def string) (*UnitSystem, error) {
	s := &UnitSystem{name: name, factors: map[string]map[string]*big.Rat{}}
	add := func(label string) {
		if _, ok := s.factors[label]; !ok {
			s.factors[label] = map[string]*big.Rat{}
			s.labels = append(s.labels, label)
		}
	}
	for _, rel := range rels {
		f, ok := new(big.Rat).SetString(rel.Factor)
		if !ok || f.Sign() == 0 {
			return nil, fmt.Errorf("%w: %s: bad factor %q for %s to %s", ErrUnits, name, rel.Factor, rel.From, rel.To)
		}
		add(rel.From)
		add(rel.To)
		s.factors[rel.From][rel.To] = f
		s.factors[rel.To][rel.From] = new(big.Rat).Inv(f)
	}
	if def != "" {
		i := indexOf(s.labels, def)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s: default %s", ErrUnits, name, def)
		}
		s.labels = append([]string{def}, append(s.labels[:i:i], s.labels[i+1:]...)...)
	}
	s.supported = Enum(labelValues(s.labels))
	return s, nil
}

// MustBuildUnits is BuildUnits for package-level systems.
func MustBuildUnits(name string, rels []Relationship, def string) *UnitSystem {
	s, err := BuildUnits(name, rels, def)
	if err != nil {
		panic(err)
	}
	return s
}

// Some basic unit systems.
var (
	Weight = MustBuildUnits("weight", []Relationship{
		{"kg", "lb", "2.20462"},
	}, "kg")
	Energy = MustBuildUnits("energy", []Relationship{
		{"kcal", "J", "4190"},
		{"kWh", "J", "3600000"},
	}, "J")
)

func (s *UnitSystem) Name() string { return s.name }

// Labels returns the supported labels, default first.
func (s *UnitSystem) Labels() []string { return append([]string(nil), s.labels...) }

// Supported returns the Enum of supported labels.
func (s *UnitSystem) Supported() *Type { return s.supported }

// UnitsOption configures Units.
type UnitsOption func(*Units)

// Only restricts the usable labels, in the order given.
func Only(labels ...string) UnitsOption {
	return func(u *Units) { u.labels = append([]string(nil), labels...) }
}

// DefaultUnits sets the label used when a conversion names none.
func DefaultUnits(label string) UnitsOption { return func(u *Units) { u.def = label } }

// RoundTo rounds converted values to ndigits decimal places, halves to even.
func RoundTo(ndigits int) UnitsOption {
	return func(u *Units) { u.ndigits = ndigits; u.round = true }
}

// Units converts values between the labels of a UnitSystem.
type Units struct {
	system  *UnitSystem
	labels  []string
	def     string
	units   *Type
	ndigits int
	round   bool
}

// Units returns a converter over s. Restricting the labels with Only
// without keeping the system default requires DefaultUnits.
func (s *UnitSystem) Units(opts ...UnitsOption) (*Units, error) {
	u := &Units{system: s}
	for _, opt := range opts {
		opt(u)
	}
	if u.labels == nil {
		u.labels = s.Labels()
	} else {
		for _, l := range u.labels {
			if indexOf(s.labels, l) < 0 {
				return nil, fmt.Errorf("%w: %s: %s", ErrUnits, s.name, l)
			}
		}
		if u.def == "" && indexOf(u.labels, s.labels[0]) < 0 {
			return nil, fmt.Errorf("%w: %s: default units must be given with Only", ErrUnits, s.name)
		}
	}
	if len(u.labels) == 0 {
		return nil, fmt.Errorf("%w: %s: no units", ErrUnits, s.name)
	}
	if u.def == "" {
		u.def = u.labels[0]
	}
	if indexOf(u.labels, u.def) < 0 {
		return nil, fmt.Errorf("%w: %s: default %s", ErrUnits, s.name, u.def)
	}
	if u.round && u.ndigits < 0 {
		return nil, fmt.Errorf("%w: %s: negative rounding %d", ErrUnits, s.name, u.ndigits)
	}
	u.units = Enum(labelValues(u.labels))
	return u, nil
}

// Labels returns the usable labels.
func (u *Units) Labels() []string { return append([]string(nil), u.labels...) }

// Default returns the default label.
func (u *Units) Default() string { return u.def }

// Convert converts v from one label to another. An empty label means the
// default. The result is exact unless rounding is configured.
func (u *Units) Convert(v any, from, to string) (*big.Rat, error) {
	r, ok := ToRat(v)
	if !ok {
		return nil, Mismatch(v, "not a number")
	}
	from, err := u.label(from)
	if err != nil {
		return nil, err
	}
	to, err = u.label(to)
	if err != nil {
		return nil, err
	}
	if from != to {
		f, ok := u.system.factors[from][to]
		if !ok {
			return nil, fmt.Errorf("%w: %s: no conversion from %s to %s", ErrUnits, u.system.name, from, to)
		}
		r.Mul(r, f)
	}
	if u.round {
		r = roundHalfEven(r, u.ndigits)
	}
	return r, nil
}

func (u *Units) label(l string) (string, error) {
	if l == "" {
		return u.def, nil
	}
	if _, err := u.units.Call(l); err != nil {
		return "", err
	}
	return l, nil
}

func roundHalfEven(r *big.Rat, ndigits int) *big.Rat {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(ndigits)), nil)
	x := new(big.Rat).Mul(r, new(big.Rat).SetInt(scale))
	q, m := new(big.Int).QuoRem(new(big.Int).Abs(x.Num()), x.Denom(), new(big.Int))
	half := new(big.Int).Lsh(m, 1).Cmp(x.Denom())
	if half > 0 || (half == 0 && q.Bit(0) == 1) {
		q.Add(q, big.NewInt(1))
	}
	if x.Sign() < 0 {
		q.Neg(q)
	}
	return new(big.Rat).SetFrac(q, scale)
}

func labelValues(labels []string) []any {
	out := make([]any, len(labels))
	for i, l := range labels {
		out[i] = l
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
