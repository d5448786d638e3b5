package value

import (
	"math/big"
	"reflect"
)

var numberOutcasts = []Outcast{
	{Type: reflect.TypeOf((*big.Rat)(nil)), Convert: func(v any) any {
		f, _ := v.(*big.Rat).Float64()
		return f
	}},
	{Type: reflect.TypeOf((*big.Float)(nil)), Convert: func(v any) any {
		f, _ := v.(*big.Float).Float64()
		return f
	}},
}
