package evaluator

import (
	"context"
	"math"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Math builtins:
// $abs/$floor/$ceil/$round(banker's rounding)/$sqrt/$power/$random.

func fnAbs(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	return math.Abs(n), nil
}

func fnFloor(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	return math.Floor(n), nil
}

func fnCeil(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	return math.Ceil(n), nil
}

// roundBankers rounds n to the given number of decimal places using
// round-half-to-even, the IEEE 754 / XPath fn:round-half-to-even rule
// JSONata's $round uses.
func roundBankers(n float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	scaled := n * scale
	floor := math.Floor(scaled)
	diff := scaled - floor
	const eps = 1e-9
	switch {
	case diff > 0.5+eps:
		floor++
	case diff < 0.5-eps:
		// stays at floor
	default:
		if math.Mod(floor, 2) != 0 {
			floor++
		}
	}
	return floor / scale
}

func fnRound(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	precision := 0
	if len(args) > 1 && args[1] != nil {
		p, err := toNumber(args[1])
		if err != nil {
			return nil, err
		}
		precision = int(p)
	}
	return roundBankers(n, precision), nil
}

func fnSqrt(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, types.NewError(types.ErrSqrtDomain, "the value of the argument to $sqrt must not be negative")
	}
	return math.Sqrt(n), nil
}

func fnPower(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	base, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	exp, err := toNumber(args[1])
	if err != nil {
		return nil, err
	}
	result := math.Pow(base, exp)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil, types.NewError(types.ErrPowerDomain, "the result of the power function is out of range")
	}
	return result, nil
}

// fnRandom draws from the per-top-level-evaluation seeded source (see
// builtins_datetime.go's snapshot): every $random() call within one
// Evaluate shares the stream seeded off that evaluation's $millis(), the
// wall-clock millisecond captured at its first use, so two evaluations
// draw the same sequence only if they capture the same millisecond.
func fnRandom(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	ts := env.snapshot()
	ts.randMu.Lock()
	defer ts.randMu.Unlock()
	return ts.randSrc.Float64(), nil
}
