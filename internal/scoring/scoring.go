// Package scoring holds the independent metric evaluators. Each evaluator
// is a pure, total function: it maps typed inputs plus a point budget to a
// MetricResult and degrades to a zero-point fail on missing data or zero
// denominators instead of returning an error. Evaluators never read shared
// state and never mutate their inputs, so repeated evaluation of identical
// inputs yields identical results.
package scoring

import "math"

// Context tags which questionnaire stage is invoking a direction- or
// stage-sensitive evaluator.
type Context string

const (
	ContextQ1 Context = "Q1"
	ContextQ2 Context = "Q2"
	ContextQ3 Context = "Q3"
	ContextQ4 Context = "Q4"
	ContextQ5 Context = "Q5"
)

// Direction is the trade direction a stage is probing for.
type Direction string

const (
	Buying  Direction = "buying"
	Selling Direction = "selling"
)

// round truncates x to the given number of decimal places for explanation
// payloads.
func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
