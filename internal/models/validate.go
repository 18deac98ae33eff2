package models

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError names the offending field of a rejected input.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks unit range, code vocabulary and day bounds.
func (w WindowInput) Validate() error {
	if err := structValidator().Struct(w); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &FieldError{Field: fe.Namespace(), Reason: describeTag(fe)}
		}
		return &FieldError{Field: "window", Reason: err.Error()}
	}
	if !IsMaintenanceCode(w.Code) {
		return &FieldError{Field: "maintenance", Reason: fmt.Sprintf("unknown maintenance code %q", w.Code)}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind().String() == "slice" {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s (got %v)", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s (got %v)", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}

const (
	// MaxParamCount bounds n_pop, n_gen, n_ants and n_iter.
	MaxParamCount = math.MaxInt32

	// MaxTimeSeconds bounds the fixed_time budget to one week.
	MaxTimeSeconds = 7 * 24 * 3600
)

// Validate enforces the field requirements of the method/mode combination:
//
//	genetic_algorithm: n_pop, plus n_gen under fixed_params
//	ant_colony:        n_ants, plus n_iter under fixed_params
//	fixed_time:        time, for either method
//
// Fields that the combination does not use are kept as given.
func (p OptimizerParams) Validate() error {
	switch p.Method {
	case MethodGeneticAlgorithm, MethodAntColony:
	default:
		return &FieldError{Field: "method", Reason: fmt.Sprintf("unknown method %q", p.Method)}
	}
	switch p.Mode {
	case ModeFixedParams, ModeFixedTime:
	default:
		return &FieldError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", p.Mode)}
	}

	if p.Method == MethodGeneticAlgorithm {
		if err := requirePositive("n_pop", p.Population); err != nil {
			return err
		}
		if p.Mode == ModeFixedParams {
			if err := requirePositive("n_gen", p.Generations); err != nil {
				return err
			}
		}
	}
	if p.Method == MethodAntColony {
		if err := requirePositive("n_ants", p.Ants); err != nil {
			return err
		}
		if p.Mode == ModeFixedParams {
			if err := requirePositive("n_iter", p.Iterations); err != nil {
				return err
			}
		}
	}
	if p.Mode == ModeFixedTime {
		if err := requirePositive("time", p.TimeSeconds); err != nil {
			return err
		}
	}

	optional := []struct {
		name string
		v    *int
	}{
		{"n_pop", p.Population}, {"n_gen", p.Generations}, {"n_ants", p.Ants},
		{"n_iter", p.Iterations}, {"time", p.TimeSeconds},
	}
	for _, f := range optional {
		if f.v != nil {
			if err := checkRange(f.name, *f.v); err != nil {
				return err
			}
		}
	}
	return nil
}

func requirePositive(field string, v *int) error {
	if v == nil {
		return &FieldError{Field: field, Reason: "is required for this method and mode"}
	}
	return checkRange(field, *v)
}

// checkRange keeps counts inside the INTEGER columns they are stored in, and
// time inside MaxTimeSeconds so the budget never overflows a time.Duration.
func checkRange(field string, v int) error {
	if v <= 0 {
		return &FieldError{Field: field, Reason: "must be positive"}
	}
	limit := MaxParamCount
	if field == "time" {
		limit = MaxTimeSeconds
	}
	if v > limit {
		return &FieldError{Field: field, Reason: fmt.Sprintf("must be at most %d", limit)}
	}
	return nil
}

// ParamsBuilder assembles OptimizerParams for a method/mode pair and checks
// the combination's required fields in Build.
type ParamsBuilder struct {
	p OptimizerParams
}

func NewParams(method Method, mode Mode) *ParamsBuilder {
	return &ParamsBuilder{p: OptimizerParams{Method: method, Mode: mode}}
}

func (b *ParamsBuilder) Population(n int) *ParamsBuilder {
	b.p.Population = &n
	return b
}

func (b *ParamsBuilder) Generations(n int) *ParamsBuilder {
	b.p.Generations = &n
	return b
}

func (b *ParamsBuilder) Ants(n int) *ParamsBuilder {
	b.p.Ants = &n
	return b
}

func (b *ParamsBuilder) Iterations(n int) *ParamsBuilder {
	b.p.Iterations = &n
	return b
}

func (b *ParamsBuilder) TimeSeconds(n int) *ParamsBuilder {
	b.p.TimeSeconds = &n
	return b
}

func (b *ParamsBuilder) Build() (OptimizerParams, error) {
	if err := b.p.Validate(); err != nil {
		return OptimizerParams{}, err
	}
	return b.p.Clone(), nil
}
