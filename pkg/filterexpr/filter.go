package filterexpr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Msg wraps request DTOs that expose filter and order_by raw inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the type a filter variable is declared with.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindInt       ValueKind = "int"
	KindNumber    ValueKind = "number"
	KindBool      ValueKind = "bool"
	KindTimestamp ValueKind = "timestamp"
)

// Schema declares the variables a filter expression may reference.
type Schema struct {
	Fields map[string]ValueKind
}

// Filter is a compiled boolean expression. The zero value and a nil *Filter
// match everything.
type Filter struct {
	source string
	prg    cel.Program
}

// Compile parses and type-checks raw against schema. An empty expression
// compiles to a filter that matches everything.
func Compile(raw string, schema Schema) (*Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &Filter{}, nil
	}
	if len(schema.Fields) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(schema.Fields)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(raw)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must be a boolean expression, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}
	return &Filter{source: raw, prg: prg}, nil
}

// String returns the expression the filter was compiled from.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the filter against vars. Every variable declared in the
// schema must be present.
func (f *Filter) Match(vars map[string]any) (bool, error) {
	if f == nil || f.prg == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	matched, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter returned %s, want bool", out.Type())
	}
	return bool(matched), nil
}

func buildEnv(fields map[string]ValueKind) (*cel.Env, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for _, name := range names {
		celType, err := celTypeForKind(fields[name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeForKind(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindInt:
		return cel.IntType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindBool:
		return cel.BoolType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", kind)
	}
}

// Timestamp converts an optional time into a value a timestamp variable can
// hold. Absent times become the zero time so comparisons stay total.
func Timestamp(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
