package formula

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Clock interface provides time functionality for testing
type Clock interface {
	Now() time.Time
}

// WallClock is the default implementation using system time
type WallClock struct{}

func (w *WallClock) Now() time.Time {
	return time.Now()
}

// dateLayout is the format DATE returns, e.g.
// "Fri Oct 16 2026 09:30:00 GMT+0200 (CEST)"
const dateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Function identifies one of the built-in functions. the set is fixed.
type Function uint8

const (
	FunctionSUM Function = iota + 1
	FunctionAVERAGE
	FunctionLEN
	FunctionMAX
	FunctionMIN
	FunctionCONCATENATE
	FunctionDATE
	FunctionTIMESTAMP
)

var functionNames = map[Function]string{
	FunctionSUM:         "SUM",
	FunctionAVERAGE:     "AVERAGE",
	FunctionLEN:         "LEN",
	FunctionMAX:         "MAX",
	FunctionMIN:         "MIN",
	FunctionCONCATENATE: "CONCATENATE",
	FunctionDATE:        "DATE",
	FunctionTIMESTAMP:   "TIMESTAMP",
}

var functionsByName = func() map[string]Function {
	byName := make(map[string]Function, len(functionNames))
	for fn, name := range functionNames {
		byName[name] = fn
	}
	return byName
}()

func (f Function) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Function(%d)", uint8(f))
}

// LookupFunction finds a built-in function by name, ignoring case
func LookupFunction(name string) (Function, bool) {
	fn, ok := functionsByName[strings.ToUpper(name)]
	return fn, ok
}

// FunctionNames lists the names of all built-in functions
func FunctionNames() []string {
	names := make([]string, 0, len(functionNames))
	for fn := FunctionSUM; fn <= FunctionTIMESTAMP; fn++ {
		names = append(names, fn.String())
	}
	return names
}

// isIdentifier reports whether the function takes no arguments and may be
// written as a bare name, e.g. =DATE
func (f Function) isIdentifier() bool {
	return f == FunctionDATE || f == FunctionTIMESTAMP
}

// lookupIdentifierFunction matches bare names exactly, so that lowercase
// names stay free identifiers
func lookupIdentifierFunction(name string) (Function, bool) {
	fn, ok := functionsByName[name]
	return fn, ok && fn.isIdentifier()
}

// arity returns the allowed number of arguments as written in the call,
// before ranges are expanded. max < 0 means no upper bound.
func (f Function) arity() (min, max int) {
	switch f {
	case FunctionLEN:
		return 1, 1
	case FunctionDATE, FunctionTIMESTAMP:
		return 0, 0
	default:
		return 1, -1
	}
}

// Constant identifies a named numeric constant
type Constant uint8

const (
	ConstantPI Constant = iota + 1
	ConstantE
)

var constantsByName = map[string]Constant{
	"PI": ConstantPI,
	"E":  ConstantE,
}

// LookupConstant finds a constant by its exact name
func LookupConstant(name string) (Constant, bool) {
	c, ok := constantsByName[name]
	return c, ok
}

// Value returns the numeric value of the constant
func (c Constant) Value() float64 {
	switch c {
	case ConstantPI:
		return math.Pi
	case ConstantE:
		return math.E
	}
	return math.NaN()
}

// argumentEvaluator evaluates call arguments, expanding ranges in place
type argumentEvaluator interface {
	evaluateArgs(args []Node) ([]Primitive, error)
}

// BuiltInFunctions contains all built-in functions
type BuiltInFunctions struct {
	clock Clock
}

// NewDefaultBuiltInFunctions creates a BuiltInFunctions reading the
// system clock
func NewDefaultBuiltInFunctions() *BuiltInFunctions {
	return NewBuiltInFunctions(&WallClock{})
}

// NewBuiltInFunctions creates a BuiltInFunctions with the given clock
func NewBuiltInFunctions(clock Clock) *BuiltInFunctions {
	if clock == nil {
		clock = &WallClock{}
	}
	return &BuiltInFunctions{clock: clock}
}

// Validate checks the number of arguments written in a call to fn, then
// evaluates them into a flat list with every range expanded
func (bf *BuiltInFunctions) Validate(fn Function, args []Node, eval argumentEvaluator) ([]Primitive, error) {
	minArgs, maxArgs := fn.arity()

	switch {
	case maxArgs == 0 && len(args) > 0:
		return nil, NewRuntimeError(KindArgumentCount, "%s takes no arguments, got %d", fn, len(args))
	case minArgs == maxArgs && len(args) != minArgs:
		return nil, NewRuntimeError(KindArgumentCount, "%s expects exactly %d argument, got %d", fn, minArgs, len(args))
	case len(args) < minArgs:
		return nil, NewRuntimeError(KindArgumentCount, "%s expects at least %d argument, got %d", fn, minArgs, len(args))
	case maxArgs >= 0 && len(args) > maxArgs:
		return nil, NewRuntimeError(KindArgumentCount, "%s expects at most %d arguments, got %d", fn, maxArgs, len(args))
	}

	if len(args) == 0 {
		return nil, nil
	}
	return eval.evaluateArgs(args)
}

// Call invokes a built-in function on already evaluated arguments
func (bf *BuiltInFunctions) Call(fn Function, args ...Primitive) (Primitive, error) {
	switch fn {
	case FunctionSUM:
		return bf.SUM(args...)
	case FunctionAVERAGE:
		return bf.AVERAGE(args...)
	case FunctionLEN:
		return bf.LEN(args...)
	case FunctionMAX:
		return bf.MAX(args...)
	case FunctionMIN:
		return bf.MIN(args...)
	case FunctionCONCATENATE:
		return bf.CONCATENATE(args...)
	case FunctionDATE:
		return bf.DATE(args...)
	case FunctionTIMESTAMP:
		return bf.TIMESTAMP(args...)
	default:
		return nil, NewRuntimeError(KindUnknownFunction, "unknown function %s", fn)
	}
}

// numbers checks that every argument is a number
func numbers(fn Function, args []Primitive) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, arg := range args {
		num, ok := arg.(float64)
		if !ok {
			return nil, NewRuntimeError(KindTypeMismatch, "%s expected a number, got %s %q", fn, typeName(arg), FormatPrimitive(arg))
		}
		nums[i] = num
	}
	return nums, nil
}

func (bf *BuiltInFunctions) SUM(args ...Primitive) (Primitive, error) {
	nums, err := numbers(FunctionSUM, args)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for _, num := range nums {
		sum += num
	}
	return sum, nil
}

func (bf *BuiltInFunctions) AVERAGE(args ...Primitive) (Primitive, error) {
	nums, err := numbers(FunctionAVERAGE, args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, NewRuntimeError(KindArgumentCount, "AVERAGE expects at least 1 value")
	}
	sum := 0.0
	for _, num := range nums {
		sum += num
	}
	return sum / float64(len(nums)), nil
}

// LEN adds up the length of every string it is given, so LEN(A1:A3) is
// the total length of the three cells
func (bf *BuiltInFunctions) LEN(args ...Primitive) (Primitive, error) {
	total := 0
	for _, arg := range args {
		s, ok := arg.(string)
		if !ok {
			return nil, NewRuntimeError(KindTypeMismatch, "LEN expects a string, got %s %q", typeName(arg), FormatPrimitive(arg))
		}
		total += utf8.RuneCountInString(s)
	}
	return float64(total), nil
}

func (bf *BuiltInFunctions) MAX(args ...Primitive) (Primitive, error) {
	nums, err := numbers(FunctionMAX, args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, NewRuntimeError(KindArgumentCount, "MAX expects at least 1 value")
	}
	result := nums[0]
	for _, num := range nums[1:] {
		result = math.Max(result, num)
	}
	return result, nil
}

func (bf *BuiltInFunctions) MIN(args ...Primitive) (Primitive, error) {
	nums, err := numbers(FunctionMIN, args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, NewRuntimeError(KindArgumentCount, "MIN expects at least 1 value")
	}
	result := nums[0]
	for _, num := range nums[1:] {
		result = math.Min(result, num)
	}
	return result, nil
}

// CONCATENATE joins its arguments. numbers are joined in their display
// form
func (bf *BuiltInFunctions) CONCATENATE(args ...Primitive) (Primitive, error) {
	var result strings.Builder
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			result.WriteString(v)
		case float64:
			result.WriteString(FormatNumber(v))
		default:
			return nil, NewRuntimeError(KindTypeMismatch, "CONCATENATE cannot join %s", typeName(arg))
		}
	}
	return result.String(), nil
}

func (bf *BuiltInFunctions) DATE(args ...Primitive) (Primitive, error) {
	if len(args) != 0 {
		return nil, NewRuntimeError(KindArgumentCount, "DATE takes no arguments, got %d", len(args))
	}
	return bf.clock.Now().Format(dateLayout), nil
}

// TIMESTAMP returns milliseconds since the Unix epoch
func (bf *BuiltInFunctions) TIMESTAMP(args ...Primitive) (Primitive, error) {
	if len(args) != 0 {
		return nil, NewRuntimeError(KindArgumentCount, "TIMESTAMP takes no arguments, got %d", len(args))
	}
	return float64(bf.clock.Now().UnixMilli()), nil
}
