package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFunctions(t *testing.T) {
	fr := DefaultFunctions()
	assert.Equal(t,
		[]string{"abs", "cor", "cos", "exp", "ln", "max", "mean", "min", "pow", "sin", "std", "sum", "tan"},
		fr.Names())
	assert.True(t, fr.Has("sum"))
	assert.False(t, fr.Has("SUM"))

	var nilRegistry *FunctionRegistry
	assert.False(t, nilRegistry.Has("sum"))
}

func TestParamLimits(t *testing.T) {
	matrix := Matrix{{1, 2}}
	cases := []struct {
		name   string
		limits []ParamLimit
		args   []Value
		want   any
	}{
		{"scalar ok", []ParamLimit{LimitScalar, LimitEnd}, []Value{Scalar(1)}, nil},
		{"scalar missing", []ParamLimit{LimitScalar}, nil, &NotEnoughParametersError{}},
		{"scalar given matrix", []ParamLimit{LimitScalar}, []Value{matrix}, &ParameterTypeError{}},
		{"matrix given scalar", []ParamLimit{LimitMatrix}, []Value{Scalar(1)}, &ParameterTypeError{}},
		{"any takes both", []ParamLimit{LimitAny, LimitAny, LimitEnd}, []Value{Scalar(1), matrix}, nil},
		{"scalars rest", []ParamLimit{LimitScalars}, []Value{Scalar(1), Scalar(2), matrix}, &ParameterTypeError{}},
		{"matrices rest", []ParamLimit{LimitMatrices}, []Value{matrix, matrix}, nil},
		{"rest may be empty", []ParamLimit{LimitScalar, LimitAnyRest}, []Value{Scalar(1)}, nil},
		{"end rejects extras", []ParamLimit{LimitScalar, LimitEnd}, []Value{Scalar(1), Scalar(2)}, &ExtraParametersError{}},
		{"no limits accept anything", nil, []Value{matrix, Scalar(3)}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fr := NewFunctionRegistry()
			require.NoError(t, fr.Register("f", func([]Value) (float64, error) { return 1, nil }, tc.limits...))

			_, err := fr.Call("f", tc.args)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.IsType(t, tc.want, err)
		})
	}
}

func TestRegister(t *testing.T) {
	fr := NewFunctionRegistry()
	double := func(args []Value) (float64, error) { return 2 * float64(args[0].(Scalar)), nil }
	require.NoError(t, fr.Register("double_it2", double, LimitScalar, LimitEnd))

	err := fr.Register("double_it2", double)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, AlreadyExists, appErr.Code)

	for _, name := range []string{"", "Double", "2x", "_x", "a-b"} {
		err := fr.Register(name, double)
		require.ErrorAs(t, err, &appErr, name)
		assert.Equal(t, InvalidArgument, appErr.Code, name)
	}

	sheet, err := NewSheet(2, 2, WithFunctions(fr))
	require.NoError(t, err)
	require.NoError(t, sheet.Set("A1", "=double_it2(4)+1"))
	display, err := sheet.Get("A1")
	require.NoError(t, err)
	assert.Equal(t, "9", display)

	// only the registered functions exist
	require.NoError(t, sheet.Set("A2", "=sum(1)"))
	display, err = sheet.Get("A2")
	require.NoError(t, err)
	assert.Equal(t, "invalid function name: sum", display)
}

func TestCallUnknown(t *testing.T) {
	_, err := DefaultFunctions().Call("nope", nil)
	assert.Equal(t, ErrorCodeName, CodeOf(err))
}
