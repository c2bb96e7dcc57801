package valuesource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Literal(t *testing.T) {
	keys, err := Resolve(Literal{Value: "Common.submit"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Common.submit"}, keys)
}

func TestResolve_TemplateOverStringArray(t *testing.T) {
	src := Template{
		Prefix: "ns.",
		Inner:  StringArrayElement{ArrayName: "KEYS", Candidates: []string{"a", "b"}},
	}
	keys, err := Resolve(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns.a", "ns.b"}, keys)
}

func TestResolve_NestedConditionalTemplates(t *testing.T) {
	inner := StringArrayElement{ArrayName: "KINDS", Candidates: []string{"a", "b"}}
	src := Conditional{
		Consequent: Template{Suffix: ".plural", Inner: inner},
		Alternate:  Template{Suffix: ".singular", Inner: inner},
	}

	keys, err := Resolve(src)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.plural", "b.plural", "a.singular", "b.singular"}, keys)
	assert.Len(t, keys, 4)
}

func TestResolve_ConditionalAllOrNothing(t *testing.T) {
	ok := Literal{Value: "a"}
	badVar := Unknown(UnknownVariable, "x")
	badObj := Unknown(UnknownObject, "OBJ")

	testCases := []struct {
		name     string
		src      Conditional
		wantErr  bool
		wantKind ReasonKind
	}{
		{"both resolve", Conditional{ok, Literal{Value: "b"}}, false, 0},
		{"consequent fails", Conditional{badVar, ok}, true, UnknownVariable},
		{"alternate fails", Conditional{ok, badObj}, true, UnknownObject},
		{"both fail reports consequent", Conditional{badObj, badVar}, true, UnknownObject},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			keys, err := Resolve(tc.src)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b"}, keys)
				return
			}
			assert.Nil(t, keys)
			var reason *Reason
			require.True(t, errors.As(err, &reason))
			assert.Equal(t, tc.wantKind, reason.Kind)
		})
	}
}

func TestResolve_TemplatePropagatesInnerError(t *testing.T) {
	_, err := Resolve(Template{Prefix: "a.", Inner: Complex(2)})
	var reason *Reason
	require.True(t, errors.As(err, &reason))
	assert.Equal(t, ComplexTemplate, reason.Kind)
	assert.Equal(t, "complex template with 2 expressions", err.Error())
}

func TestResolve_AccessVariantsReturnCandidates(t *testing.T) {
	for _, src := range []Source{
		ObjectAccess{ObjectName: "o", Candidates: []string{"x", "y", "x"}},
		ArrayIteration{ArrayName: "a", PropertyName: "p", Candidates: []string{"x", "y"}},
		StringArrayElement{ArrayName: "s", Candidates: []string{"x", "y"}},
	} {
		keys, err := Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, keys, Describe(src))
	}
}

func TestResolve_DoesNotMutateCandidates(t *testing.T) {
	candidates := []string{"x", "x", "y"}
	_, err := Resolve(ObjectAccess{ObjectName: "o", Candidates: candidates})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x", "y"}, candidates)
}

func TestResolve_DepthCap(t *testing.T) {
	var src Source = Literal{Value: "k"}
	for i := 0; i < MaxDepth+5; i++ {
		src = Template{Prefix: "p", Inner: src}
	}
	_, err := Resolve(src)
	var reason *Reason
	require.True(t, errors.As(err, &reason))
	assert.Equal(t, UnsupportedExpression, reason.Kind)
}

func TestResolve_NilSource(t *testing.T) {
	_, err := Resolve(nil)
	assert.Error(t, err)
}

func TestStaticKeys(t *testing.T) {
	keys, ok := StaticKeys(Conditional{
		Consequent: Literal{Value: "a"},
		Alternate:  Conditional{Consequent: Literal{Value: "b"}, Alternate: Literal{Value: "a"}},
	})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, keys)

	_, ok = StaticKeys(Template{Prefix: "a.", Inner: Literal{Value: "b"}})
	assert.False(t, ok, "templates are dynamic even when resolvable")

	_, ok = StaticKeys(Conditional{Consequent: Literal{Value: "a"}, Alternate: ObjectAccess{ObjectName: "o", Candidates: []string{"b"}}})
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `literal "k"`, Describe(Literal{Value: "k"}))
	assert.Equal(t, `array "CAPS.titleKey"`, Describe(ArrayIteration{ArrayName: "CAPS", PropertyName: "titleKey"}))
	assert.Equal(t, `unknown variable "key"`, Describe(Unknown(UnknownVariable, "key")))
	assert.Equal(t, "unsupported expression: call_expression", Describe(Unsupported("call_expression")))
}

func TestHasTemplate(t *testing.T) {
	assert.True(t, HasTemplate(Template{Inner: Literal{}}))
	assert.True(t, HasTemplate(Conditional{Consequent: Literal{}, Alternate: Template{Inner: Literal{}}}))
	assert.False(t, HasTemplate(Conditional{Consequent: Literal{}, Alternate: Literal{}}))
}
