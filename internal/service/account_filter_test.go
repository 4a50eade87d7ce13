package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

func TestAllowDIDs(t *testing.T) {
	filter := AllowDIDs("did:plc:a", " did:plc:b ", "")

	assert.True(t, filter(model.AccountRef{DID: "did:plc:a"}))
	assert.True(t, filter(model.AccountRef{DID: "did:plc:b"}))
	assert.False(t, filter(model.AccountRef{DID: "did:plc:c"}))

	empty := AllowDIDs()
	assert.True(t, empty(model.AccountRef{DID: "did:plc:anything"}))
}

func TestJMESPathFilter(t *testing.T) {
	tests := []struct {
		name string
		expr string
		ref  model.AccountRef
		want bool
	}{
		{name: "empty expression admits", expr: " ", ref: model.AccountRef{DID: "did:plc:a"}, want: true},
		{name: "boolean field", expr: "active", ref: model.AccountRef{Active: true}, want: true},
		{name: "boolean field false", expr: "active", ref: model.AccountRef{Active: false}, want: false},
		{name: "equality", expr: "did == 'did:plc:a'", ref: model.AccountRef{DID: "did:plc:a"}, want: true},
		{name: "equality mismatch", expr: "did == 'did:plc:a'", ref: model.AccountRef{DID: "did:plc:b"}, want: false},
		{name: "function", expr: "starts_with(did, 'did:web:')", ref: model.AccountRef{DID: "did:web:example.com"}, want: true},
		{name: "empty string is falsy", expr: "rev", ref: model.AccountRef{Rev: ""}, want: false},
		{name: "non-empty string is truthy", expr: "rev", ref: model.AccountRef{Rev: "3l2abc"}, want: true},
		{name: "missing field is falsy", expr: "handle", ref: model.AccountRef{DID: "did:plc:a"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := JMESPathFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter(tt.ref))
		})
	}
}

func TestJMESPathFilter_CompileError(t *testing.T) {
	_, err := JMESPathFilter("did ==")
	assert.Error(t, err)
}

func TestNewAccountFilter_CombinesAllowListAndExpression(t *testing.T) {
	filter, err := NewAccountFilter([]string{"did:plc:a", "did:plc:b"}, "rev != 'skip'")
	require.NoError(t, err)

	assert.True(t, filter(model.AccountRef{DID: "did:plc:a", Rev: "r1"}))
	assert.False(t, filter(model.AccountRef{DID: "did:plc:b", Rev: "skip"}))
	assert.False(t, filter(model.AccountRef{DID: "did:plc:c", Rev: "r1"}))

	_, err = NewAccountFilter(nil, "[[")
	assert.Error(t, err)
}

func TestAllOf_IgnoresNilFilters(t *testing.T) {
	filter := AllOf(nil, AllowAll, nil)
	assert.True(t, filter(model.AccountRef{}))

	assert.True(t, AllOf()(model.AccountRef{}))
}
