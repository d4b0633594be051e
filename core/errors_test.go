package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Fee", "id", 3)
	assert.EqualError(t, err, "Fee not found with id: 3")
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(errors.Wrap(err, "retrieving fee")))
	assert.True(t, IsNotFound(NewValidationError(err)))
	assert.False(t, IsNotFound(errors.New("Fee not found with id: 3")))
	assert.False(t, IsNotFound(nil))
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "wrapped error",
			err:  NewValidationError(errors.New("Student with email a@b.cd already exists"), FieldError{Field: "email", Error: "taken"}),
			want: "Student with email a@b.cd already exists",
		},
		{
			name: "fields",
			err: NewValidationError(nil,
				FieldError{Field: "amount", Error: "amount is required"},
				FieldError{Field: "feeType", Error: "feeType is required"},
			),
			want: "amount: amount is required; feeType: feeType is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.err, tc.want)
		})
	}
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("integrity issue")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "saving fee")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}

func TestCheckOrdering(t *testing.T) {
	allowed := map[string]string{"id": "id", "lastName": "last_name"}

	assert.NoError(t, CheckOrdering(nil, allowed))
	assert.NoError(t, CheckOrdering([]DBOrdering{{Field: "lastName"}, {Field: "id", Ascending: true}}, allowed))
	assert.EqualError(t, CheckOrdering([]DBOrdering{{Field: "last_name"}}, allowed), `ordering: cannot order by "last_name"`)

	assert.Equal(t, "last_name DESC", DBOrdering{Field: "last_name"}.String())
	assert.Equal(t, "id ASC", DBOrdering{Field: "id", Ascending: true}.String())
}
