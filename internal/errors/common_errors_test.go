package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "encoding error type", errType: ErrTypeEncoding, expected: "ENCODING"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "render error type", errType: ErrTypeRender, expected: "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("grade list is empty"),
			want: "[VALIDATION] grade list is empty",
		},
		{
			name: "with cause",
			err:  NewStorageError("failed to open workbook", fs.ErrNotExist),
			want: "[STORAGE] failed to open workbook: file does not exist",
		},
		{
			name: "not found",
			err:  NewNotFoundError("score file"),
			want: "[NOT_FOUND] score file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fs.ErrNotExist
	err := NewStorageError("failed to read", cause)

	assert.True(t, errors.Is(err, fs.ErrNotExist))

	wrapped := fmt.Errorf("loading scores: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad row"}
	err.WithContext("file", "grade3.csv").WithContext("row", 12)

	require.NotNil(t, err.Context)
	assert.Equal(t, "grade3.csv", err.Context["file"])
	assert.Equal(t, 12, err.Context["row"])
}

func TestIsType(t *testing.T) {
	inner := NewEncodingError("no encoding matched", nil)
	outer := NewParsingError("failed to load grade 3", inner)

	assert.True(t, IsType(outer, ErrTypeParsing))
	assert.True(t, IsType(outer, ErrTypeEncoding))
	assert.False(t, IsType(outer, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeParsing))
	assert.False(t, IsType(nil, ErrTypeParsing))
}
