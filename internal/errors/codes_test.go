package errors

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// CodesTestSuite defines the test suite for error codes
type CodesTestSuite struct {
	suite.Suite
}

// TestCodesTestSuite runs the test suite
func TestCodesTestSuite(t *testing.T) {
	suite.Run(t, new(CodesTestSuite))
}

// TestGetErrorMessage_ValidCode tests getting message for valid error codes
func (s *CodesTestSuite) TestGetErrorMessage_ValidCode() {
	testCases := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		{
			name:     "Auth Missing Token",
			code:     AuthMissingToken,
			expected: "Authorization token is required",
		},
		{
			name:     "Validation General",
			code:     ValidationGeneral,
			expected: "Validation failed",
		},
		{
			name:     "Match Timeout",
			code:     MatchTimeout,
			expected: "Matching timed out before completing",
		},
		{
			name:     "Match Unknown Algorithm",
			code:     MatchUnknownAlgorithm,
			expected: "Unknown similarity algorithm",
		},
		{
			name:     "Pattern Not Found",
			code:     PatternNotFound,
			expected: "Category pattern not found",
		},
		{
			name:     "Merchant Already Exists",
			code:     MerchantAlreadyExists,
			expected: "A merchant with this name already exists",
		},
		{
			name:     "System Internal Error",
			code:     SystemInternalError,
			expected: "An unexpected error occurred. Please contact support with trace ID",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			message := GetErrorMessage(tc.code)
			s.Equal(tc.expected, message)
		})
	}
}

// TestGetErrorMessage_UnknownCode tests the fallback message
func (s *CodesTestSuite) TestGetErrorMessage_UnknownCode() {
	message := GetErrorMessage(ErrorCode("NOT_A_CODE_999"))
	s.Equal("An error occurred", message)
}

// TestIsValidErrorCode tests error code registration checks
func (s *CodesTestSuite) TestIsValidErrorCode() {
	s.True(IsValidErrorCode(MatchTimeout))
	s.True(IsValidErrorCode(PatternInvalidWeight))
	s.True(IsValidErrorCode(SystemRateLimitExceeded))
	s.False(IsValidErrorCode(ErrorCode("NOT_A_CODE_999")))
	s.False(IsValidErrorCode(ErrorCode("")))
}

// TestErrorCodeFamilies tests that every registered code carries its family prefix
func (s *CodesTestSuite) TestErrorCodeFamilies() {
	families := map[ErrorCode]string{
		AuthMissingToken:    "AUTH_",
		ValidationGeneral:   "VALIDATION_",
		MatchTimeout:        "MATCH_",
		PatternNotFound:     "PATTERN_",
		MerchantNotFound:    "MERCHANT_",
		CategoryNotFound:    "CATEGORY_",
		SystemInternalError: "SYSTEM_",
	}

	for code, prefix := range families {
		s.Contains(string(code), prefix)
	}
}
