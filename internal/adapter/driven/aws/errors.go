package aws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aws/smithy-go"

	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

var authErrorCodes = map[string]bool{
	"AccessDenied":                true,
	"AccessDeniedException":       true,
	"AuthFailure":                 true,
	"ExpiredToken":                true,
	"ExpiredTokenException":       true,
	"IncompleteSignature":         true,
	"InvalidAccessKeyId":          true,
	"InvalidClientTokenId":        true,
	"InvalidSignatureException":   true,
	"MissingAuthenticationToken":  true,
	"SignatureDoesNotMatch":       true,
	"UnauthorizedOperation":       true,
	"UnrecognizedClientException": true,
}

var throttleErrorCodes = map[string]bool{
	"RequestLimitExceeded":                   true,
	"SlowDown":                               true,
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"TooManyRequestsException":               true,
	"ProvisionedThroughputExceededException": true,
}

var transientErrorCodes = map[string]bool{
	"InternalError":               true,
	"InternalFailure":             true,
	"InternalServerError":         true,
	"RequestTimeout":              true,
	"RequestTimeoutException":     true,
	"ServiceUnavailable":          true,
	"ServiceUnavailableException": true,
}

var invalidRequestErrorCodes = map[string]bool{
	"DBInstanceNotFound":          true,
	"DBInstanceNotFoundFault":     true,
	"InvalidParameterCombination": true,
	"InvalidParameterException":   true,
	"InvalidParameterValue":       true,
	"NoSuchBucket":                true,
	"ResourceNotFoundException":   true,
	"ValidationException":         true,
}

// classifyAWSError traduz erros do SDK para a taxonomia de internal/shared/types.
// Ordem: código smithy, status HTTP, erros de rede. O resto volta só com contexto.
func classifyAWSError(service string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case authErrorCodes[code]:
			return &types.AuthorizationError{Component: service, Err: err}
		case throttleErrorCodes[code]:
			return &types.RateLimitError{Component: service, Err: err}
		case transientErrorCodes[code]:
			return &types.TransientNetworkError{Component: service, Err: err}
		case invalidRequestErrorCodes[code]:
			return &types.InvalidRequestError{Component: service, Err: err}
		}
	}

	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		if classified := classifyStatus(service, statusErr.HTTPStatusCode(), err); classified != nil {
			return classified
		}
	}

	if apiErr != nil && apiErr.ErrorFault() == smithy.FaultServer {
		return &types.TransientNetworkError{Component: service, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &types.TransientNetworkError{Component: service, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &types.TransientNetworkError{Component: service, Err: err}
	}

	return fmt.Errorf("%s: %w", service, err)
}

func classifyStatus(service string, status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &types.AuthorizationError{Component: service, Err: err}
	case status == http.StatusTooManyRequests:
		return &types.RateLimitError{Component: service, Err: err}
	case status == http.StatusRequestTimeout || status >= 500:
		return &types.TransientNetworkError{Component: service, Err: err}
	case status >= 400:
		return &types.InvalidRequestError{Component: service, Err: err}
	}
	return nil
}
