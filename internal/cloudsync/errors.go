package cloudsync

import (
	"context"
	"net"
	"strings"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/opensensor/stationd/internal/errors"
)

// awsNetworkCodes are SDK error codes that indicate connectivity
// problems rather than remote rejection.
var awsNetworkCodes = map[string]bool{
	"RequestError":    true,
	"RequestTimeout":  true,
	"RequestCanceled": true,
}

// isNetworkError classifies an error as network-class: these trip the
// offline flag instead of being treated as hard sync failures.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		if awsNetworkCodes[awsErr.Code()] {
			return true
		}
		if orig := awsErr.OrigErr(); orig != nil && orig != err {
			return isNetworkError(orig)
		}
	}

	// Last resort: classify by message shape, matching the behavior
	// relied on by long-running rural deployments.
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "network", "no such host", "timeout", "broken pipe"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
