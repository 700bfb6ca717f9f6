package solbc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// JSON-RPC codes that no retry can fix.
var permanentRPCCodes = map[int]bool{
	-32600: true, // invalid request
	-32601: true, // method not found
	-32602: true, // invalid params
}

// IsRetryable reports whether err is worth another RPC attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return false
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return !permanentRPCCodes[rpcErr.Code]
	}
	return true
}

// AnchorError is the failure reason an Anchor program logs before aborting.
type AnchorError struct {
	Code int
	Name string
	Msg  string
}

func (e AnchorError) String() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// ParseAnchorError finds the first "AnchorError occurred" line in logs.
// Example: "Program log: AnchorError occurred. Error Code: TooMuchSolRequired. Error Number: 6002. Error Message: slippage: Too much SOL required to buy the given amount of tokens."
func ParseAnchorError(logs []string) (AnchorError, bool) {
	for _, line := range logs {
		if strings.Contains(line, "AnchorError") {
			return parseAnchorErrorLog(line), true
		}
	}
	return AnchorError{}, false
}

func parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if _, rest, ok := strings.Cut(logStr, "Error Number:"); ok {
		num, _, _ := strings.Cut(rest, ".")
		fmt.Sscanf(strings.TrimSpace(num), "%d", &result.Code)
	}

	if _, rest, ok := strings.Cut(logStr, "Error Code:"); ok {
		name, _, _ := strings.Cut(rest, ".")
		result.Name = strings.TrimSpace(name)
	}

	if _, rest, ok := strings.Cut(logStr, "Error Message:"); ok {
		result.Msg = strings.TrimSuffix(strings.TrimSpace(rest), ".")
	}

	return result
}
