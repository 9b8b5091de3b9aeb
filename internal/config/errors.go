package config

import "errors"

// ErrMissingRPCEndpoint indicates that the required ETH_RPC_URL variable is
// not set in the environment.
var ErrMissingRPCEndpoint = errors.New("missing ETH_RPC_URL environment variable")

// ErrInvalidNumber is returned for a numeric variable that does not parse or
// is out of range.
var ErrInvalidNumber = errors.New("invalid numeric environment variable")

// ErrInvalidLogFormat is returned when LOG_FORMAT is neither text nor json.
var ErrInvalidLogFormat = errors.New("LOG_FORMAT must be text or json")

// ErrInvalidRouterAddress is returned when ROUTER_ADDRESS is not a hex address.
var ErrInvalidRouterAddress = errors.New("invalid ROUTER_ADDRESS")
