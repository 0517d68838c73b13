// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package eventhub

import (
	"fmt"
	"strings"

	"github.com/hashicorp/evgen"
)

const (
	keyEndpoint            = "Endpoint"
	keySharedAccessKeyName = "SharedAccessKeyName"
	keySharedAccessKey     = "SharedAccessKey"
	keyEntityPath          = "EntityPath"

	endpointScheme = "sb://"
	endpointSuffix = ".servicebus.windows.net/"
)

// ConnectionString holds the parts of an Event Hubs namespace connection
// string used by the Writer.
type ConnectionString struct {
	// Endpoint is the namespace endpoint as configured, e.g.
	// "sb://example.servicebus.windows.net/".
	Endpoint string

	// Namespace is the Endpoint without its scheme and service suffix, e.g.
	// "example".
	Namespace string

	SharedAccessKeyName string
	SharedAccessKey     string

	// EntityPath is the event hub the connection string is scoped to, if any.
	EntityPath string
}

// ParseConnectionString parses a semicolon separated list of key=value pairs.
// Endpoint, SharedAccessKeyName and SharedAccessKey are required. Values may
// contain '=' and empty segments are ignored.
func ParseConnectionString(s string) (*ConnectionString, error) {
	const op = "eventhub.ParseConnectionString"
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%s: missing connection string: %w", op, evgen.ErrConfiguration)
	}

	pairs := map[string]string{}
	for _, segment := range strings.Split(s, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		k, v, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, fmt.Errorf("%s: segment %q is not a key=value pair: %w", op, segment, evgen.ErrConfiguration)
		}
		pairs[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	for _, k := range []string{keyEndpoint, keySharedAccessKeyName, keySharedAccessKey} {
		if pairs[k] == "" {
			return nil, fmt.Errorf("%s: missing %s: %w", op, k, evgen.ErrConfiguration)
		}
	}

	cs := &ConnectionString{
		Endpoint:            pairs[keyEndpoint],
		Namespace:           namespace(pairs[keyEndpoint]),
		SharedAccessKeyName: pairs[keySharedAccessKeyName],
		SharedAccessKey:     pairs[keySharedAccessKey],
		EntityPath:          pairs[keyEntityPath],
	}
	if cs.Namespace == "" {
		return nil, fmt.Errorf("%s: endpoint %q has no namespace: %w", op, cs.Endpoint, evgen.ErrConfiguration)
	}
	return cs, nil
}

func namespace(endpoint string) string {
	ns := strings.TrimPrefix(endpoint, endpointScheme)
	ns = strings.TrimSuffix(ns, endpointSuffix)
	return strings.TrimSuffix(ns, "/")
}

// String renders the connection string without its EntityPath, so that a
// client built from it can be scoped to any event hub in the namespace.
func (cs *ConnectionString) String() string {
	return fmt.Sprintf("%s=%s;%s=%s;%s=%s",
		keyEndpoint, cs.Endpoint,
		keySharedAccessKeyName, cs.SharedAccessKeyName,
		keySharedAccessKey, cs.SharedAccessKey,
	)
}
