// Package requester defines the producer workloads driven by the mqbench
// core: a synchronous ordered path, an asynchronous ordered path, and a
// synchronous unordered path. Each requester owns its producer session
// exclusively, dialing it in Setup and releasing it in Teardown.
package requester

import (
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/0902horn/mqbench/client"
)

// Message tags applied by the send paths.
const (
	TagSync  = "TagA"
	TagAsync = "TagB"
)

// OrderingGroups is the number of logical ordering partitions the FIFO
// paths cycle through.
const OrderingGroups = 10

// OrderingGroup returns the group for the i-th message of a FIFO burst.
// Groups cycle round-robin, so any burst of at least OrderingGroups
// messages touches every group.
func OrderingGroup(i uint64) string {
	return "message-group" + strconv.FormatUint(i%OrderingGroups, 10)
}

// UniqueKey returns the key for the i-th message of an unordered burst.
// Distinct indices always yield distinct keys.
func UniqueKey(i uint64) string {
	return "Key-" + strconv.FormatUint(i, 10)
}

// Connection holds the broker settings shared by every send path.
type Connection struct {
	Driver       string
	Endpoints    []string
	AccessKey    string
	AccessSecret string
	UseTLS       bool
	Namespace    string
}

func (c Connection) options(topics ...string) client.Options {
	return client.Options{
		Driver:      c.Driver,
		Endpoints:   c.Endpoints,
		Credentials: client.NewStaticCredentialsProvider(c.AccessKey, c.AccessSecret),
		UseTLS:      c.UseTLS,
		Topics:      topics,
		Namespace:   c.Namespace,
	}
}

func namedLogger(logger hclog.Logger, name string) hclog.Logger {
	if logger == nil {
		logger = hclog.Default()
	}
	return logger.Named(name)
}
