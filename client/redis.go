package client

import (
	"context"
	"time"

	"github.com/garyburd/redigo/redis"
)

// redisProducer publishes via Redis PUB/SUB. Connections come from a pool
// since a single redigo connection is not safe for concurrent use. TLS is
// not supported by this driver.
type redisProducer struct {
	pool *redis.Pool
}

func dialRedis(opts Options) (Producer, error) {
	endpoint := opts.Endpoints[0]
	var dialOpts []redis.DialOption
	if _, accessSecret := opts.accessPair(); accessSecret != "" {
		dialOpts = append(dialOpts, redis.DialPassword(accessSecret))
	}

	pool := &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", endpoint, dialOpts...)
		},
	}
	conn := pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		pool.Close()
		return nil, err
	}
	return &redisProducer{pool: pool}, nil
}

// SendSync publishes msg to its topic channel.
func (r *redisProducer) SendSync(_ context.Context, msg *Message) (*Receipt, error) {
	conn := r.pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PUBLISH", msg.Topic, msg.Body); err != nil {
		return nil, err
	}
	return &Receipt{}, nil
}

// Close closes the connection pool.
func (r *redisProducer) Close() error {
	return r.pool.Close()
}
