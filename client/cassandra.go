package client

import (
	"context"

	"github.com/gocql/gocql"
)

const defaultCassandraKeyspace = "mqbench"

// cassandraProducer appends messages to a Cassandra table partitioned by
// (topic, group), giving a durable sink for producer benchmarks. The
// keyspace comes from Options.Namespace and must already exist.
type cassandraProducer struct {
	session *gocql.Session
}

func dialCassandra(opts Options) (Producer, error) {
	cluster := gocql.NewCluster(opts.Endpoints...)
	cluster.Keyspace = opts.Namespace
	if cluster.Keyspace == "" {
		cluster.Keyspace = defaultCassandraKeyspace
	}
	if accessKey, accessSecret := opts.accessPair(); accessKey != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: accessKey,
			Password: accessSecret,
		}
	}
	if opts.UseTLS {
		cluster.SslOpts = &gocql.SslOptions{Config: opts.tlsConfig()}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}
	err = session.Query(`CREATE TABLE IF NOT EXISTS messages (
		topic text,
		grp text,
		tag text,
		msg_key text,
		seq timeuuid,
		body blob,
		PRIMARY KEY ((topic, grp), seq))`).Exec()
	if err != nil {
		session.Close()
		return nil, err
	}
	return &cassandraProducer{session: session}, nil
}

// SendSync inserts msg into the messages table.
func (c *cassandraProducer) SendSync(ctx context.Context, msg *Message) (*Receipt, error) {
	key := ""
	if len(msg.Keys) > 0 {
		key = msg.Keys[0]
	}
	err := c.session.Query(
		`INSERT INTO messages (topic, grp, tag, msg_key, seq, body) VALUES (?, ?, ?, ?, now(), ?)`,
		msg.Topic, msg.Group, msg.Tag, key, msg.Body,
	).WithContext(ctx).Exec()
	if err != nil {
		return nil, err
	}
	return &Receipt{}, nil
}

// Close closes the Cassandra session.
func (c *cassandraProducer) Close() error {
	c.session.Close()
	return nil
}
