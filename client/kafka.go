package client

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
)

// kafkaProducer publishes through a sarama synchronous producer. Group keys
// route through the hash partitioner so messages sharing a group land on
// the same partition in order.
type kafkaProducer struct {
	producer sarama.SyncProducer
}

func dialKafka(opts Options) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Partitioner = sarama.NewHashPartitioner
	if accessKey, accessSecret := opts.accessPair(); accessKey != "" {
		config.Net.SASL.Enable = true
		config.Net.SASL.User = accessKey
		config.Net.SASL.Password = accessSecret
	}
	if opts.UseTLS {
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = opts.tlsConfig()
	}

	producer, err := sarama.NewSyncProducer(opts.Endpoints, config)
	if err != nil {
		return nil, err
	}
	return &kafkaProducer{producer: producer}, nil
}

// SendSync publishes msg and waits for the broker ack.
func (k *kafkaProducer) SendSync(_ context.Context, msg *Message) (*Receipt, error) {
	pm := &sarama.ProducerMessage{
		Topic: msg.Topic,
		Value: sarama.ByteEncoder(msg.Body),
	}
	if msg.Group != "" {
		pm.Key = sarama.StringEncoder(msg.Group)
	}
	if msg.Tag != "" {
		pm.Headers = append(pm.Headers, sarama.RecordHeader{
			Key:   []byte("tag"),
			Value: []byte(msg.Tag),
		})
	}
	for _, key := range msg.Keys {
		pm.Headers = append(pm.Headers, sarama.RecordHeader{
			Key:   []byte("key"),
			Value: []byte(key),
		})
	}

	partition, offset, err := k.producer.SendMessage(pm)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		MessageID: fmt.Sprintf("%s/%d/%d", msg.Topic, partition, offset),
		Partition: partition,
		Offset:    offset,
	}, nil
}

// Close shuts down the underlying sarama producer.
func (k *kafkaProducer) Close() error {
	return k.producer.Close()
}
