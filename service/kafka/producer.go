package kafka

import (
	"time"

	"FitProject/logger"

	"github.com/Shopify/sarama"
)

// ProducerHandler is the hook the gateway calls for every persisted
// message; a nil handler disables the event stream.
type ProducerHandler func(topic, key string, value []byte) error

// TopicMessageStored carries every persisted chat message, keyed by
// conversation id so one conversation stays on one partition (ordered).
const TopicMessageStored = "chat-message-stored"

var (
	kafkaClient sarama.Client
	asyncProd   sarama.AsyncProducer
)

func buildBaseConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Partitioner = sarama.NewHashPartitioner // key picks the partition
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Net.ReadTimeout = 30 * time.Second
	cfg.Net.WriteTimeout = 30 * time.Second
	return cfg
}

// InitProducer connects the client and starts the async producer plus
// its result-draining goroutine.
func InitProducer(brokers []string) error {
	c, err := sarama.NewClient(brokers, buildBaseConfig())
	if err != nil {
		return err
	}
	kafkaClient = c

	p, err := sarama.NewAsyncProducerFromClient(kafkaClient)
	if err != nil {
		return err
	}
	asyncProd = p

	go func() {
		for {
			select {
			case msg, ok := <-asyncProd.Successes():
				if !ok {
					return
				}
				logger.Debugf("[kafka] sent topic=%s partition=%d offset=%d", msg.Topic, msg.Partition, msg.Offset)
			case err, ok := <-asyncProd.Errors():
				if !ok {
					return
				}
				logger.Errorf("[kafka] produce error: %v", err)
			}
		}
	}()

	return nil
}

// SendAsync enqueues without waiting for the ack; delivery failures are
// logged by the drain goroutine.
func SendAsync(topic, key string, value []byte) error {
	if asyncProd == nil {
		return nil
	}
	asyncProd.Input() <- &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	return nil
}

func CloseProducer() {
	if asyncProd != nil {
		asyncProd.AsyncClose()
		asyncProd = nil
	}
	if kafkaClient != nil {
		_ = kafkaClient.Close()
		kafkaClient = nil
	}
}
