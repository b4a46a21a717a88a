package notify

import (
	"context"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/hamed0406/staffup/internal/domain"
)

// Kafka mirrors every notification onto a topic, keyed by channel id.
type Kafka struct {
	w *kafka.Writer
}

func NewKafka(brokers []string, topic string) *Kafka {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}}
}

type kafkaAlert struct {
	Channel string    `json:"channel"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

func encodeKafkaAlert(channelID uint64, text string, at time.Time) ([]byte, []byte, error) {
	key := []byte(strconv.FormatUint(channelID, 10))
	val, err := json.Marshal(kafkaAlert{Channel: string(key), Text: text, SentAt: at.UTC()})
	return key, val, err
}

func (k *Kafka) Send(ctx context.Context, channelID uint64, text string) error {
	key, val, err := encodeKafkaAlert(channelID, text, time.Now())
	if err != nil {
		return err
	}
	if err := k.w.WriteMessages(ctx, kafka.Message{Key: key, Value: val}); err != nil {
		return &domain.TransportError{Op: "send", Err: err}
	}
	return nil
}

func (k *Kafka) Close() error { return k.w.Close() }
