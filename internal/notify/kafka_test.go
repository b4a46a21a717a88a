package notify

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestEncodeKafkaAlert(t *testing.T) {
	at := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	key, val, err := encodeKafkaAlert(1234567890123456789, "hello", at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(key) != "1234567890123456789" {
		t.Fatalf("unexpected key %q", key)
	}
	var got struct {
		Channel string    `json:"channel"`
		Text    string    `json:"text"`
		SentAt  time.Time `json:"sent_at"`
	}
	if err := json.Unmarshal(val, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Channel != "1234567890123456789" || got.Text != "hello" || !got.SentAt.Equal(at) {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestNewKafka_DisabledWithoutBrokers(t *testing.T) {
	if NewKafka(nil, "t") != nil || NewKafka([]string{"b:9092"}, "") != nil {
		t.Fatalf("kafka sink should be disabled without brokers and topic")
	}
}

func TestKafka_SendIntegration(t *testing.T) {
	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		t.Skip("KAFKA_BROKER not set; skipping Kafka integration test")
	}
	k := NewKafka([]string{broker}, "staffup_test_alerts")
	defer k.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := k.Send(ctx, 42, "integration"); err != nil {
		t.Fatalf("send: %v", err)
	}
}
