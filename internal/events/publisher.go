package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/config"

	"github.com/segmentio/kafka-go"
)

// LedgerEvent: fato já commitado do livro-razão, publicado para os
// colaboradores de relatório que consomem o feed.
type LedgerEvent struct {
	Type       string    `json:"type"` // "batch_committed" | "supply_added"
	LocationID uint      `json:"location_id"`
	DonationID *uint     `json:"donation_id,omitempty"`
	BatchID    *string   `json:"batch_id,omitempty"`
	Records    int       `json:"records,omitempty"`
	Before     *int      `json:"before,omitempty"`
	After      *int      `json:"after,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

var writer *kafka.Writer

// Init liga o publicador quando KAFKA_BROKERS está definido; sem brokers o
// Publish vira no-op e o sistema funciona normalmente sem o feed.
func Init(cfg *config.Config) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("Feed de eventos desabilitado (KAFKA_BROKERS não definido)")
		return
	}

	writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	log.Println("Feed de eventos habilitado, tópico:", cfg.KafkaTopic)
}

// Publish envia o evento com timeout curto. A publicação é best-effort: uma
// falha aqui nunca desfaz a escrita já commitada, só é registrada no log.
func Publish(event LedgerEvent) {
	if writer == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Println("Evento do livro-razão não serializado:", err)
		return
	}

	message := kafka.Message{
		Key:   []byte(fmt.Sprintf("location-%d", event.LocationID)),
		Value: payload,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := writer.WriteMessages(ctx, message); err != nil {
		log.Println("Evento do livro-razão não publicado:", err)
	}
}

func Close() error {
	if writer == nil {
		return nil
	}
	return writer.Close()
}
