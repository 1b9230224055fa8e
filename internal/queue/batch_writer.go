package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/database"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/protocol"
)

// BatchWriter consumes station readings from Kafka, computes the AQI for
// each one through the shared engine, and batch-writes them to the database.
type BatchWriter struct {
	consumer      *Consumer
	db            *database.DB
	batchSize     int
	flushInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(consumer *Consumer, db *database.DB, batchSize int, flushInterval time.Duration) *BatchWriter {
	return &BatchWriter{
		consumer:      consumer,
		db:            db,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stopCh:        make(chan struct{}),
	}
}

// Start begins consuming and writing to database
func (bw *BatchWriter) Start(ctx context.Context) error {
	bw.wg.Add(1)
	go bw.run(ctx)
	return nil
}

// Stop stops the batch writer gracefully
func (bw *BatchWriter) Stop() {
	close(bw.stopCh)
	bw.wg.Wait()
}

func (bw *BatchWriter) run(ctx context.Context) {
	defer bw.wg.Done()

	var batch []kafka.Message
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	msgChan := make(chan kafka.Message, 10)
	go func() {
		for {
			msg, err := bw.consumer.Consume(ctx)
			if err != nil {
				fmt.Printf("Consumer error: %v\n", err)
				continue
			}
			msgChan <- msg
		}
	}()

	for {
		select {
		case <-bw.stopCh:
			// Flush remaining batch before stopping
			if len(batch) > 0 {
				bw.flush(ctx, batch)
			}
			return

		case <-ticker.C:
			if len(batch) > 0 {
				fmt.Printf("Flush interval reached (%d readings), flushing...\n", len(batch))
				bw.flush(ctx, batch)
				batch = nil
			}

		case msg := <-msgChan:
			batch = append(batch, msg)

			if len(batch) >= bw.batchSize {
				fmt.Printf("Batch full (%d readings), flushing...\n", len(batch))
				bw.flush(ctx, batch)
				batch = nil
			}
		}
	}
}

func (bw *BatchWriter) flush(ctx context.Context, batch []kafka.Message) {
	if len(batch) == 0 {
		return
	}

	successCount := 0
	for _, msg := range batch {
		if err := bw.processMessage(msg); err != nil {
			fmt.Printf("Failed to process reading: %v\n", err)
			continue
		}
		successCount++

		// Commit offset after successful processing
		if err := bw.consumer.Commit(ctx, msg); err != nil {
			fmt.Printf("Failed to commit offset: %v\n", err)
		}
	}

	fmt.Printf("Flushed batch of %d readings to database\n", successCount)
}

func (bw *BatchWriter) processMessage(msg kafka.Message) error {
	readingMsg, err := protocol.DecodeReadingMessage(msg.Value)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	parsed, err := readingMsg.Data.Parse()
	if err != nil {
		return fmt.Errorf("failed to parse reading: %w", err)
	}

	// Ensure the station exists
	station, err := bw.db.GetStation(readingMsg.StationID)
	if err != nil {
		return fmt.Errorf("failed to get station: %w", err)
	}

	if station == nil {
		newStation := &database.Station{
			StationID: readingMsg.StationID,
			Location:  readingMsg.Location,
		}
		if err := bw.db.UpsertStation(newStation); err != nil {
			return fmt.Errorf("failed to create station: %w", err)
		}
	}

	// Compute the AQI once, on write; readers never re-derive it.
	result := aqi.Aggregate(readingMsg.Data.Reading())

	raw := &database.RawReading{
		StationID:         readingMsg.StationID,
		Timestamp:         parsed.Timestamp,
		PM25:              readingMsg.Data.PM25,
		PM10:              readingMsg.Data.PM10,
		O3:                readingMsg.Data.O3,
		CO:                readingMsg.Data.CO,
		SO2:               readingMsg.Data.SO2,
		NO2:               readingMsg.Data.NO2,
		Temperature:       readingMsg.Data.Temperature,
		Humidity:          readingMsg.Data.Humidity,
		WindSpeed:         readingMsg.Data.WindSpeed,
		AQI:               result.AQI,
		DominantPollutant: string(result.Dominant),
		ReceivedAt:        readingMsg.ReceivedAt,
	}

	if err := bw.db.InsertRawReading(raw); err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}
