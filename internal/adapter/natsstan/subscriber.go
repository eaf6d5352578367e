package natsstan

import (
	"context"
	"fmt"
	"strconv"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/planshop/internal/obs"
)

// Subscriber delivers cart-count signals published by other processes
// sharing the store. Only the count travels on the wire; observers that
// need the items re-read the cart slot.
type Subscriber struct {
	ClusterID string
	ClientID  string
	URL       string
	Subject   string
	Durable   string
}

// Subscribe registers handler for incoming counts; malformed signals are
// dropped, handler failures are redelivered by the adapter.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(ctx context.Context, count int64) error) error {
	clientID := s.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("planshop-sub-%d", time.Now().UnixNano())
	}
	sc, err := stan.Connect(s.ClusterID, clientID, stan.NatsURL(s.URL))
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		sc.Close()
	}()
	_, err = sc.QueueSubscribe(s.Subject, "planshop-observers", func(m *stan.Msg) {
		hCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		count, convErr := strconv.ParseInt(string(m.Data), 10, 64)
		if convErr != nil {
			obs.Logger.WithError(convErr).Warn("malformed cart signal, dropping")
			_ = m.Ack()
			return
		}
		if err := handler(hCtx, count); err != nil {
			// no ack, let the signal redeliver
			obs.Logger.WithError(err).Warn("cart signal handler failed")
			return
		}
		if err := m.Ack(); err != nil {
			obs.Logger.WithError(err).Warn("ack failed")
		}
	}, stan.DurableName(s.Durable), stan.SetManualAckMode(), stan.AckWait(10*time.Second), stan.DeliverAllAvailable())
	return err
}
