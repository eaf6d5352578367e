package natsstan

import (
	"fmt"
	"strconv"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/obs"
)

// Publisher broadcasts the updated cart count to other processes,
// standing in for the storage change signal browser tabs get for free.
// The payload is the count alone, because that is the persisted value
// that changed.
type Publisher struct {
	Conn    stan.Conn
	Subject string
}

func NewPublisher(clusterID, clientID, url, subject string) (*Publisher, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("planshop-pub-%d", time.Now().UnixNano())
	}
	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(url))
	if err != nil {
		return nil, err
	}
	return &Publisher{Conn: sc, Subject: subject}, nil
}

// CartChanged publishes the new count. Failures are logged, not
// propagated: the local write already succeeded and must not be undone
// by a broken signal path.
func (p *Publisher) CartChanged(ev domain.CartEvent) {
	payload := []byte(strconv.FormatInt(ev.Count, 10))
	if err := p.Conn.Publish(p.Subject, payload); err != nil {
		obs.Logger.WithError(err).Warn("publish cart change")
	}
}

func (p *Publisher) Close() error {
	return p.Conn.Close()
}

var _ domain.CartNotifier = (*Publisher)(nil)
