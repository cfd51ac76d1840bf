package docstore

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/redis"
)

// RedisNotifier distributes change signals across instances over redis
// pub/sub, so a write on one node wakes live queries on every node.
type RedisNotifier struct {
	client *redis.Client
	prefix string
	logg   *logger.Logger
}

// NewRedisNotifier builds a notifier publishing on prefix:collection channels.
func NewRedisNotifier(client *redis.Client, prefix string, logg *logger.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, prefix: prefix, logg: logg}
}

func (n *RedisNotifier) channel(collection string) string {
	return n.prefix + ":" + collection
}

// Publish signals a change on the collection channel.
func (n *RedisNotifier) Publish(ctx context.Context, collection string) error {
	return n.client.Publish(ctx, n.channel(collection), "1")
}

// Subscribe opens a pub/sub subscription and pumps coalesced signals until
// cancelled. Transient receive failures resubscribe with capped backoff.
func (n *RedisNotifier) Subscribe(ctx context.Context, collection string) (<-chan struct{}, func(), error) {
	pubsub, err := n.client.PSubscribe(ctx, n.channel(collection))
	if err != nil {
		return nil, nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	signals := make(chan struct{}, 1)

	go func() {
		defer close(signals)
		backoff := retry.WithCappedDuration(5*time.Second, retry.NewExponential(100*time.Millisecond))
		for {
			err := retry.Do(subCtx, backoff, func(ctx context.Context) error {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return err
					}
					return retry.RetryableError(err)
				}
				_ = msg
				return nil
			})
			if err != nil {
				if subCtx.Err() == nil && n.logg != nil {
					n.logg.Error(subCtx, "docstore notifier receive failed", err)
				}
				return
			}
			select {
			case signals <- struct{}{}:
			default:
			}
		}
	}()

	teardown := func() {
		cancel()
		_ = pubsub.Close()
	}
	return signals, teardown, nil
}
